package handlers

import (
	"net/http"

	"github.com/AnshRaj112/backcheck-backend/internal/models"
	"github.com/AnshRaj112/backcheck-backend/internal/risk"
	"github.com/AnshRaj112/backcheck-backend/internal/services"
)

type lookupResponse struct {
	Success bool `json:"success"`
	*models.Aggregate
	Risk risk.Result `json:"risk"`
}

// Lookup returns the aggregated profile of ?userId= with its base risk.
// Partial data still answers 200; the failed sources are listed in "unverified".
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	userID, err := services.ParseUserID(r.URL.Query().Get("userId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	agg, err := h.lookup.Lookup(r.Context(), userID, nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, lookupResponse{
		Success:   true,
		Aggregate: agg,
		Risk:      h.evaluator.BaseRisk(agg),
	})
}
