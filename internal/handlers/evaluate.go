package handlers

import (
	"net/http"

	"github.com/AnshRaj112/backcheck-backend/internal/services"
)

type evaluateResponse struct {
	Success bool `json:"success"`
	*services.Evaluation
}

// Evaluate scores ?userId= for ?division= including blacklist matches.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, err := services.ParseUserID(q.Get("userId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ev, err := h.evaluator.Evaluate(r.Context(), userID, q.Get("division"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluateResponse{Success: true, Evaluation: ev})
}

// Divisions lists the divisions the wizard offers.
func (h *Handler) Divisions(w http.ResponseWriter, r *http.Request) {
	divisions := h.evaluator.Divisions()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"divisions": divisions,
		"count":     len(divisions),
	})
}
