package handlers

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"github.com/AnshRaj112/backcheck-backend/internal/services"
	"github.com/AnshRaj112/backcheck-backend/internal/wizard"
)

// Wizard renders the four-stage check page. Every stage is computed from
// the query string; stages 3 and 4 fetch the aggregate again, which the
// lookup cache keeps cheap.
func (h *Handler) Wizard(w http.ResponseWriter, r *http.Request) {
	state := wizard.ParseState(r.URL.Query())
	page := wizard.NewPage(state, h.evaluator.Divisions())
	status := http.StatusOK

	if state.Stage >= wizard.StageUserID {
		division, err := h.evaluator.ResolveDivision(state.Division)
		if err != nil {
			status, _ = classify(err)
			page.Fail(wizard.StageDivision, "Unknown division, please choose again")
			h.render(w, r, status, page)
			return
		}
		state.Division = division
	}

	if state.Stage >= wizard.StageGeneral {
		if err := h.fillStage(r, page, state); err != nil {
			var message string
			status, message = classify(err)
			page.Fail(wizard.StageUserID, message)
			h.logger.Info("wizard lookup failed",
				zap.String("user_id", state.UserID),
				zap.Int("status", status),
				zap.Error(err),
			)
		}
	}

	h.render(w, r, status, page)
}

func (h *Handler) fillStage(r *http.Request, page *wizard.Page, state wizard.State) error {
	userID, err := services.ParseUserID(state.UserID)
	if err != nil {
		return err
	}
	agg, err := h.lookup.Lookup(r.Context(), userID, nil)
	if err != nil {
		return err
	}

	switch state.Stage {
	case wizard.StageGeneral:
		page.General = wizard.NewGeneralView(agg, h.evaluator.BaseRisk(agg), h.now())
	case wizard.StageEvaluation:
		page.Evaluation = wizard.NewEvaluationView(h.evaluator.EvaluateAggregate(r.Context(), agg, state.Division))
	}
	return nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page *wizard.Page) {
	var buf bytes.Buffer
	if err := wizard.Render(&buf, page); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
