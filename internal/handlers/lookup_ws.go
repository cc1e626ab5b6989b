package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AnshRaj112/backcheck-backend/internal/models"
	"github.com/AnshRaj112/backcheck-backend/internal/risk"
	"github.com/AnshRaj112/backcheck-backend/internal/services"
)

const (
	wsWriteWait = 10 * time.Second

	eventProgress = "progress"
	eventResult   = "result"
	eventError    = "error"
)

// lookupEvent is one frame sent to the client. Exactly one of the payload
// fields is set, depending on Type.
type lookupEvent struct {
	Type     string             `json:"type"`
	Progress *services.Progress `json:"progress,omitempty"`
	Result   *lookupResult      `json:"result,omitempty"`
	Status   int                `json:"status,omitempty"`
	Message  string             `json:"message,omitempty"`
}

type lookupResult struct {
	*models.Aggregate
	Risk risk.Result `json:"risk"`
}

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.originAllowed,
	}
}

// LookupStream runs a lookup for ?userId= and streams one progress event per
// finished source, then a result or an error event, then closes.
// The id is validated before upgrading so bad input still gets a JSON 400.
func (h *Handler) LookupStream(w http.ResponseWriter, r *http.Request) {
	userID, err := services.ParseUserID(r.URL.Query().Get("userId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		h.logger.Info("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Detect the client going away so the lookup can stop early.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	write := func(evt lookupEvent) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(evt)
	}

	writeFailed := false
	agg, err := h.lookup.Lookup(ctx, userID, func(p services.Progress) {
		if writeFailed {
			return
		}
		if err := write(lookupEvent{Type: eventProgress, Progress: &p}); err != nil {
			writeFailed = true
		}
	})

	if err != nil {
		status, message := classify(err)
		h.logger.Info("streamed lookup failed", zap.Int64("user_id", userID), zap.Int("status", status), zap.Error(err))
		_ = write(lookupEvent{Type: eventError, Status: status, Message: message})
	} else {
		base := h.evaluator.BaseRisk(agg)
		_ = write(lookupEvent{Type: eventResult, Result: &lookupResult{Aggregate: agg, Risk: base}})
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))

	select {
	case <-done:
	case <-time.After(time.Second):
	}
}
