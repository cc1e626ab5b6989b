package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AnshRaj112/backcheck-backend/internal/middleware"
	"github.com/AnshRaj112/backcheck-backend/internal/roblox"
	"github.com/AnshRaj112/backcheck-backend/internal/services"
)

// Handler serves the lookup API, the progress socket and the wizard page.
type Handler struct {
	lookup         *services.LookupService
	evaluator      *services.EvaluationService
	logger         *zap.Logger
	allowedOrigins []string
	now            func() time.Time
}

func New(lookup *services.LookupService, evaluator *services.EvaluationService, allowedOrigins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		lookup:         lookup,
		evaluator:      evaluator,
		logger:         logger,
		allowedOrigins: allowedOrigins,
		now:            time.Now,
	}
}

// Health answers load balancer probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// classify maps a lookup or evaluation error to a status code and a message
// that is safe to show to the caller.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidUserID):
		return http.StatusBadRequest, "userId must be a positive integer"
	case errors.Is(err, services.ErrUnknownDivision):
		return http.StatusBadRequest, "Unknown division"
	}

	var apiErr *roblox.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			return http.StatusNotFound, "Account not found"
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return http.StatusTooManyRequests, "Upstream rate limit reached, try again later"
		case apiErr.StatusCode >= 400:
			return apiErr.StatusCode, "Upstream profile service returned an error"
		default:
			return http.StatusBadGateway, "Upstream profile service is unavailable"
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	log := h.logger.With(
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Info("request rejected")
	}
	writeError(w, status, message)
}

func (h *Handler) originAllowed(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	if strings.EqualFold(origin, "http://"+r.Host) || strings.EqualFold(origin, "https://"+r.Host) {
		return true
	}
	for _, a := range h.allowedOrigins {
		if a == "*" || strings.EqualFold(strings.TrimSpace(a), origin) {
			return true
		}
	}
	return false
}
