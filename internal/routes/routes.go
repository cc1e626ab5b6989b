package routes

import (
	"github.com/AnshRaj112/backcheck-backend/internal/handlers"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r chi.Router, h *handlers.Handler) {
	// Health check (never rate limited)
	r.Get("/health", h.Health)

	// Lookup API
	r.Get("/api/lookup", h.Lookup)
	r.Get("/api/evaluate", h.Evaluate)
	r.Get("/api/divisions", h.Divisions)

	// Progress stream for a single lookup
	r.Get("/ws/lookup", h.LookupStream)

	// Server-rendered wizard
	r.Get("/", h.Wizard)
}
