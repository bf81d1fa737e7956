package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/emiliopalmerini/claude-activity/internal/shared/middleware"
)

// RegisterRoutes mounts the API. Read endpoints kick off a background
// rebuild when the cache is stale.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/health", h.Health)
	r.Get("/api/refresh", h.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Refresh(h.trigger))
		r.Get("/api/overview", h.Overview)
		r.Get("/api/sessions", h.Sessions)
		r.Get("/api/session/{id}", h.Session)
		r.Get("/api/projects", h.Projects)
	})
}
