package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/emiliopalmerini/claude-activity/internal/api"
)

// Config holds server-specific configuration.
type Config struct {
	Port int
}

func NewRouter(h *api.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	api.RegisterRoutes(r, h)
	return r
}

func NewHTTPServer(cfg Config, h *api.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
