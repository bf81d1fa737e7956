// Package api serves the cache store as JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emiliopalmerini/claude-activity/internal/cache"
	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/refresh"
	"github.com/emiliopalmerini/claude-activity/internal/shared/middleware"
)

// Refresher starts background rebuilds, either when stale or on demand.
type Refresher interface {
	middleware.Trigger
	TriggerNow(ctx context.Context) refresh.Status
}

type Handler struct {
	repo    Repository
	trigger Refresher
	logger  domain.Logger
}

func NewHandler(repo Repository, trigger Refresher, logger domain.Logger) *Handler {
	return &Handler{repo: repo, trigger: trigger, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.repo.SessionCount(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": count})
}

// Overview returns the aggregate, or a single window of it with
// ?window=1d|7d|30d. Before the first rebuild it answers 202.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	agg, err := h.repo.OverviewPayload(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if agg == nil {
		writeJSON(w, http.StatusAccepted, map[string]any{
			"status":  "building",
			"refresh": middleware.RefreshStatus(r),
		})
		return
	}

	if name := r.URL.Query().Get("window"); name != "" {
		breakdown, ok := agg.Window(name)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown window "+name)
			return
		}
		writeJSON(w, http.StatusOK, breakdown)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.repo.SessionList(r.Context(), r.URL.Query().Get("project"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	session, err := h.repo.SessionDetail(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, cache.ErrSessionNotFound) || (err == nil && session == nil) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) Projects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.repo.ProjectsList(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// Refresh forces a background rebuild. It does not wait for it.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	status := h.trigger.TriggerNow(r.Context())
	body := map[string]any{"status": status}
	if status == refresh.StatusSkipped {
		body["message"] = "rebuild already running"
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.logger.Error(err.Error())
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
