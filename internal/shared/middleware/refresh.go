package middleware

import (
	"context"
	"net/http"

	"github.com/emiliopalmerini/claude-activity/internal/refresh"
)

type contextKey string

const refreshKey contextKey = "refresh"

// StatusHeader carries the refresh trigger outcome on every response.
const StatusHeader = "X-Refresh-Status"

// Trigger starts a background rebuild when the cache is stale.
type Trigger interface {
	TriggerIfStale(ctx context.Context) refresh.Status
}

// Refresh asks trigger for a rebuild before each request and records the
// outcome. It never waits for the rebuild.
func Refresh(trigger Trigger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			status := trigger.TriggerIfStale(r.Context())
			w.Header().Set(StatusHeader, string(status))
			ctx := context.WithValue(r.Context(), refreshKey, status)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RefreshStatus returns the status recorded by Refresh, or "" outside it.
func RefreshStatus(r *http.Request) refresh.Status {
	if v, ok := r.Context().Value(refreshKey).(refresh.Status); ok {
		return v
	}
	return ""
}
