package api

import (
	"context"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
)

// Repository is the read side of the cache store.
type Repository interface {
	OverviewPayload(ctx context.Context) (*domain.GlobalAggregate, error)
	SessionList(ctx context.Context, project string) ([]domain.SessionSummary, error)
	SessionDetail(ctx context.Context, sessionID string) (*domain.Session, error)
	ProjectsList(ctx context.Context) ([]string, error)
	SessionCount(ctx context.Context) (int64, error)
}
