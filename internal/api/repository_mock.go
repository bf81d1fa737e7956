package api

import (
	"context"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
)

// MockRepository is a mock implementation of Repository for testing.
type MockRepository struct {
	OverviewPayloadFunc func(ctx context.Context) (*domain.GlobalAggregate, error)
	SessionListFunc     func(ctx context.Context, project string) ([]domain.SessionSummary, error)
	SessionDetailFunc   func(ctx context.Context, sessionID string) (*domain.Session, error)
	ProjectsListFunc    func(ctx context.Context) ([]string, error)
	SessionCountFunc    func(ctx context.Context) (int64, error)
}

func (m *MockRepository) OverviewPayload(ctx context.Context) (*domain.GlobalAggregate, error) {
	if m.OverviewPayloadFunc != nil {
		return m.OverviewPayloadFunc(ctx)
	}
	return nil, nil
}

func (m *MockRepository) SessionList(ctx context.Context, project string) ([]domain.SessionSummary, error) {
	if m.SessionListFunc != nil {
		return m.SessionListFunc(ctx, project)
	}
	return []domain.SessionSummary{}, nil
}

func (m *MockRepository) SessionDetail(ctx context.Context, sessionID string) (*domain.Session, error) {
	if m.SessionDetailFunc != nil {
		return m.SessionDetailFunc(ctx, sessionID)
	}
	return nil, nil
}

func (m *MockRepository) ProjectsList(ctx context.Context) ([]string, error) {
	if m.ProjectsListFunc != nil {
		return m.ProjectsListFunc(ctx)
	}
	return []string{}, nil
}

func (m *MockRepository) SessionCount(ctx context.Context) (int64, error) {
	if m.SessionCountFunc != nil {
		return m.SessionCountFunc(ctx)
	}
	return 0, nil
}
