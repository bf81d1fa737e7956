// Package refresh brings the cache up to date with the session logs on
// disk and guards against overlapping rebuilds.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/claude-activity/internal/cache"
	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/parser"
	"github.com/emiliopalmerini/claude-activity/internal/ports"
)

const defaultWorkers = 4

// Result summarizes one rebuild run.
type Result struct {
	RunID            string
	FilesScanned     int
	FilesStale       int
	FilesParsed      int
	FilesSkipped     int
	FilesFailed      int
	SessionsRemoved  int
	AggregateRebuilt bool
	Aggregate        *domain.GlobalAggregate
	Duration         time.Duration
	// Errors collects per-file failures. They never fail the run.
	Errors error
}

// Changed reports whether the run touched the stored sessions.
func (r *Result) Changed() bool {
	return r.FilesParsed > 0 || r.SessionsRemoved > 0
}

// SessionParser parses one top-level session log.
type SessionParser interface {
	ParseSession(ctx context.Context, path, project string) (*domain.Session, error)
}

// Service runs incremental rebuilds of the cache.
type Service struct {
	store    *cache.Store
	parser   SessionParser
	root     string
	home     string
	workers  int
	exporter ports.MetricsExporter
	logger   domain.Logger
	now      func() time.Time
}

// NewService creates a Service that scans root for session logs. workers
// bounds concurrent parsing; values below 1 select the default. Sessions
// are stored under project names made readable against the user's home
// directory.
func NewService(store *cache.Store, p SessionParser, root string, workers int, exporter ports.MetricsExporter, logger domain.Logger) *Service {
	if workers < 1 {
		workers = defaultWorkers
	}
	home, _ := os.UserHomeDir()
	return &Service{
		store:    store,
		parser:   p,
		root:     root,
		home:     home,
		workers:  workers,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}
}

type parsed struct {
	session *domain.Session
	err     error
}

// Rebuild parses new and changed logs, drops sessions whose log is gone
// and recomputes the aggregates. Aggregates are rebuilt on every run so the
// time windows follow the current time even when no log changed.
func (s *Service) Rebuild(ctx context.Context) (*Result, error) {
	started := s.now()
	result := &Result{RunID: uuid.NewString()}

	files, err := parser.DiscoverSessionFiles(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug(fmt.Sprintf("projects root %s does not exist", s.root))
		files, err = nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to discover session files: %w", err)
	}
	result.FilesScanned = len(files)

	stale, current, err := s.store.StaleFiles(ctx, files)
	if err != nil {
		return nil, err
	}
	result.FilesStale = len(stale)
	s.logger.Debug(fmt.Sprintf("run %s: %d files, %d stale", result.RunID, len(files), len(stale)))

	results, err := s.parseAll(ctx, stale)
	if err != nil {
		return nil, err
	}

	for i, path := range stale {
		if err := s.persist(ctx, path, results[i], result); err != nil {
			result.FilesFailed++
			result.Errors = multierr.Append(result.Errors, err)
			s.logger.Error(err.Error())
		}
	}

	removed, err := s.store.DeleteRemovedSessions(ctx, current)
	if err != nil {
		return nil, err
	}
	result.SessionsRemoved = removed

	agg, err := s.store.RebuildGlobalAggregates(ctx, s.now())
	if err != nil {
		return nil, err
	}
	result.AggregateRebuilt = true
	result.Aggregate = agg

	result.Duration = s.now().Sub(started)
	s.export(ctx, result, started)
	return result, nil
}

func (s *Service) parseAll(ctx context.Context, paths []string) ([]parsed, error) {
	results := make([]parsed, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = s.parseOne(gctx, path)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// parseOne turns a panic in the parser into a failure of that file.
func (s *Service) parseOne(ctx context.Context, path string) (p parsed) {
	defer func() {
		if r := recover(); r != nil {
			p = parsed{err: fmt.Errorf("panic: %v", r)}
		}
	}()
	project := parser.ReadableProject(parser.ProjectName(path, s.root), s.home)
	session, err := s.parser.ParseSession(ctx, path, project)
	return parsed{session: session, err: err}
}

func (s *Service) persist(ctx context.Context, path string, p parsed, result *Result) error {
	if p.err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, p.err)
	}
	if p.session == nil {
		result.FilesSkipped++
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := s.store.UpsertSession(ctx, path, p.session, cache.FileMtime(info), info.Size()); err != nil {
		return err
	}
	result.FilesParsed++
	return nil
}

func (s *Service) export(ctx context.Context, r *Result, started time.Time) {
	m := &ports.RebuildMetrics{
		RunID:            r.RunID,
		FilesScanned:     int64(r.FilesScanned),
		FilesParsed:      int64(r.FilesParsed),
		FilesFailed:      int64(r.FilesFailed),
		SessionsRemoved:  int64(r.SessionsRemoved),
		AggregateRebuilt: r.AggregateRebuilt,
		Duration:         r.Duration,
		StartedAt:        started,
	}
	if r.Aggregate != nil {
		m.TotalSessions = r.Aggregate.TotalSessions
		m.TotalCostUSD = r.Aggregate.TotalCost
	}
	if err := s.exporter.ExportRebuildMetrics(ctx, m); err != nil {
		s.logger.Error(fmt.Sprintf("failed to export rebuild metrics: %v", err))
	}
}
