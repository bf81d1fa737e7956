package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/emiliopalmerini/claude-activity/internal/adapters/logger"
	"github.com/emiliopalmerini/claude-activity/internal/adapters/otel"
	"github.com/emiliopalmerini/claude-activity/internal/cache"
	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/infrastructure/config"
	"github.com/emiliopalmerini/claude-activity/internal/infrastructure/database"
	"github.com/emiliopalmerini/claude-activity/internal/parser"
	"github.com/emiliopalmerini/claude-activity/internal/ports"
	"github.com/emiliopalmerini/claude-activity/internal/refresh"
	"github.com/emiliopalmerini/claude-activity/internal/tooladapters"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config   *config.Config
	DB       *database.Client
	Store    *cache.Store
	Parser   *parser.Parser
	Service  *refresh.Service
	Guard    *refresh.Guard
	Exporter ports.MetricsExporter
	Logger   domain.Logger
}

// loadConfig reads the environment and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagRoot != "" {
		cfg.ProjectsRoot = flagRoot
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if flagWorkers > 0 {
		cfg.ParseWorkers = flagWorkers
	}
	if flagVerbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func newParser(cfg *config.Config, log domain.Logger) *parser.Parser {
	opts := domain.ExtractionOptions{
		IncludePreviews: cfg.IncludePreviews,
		PreviewLength:   cfg.PreviewLength,
		Verbose:         cfg.Verbose,
	}
	return parser.New(tooladapters.NewRegistry(), opts, cfg.MaxFileSizeMB, log)
}

// NewAppContext opens the cache and wires the rebuild pipeline.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(os.Stderr, "activity: ", cfg.Verbose)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	store, err := cache.Open(ctx, db.DB)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	exporter, err := otel.NewFromConfig(ctx, otel.LoadConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: metrics export disabled: %v\n", err)
		exporter = otel.NewNoOpExporter()
	}

	p := newParser(cfg, log)
	service := refresh.NewService(store, p, cfg.ProjectsRoot, cfg.ParseWorkers, exporter, log)

	return &AppContext{
		Config:   cfg,
		DB:       db,
		Store:    store,
		Parser:   p,
		Service:  service,
		Guard:    refresh.NewGuard(service, cfg.FreshnessWindow, log),
		Exporter: exporter,
		Logger:   log,
	}, nil
}

// Close waits for background rebuilds, flushes metrics and closes the
// database.
func (a *AppContext) Close(ctx context.Context) error {
	if a.Guard != nil {
		a.Guard.Wait()
	}
	if a.Exporter != nil {
		if err := a.Exporter.Close(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush metrics: %v\n", err)
		}
	}
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// ensureFresh rebuilds the cache when no aggregate exists yet so read
// commands have something to show.
func (a *AppContext) ensureFresh(ctx context.Context) error {
	has, err := a.Store.HasAggregate(ctx)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, _, err = a.Guard.TryRebuild(ctx)
	return err
}
