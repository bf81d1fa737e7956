// Package config loads runtime settings from ACTIVITY_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/claude-activity/internal/util"
)

const envPrefix = "activity"

// Config holds the settings shared by every command.
type Config struct {
	ProjectsRoot    string        `envconfig:"PROJECTS_ROOT"`
	DBPath          string        `envconfig:"DB_PATH"`
	MaxFileSizeMB   int           `envconfig:"MAX_FILE_SIZE_MB" default:"100"`
	FreshnessWindow time.Duration `envconfig:"FRESHNESS_WINDOW" default:"5m"`
	PreviewLength   int           `envconfig:"PREVIEW_LENGTH" default:"150"`
	IncludePreviews bool          `envconfig:"INCLUDE_PREVIEWS" default:"true"`
	ParseWorkers    int           `envconfig:"PARSE_WORKERS" default:"4"`
	Verbose         bool          `envconfig:"VERBOSE" default:"false"`
}

// Load reads the configuration and fills path defaults: the projects root
// under ~/.claude/projects and the cache database in the XDG data dir.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.ProjectsRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.ProjectsRoot = filepath.Join(home, ".claude", "projects")
	} else {
		cfg.ProjectsRoot = expandHome(cfg.ProjectsRoot)
	}

	if cfg.DBPath == "" {
		dataDir, err := util.GetXDGDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DBPath = filepath.Join(dataDir, "cache.db")
	} else {
		cfg.DBPath = expandHome(cfg.DBPath)
	}

	if cfg.ParseWorkers < 1 {
		cfg.ParseWorkers = 1
	}
	return &cfg, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
