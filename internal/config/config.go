package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is the prefix for environment overrides. A double underscore
// separates nesting levels so that keys containing underscores survive:
// DAY_PLANNER_SERVICE__STATE_FILE maps to service.state_file.
const envPrefix = "DAY_PLANNER_"

// Config holds the application configuration
type Config struct {
	Service  ServiceConfig  `koanf:"service"`
	Planning PlanningConfig `koanf:"planning"`
}

// ServiceConfig holds the service configuration
type ServiceConfig struct {
	Port      int    `koanf:"port"`
	StateFile string `koanf:"state_file"`
	LogLevel  string `koanf:"log_level"`
}

// PlanningConfig holds the planning parameters
type PlanningConfig struct {
	Timezone           string `koanf:"timezone"`
	MaxTasksPerRequest int    `koanf:"max_tasks_per_request"`
	RetentionDays      int    `koanf:"retention_days"`
}

// Load reads the configuration from defaults, an optional TOML file and
// environment variables, in increasing order of precedence
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"service.port":                   8080,
		"service.state_file":             "data/day-planner.db",
		"service.log_level":              "info",
		"planning.timezone":              "UTC",
		"planning.max_tasks_per_request": 100,
		"planning.retention_days":        30,
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load default configuration: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load configuration file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment configuration: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Resolve the state file relative to the config file's parent directory
	if path != "" && !filepath.IsAbs(cfg.Service.StateFile) {
		configDir := filepath.Dir(path)
		cfg.Service.StateFile = filepath.Join(configDir, "..", cfg.Service.StateFile)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Location resolves the configured planning timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Planning.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Planning.Timezone, err)
	}
	return loc, nil
}

// validate checks if the configuration is valid, collecting every problem
// instead of stopping at the first one
func validate(cfg *Config) error {
	var result *multierror.Error

	if cfg.Service.Port < 1 || cfg.Service.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("service port must be between 1 and 65535, got %d", cfg.Service.Port))
	}
	if cfg.Service.StateFile == "" {
		result = multierror.Append(result, fmt.Errorf("state file path is required"))
	}
	switch cfg.Service.LogLevel {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		result = multierror.Append(result, fmt.Errorf("invalid log level: %s", cfg.Service.LogLevel))
	}

	if _, err := time.LoadLocation(cfg.Planning.Timezone); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid timezone %q: %w", cfg.Planning.Timezone, err))
	}
	if cfg.Planning.MaxTasksPerRequest < 1 {
		result = multierror.Append(result, fmt.Errorf("max tasks per request must be positive"))
	}
	if cfg.Planning.RetentionDays < 1 {
		result = multierror.Append(result, fmt.Errorf("retention days must be positive"))
	}

	return result.ErrorOrNil()
}
