// Package config loads dashboard configuration from YAML with environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config is the full runtime configuration. Precedence, lowest to highest:
// struct defaults, the YAML file, SENTINEL_* environment variables.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	FRED      FREDConfig      `yaml:"fred"`
	Fiscal    FiscalConfig    `yaml:"fiscal"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Freshness FreshnessConfig `yaml:"freshness"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Log       LogConfig       `yaml:"log"`
	News      NewsConfig      `yaml:"news"`
}

// DatabaseConfig locates the SQLite cache.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"SENTINEL_DB_PATH" default:"~/.sentinel/sentinel.db" validate:"required"`
}

// FREDConfig holds FRED API access.
type FREDConfig struct {
	APIKey string `yaml:"api_key" env:"SENTINEL_FRED_API_KEY"`
}

// FiscalConfig locates the locally maintained South African fiscal data file.
type FiscalConfig struct {
	Path string `yaml:"path" env:"SENTINEL_FISCAL_FILE" default:"~/.sentinel/sa_fiscal.json" validate:"required"`
}

// RefreshConfig controls the dashboard tick cadence.
type RefreshConfig struct {
	Interval time.Duration `yaml:"interval" env:"SENTINEL_REFRESH_INTERVAL" default:"60s" validate:"gte=1s"`
}

// FreshnessConfig sets how long cached data is served without refetching.
type FreshnessConfig struct {
	MacroWindow  time.Duration `yaml:"macro_window"  env:"SENTINEL_MACRO_WINDOW"  default:"24h" validate:"gt=0"`
	MarketWindow time.Duration `yaml:"market_window" env:"SENTINEL_MARKET_WINDOW" default:"15m" validate:"gt=0"`
}

// FetchConfig bounds individual upstream calls.
type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"SENTINEL_FETCH_TIMEOUT" default:"8s" validate:"gt=0"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level  string `yaml:"level"  env:"SENTINEL_LOG_LEVEL"  default:"info"    validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" env:"SENTINEL_LOG_FORMAT" default:"console" validate:"oneof=console json"`
	File   string `yaml:"file"   env:"SENTINEL_LOG_FILE"`
}

// NewsConfig controls the RSS headline ticker. An empty Feeds list falls back
// to the built-in defaults.
type NewsConfig struct {
	Feeds           []string      `yaml:"feeds" env:"SENTINEL_NEWS_FEEDS" envSeparator:","`
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"SENTINEL_NEWS_REFRESH_INTERVAL" default:"10m" validate:"gt=0"`
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".sentinel", "config.yaml")
	}
	return filepath.Join(home, ".sentinel", "config.yaml")
}

// Load builds a Config from defaults, the YAML file at path when it exists,
// and environment overrides, then validates the result. A missing file is not
// an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// run on defaults
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Database.Path = expandHome(cfg.Database.Path)
	cfg.Fiscal.Path = expandHome(cfg.Fiscal.Path)
	if cfg.Log.File != "" {
		cfg.Log.File = expandHome(cfg.Log.File)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", formatValidationError(err))
	}
	return cfg, nil
}

// expandHome resolves a leading "~/" against the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s",
				fe.Namespace(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "gt", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Namespace(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
