package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrDatabaseDSNRequired       = errors.New("sitepublish config: database dsn is required")
	ErrCacheTTLInvalid           = errors.New("sitepublish config: cache ttl must be positive when cache is enabled")
	ErrWorkersInvalid            = errors.New("sitepublish config: publish workers must be zero or positive")
	ErrIntervalInvalid           = errors.New("sitepublish config: publish interval must be zero or positive")
	ErrOutputProviderUnknown     = errors.New("sitepublish config: output provider is invalid")
	ErrOutputDirRequired         = errors.New("sitepublish config: output directory is required for the fs provider")
	ErrThemeDirRequired          = errors.New("sitepublish config: theme directory is required when a theme is named")
	ErrMarkdownContentDirMissing = errors.New("sitepublish config: markdown content directory is required when import is enabled")
	ErrMetricsAddressRequired    = errors.New("sitepublish config: metrics address is required when metrics are enabled")
	ErrLoggingProviderUnknown    = errors.New("sitepublish config: logging provider is invalid")
	ErrLoggingLevelInvalid       = errors.New("sitepublish config: logging level is invalid")
	ErrLoggingFormatInvalid      = errors.New("sitepublish config: logging format is invalid")
)

const (
	OutputProviderFS  = "fs"
	OutputProviderSQL = "sql"
)

// Config is the publisher runtime configuration. It is loaded from YAML by the CLI.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Publish  PublishConfig  `yaml:"publish"`
	Output   OutputConfig   `yaml:"output"`
	Theme    ThemeConfig    `yaml:"theme"`
	Layout   LayoutConfig   `yaml:"layout"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig points at the sqlite content database.
type DatabaseConfig struct {
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

// CacheConfig controls the read-through repository cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// PublishConfig tunes a publish run. A zero Interval publishes once and exits.
type PublishConfig struct {
	Pattern    string        `yaml:"pattern"`
	Workers    int           `yaml:"workers"`
	Interval   time.Duration `yaml:"interval"`
	RunOnStart bool          `yaml:"run_on_start"`
}

// OutputConfig selects where published artifacts are written.
type OutputConfig struct {
	Provider string `yaml:"provider"`
	Dir      string `yaml:"dir"`
	Table    string `yaml:"table"`
}

// ThemeConfig names the go-theme manifest compiled into the global style sheet.
type ThemeConfig struct {
	Dir       string `yaml:"dir"`
	Name      string `yaml:"name"`
	Variant   string `yaml:"variant"`
	CSSPrefix string `yaml:"css_prefix"`
}

// LayoutConfig overrides the built-in page layout.
type LayoutConfig struct {
	File string `yaml:"file"`
}

// MarkdownConfig controls the optional import that runs before publishing.
type MarkdownConfig struct {
	Enabled       bool     `yaml:"enabled"`
	ContentDir    string   `yaml:"content_dir"`
	Locales       []string `yaml:"locales"`
	DefaultLocale string   `yaml:"default_locale"`
}

// MetricsConfig exposes Prometheus metrics over HTTP.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// LoggingConfig selects the log provider.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			DSN:     "file:sitepublish.db?cache=shared&_fk=1",
			Migrate: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Minute,
		},
		Publish: PublishConfig{
			Pattern:    "*",
			RunOnStart: true,
		},
		Output: OutputConfig{
			Provider: OutputProviderFS,
			Dir:      "dist",
		},
		Markdown: MarkdownConfig{
			ContentDir: "content",
		},
		Metrics: MetricsConfig{
			Address: ":9090",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate checks the configuration for inconsistent values.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return ErrDatabaseDSNRequired
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Publish.Workers < 0 {
		return ErrWorkersInvalid
	}
	if cfg.Publish.Interval < 0 {
		return ErrIntervalInvalid
	}
	switch provider := normalize(cfg.Output.Provider); provider {
	case OutputProviderFS:
		if strings.TrimSpace(cfg.Output.Dir) == "" {
			return ErrOutputDirRequired
		}
	case OutputProviderSQL:
	default:
		return fmt.Errorf("%w: %s", ErrOutputProviderUnknown, provider)
	}
	if strings.TrimSpace(cfg.Theme.Name) != "" && strings.TrimSpace(cfg.Theme.Dir) == "" {
		return ErrThemeDirRequired
	}
	if cfg.Markdown.Enabled && strings.TrimSpace(cfg.Markdown.ContentDir) == "" {
		return ErrMarkdownContentDirMissing
	}
	if cfg.Metrics.Enabled && strings.TrimSpace(cfg.Metrics.Address) == "" {
		return ErrMetricsAddressRequired
	}

	provider := normalize(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
