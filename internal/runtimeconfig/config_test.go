package runtimeconfig_test

import (
	"errors"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sitepublish/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"missing dsn", func(c *runtimeconfig.Config) { c.Database.DSN = " " }, runtimeconfig.ErrDatabaseDSNRequired},
		{"cache without ttl", func(c *runtimeconfig.Config) { c.Cache.TTL = 0 }, runtimeconfig.ErrCacheTTLInvalid},
		{"negative workers", func(c *runtimeconfig.Config) { c.Publish.Workers = -1 }, runtimeconfig.ErrWorkersInvalid},
		{"negative interval", func(c *runtimeconfig.Config) { c.Publish.Interval = -time.Second }, runtimeconfig.ErrIntervalInvalid},
		{"unknown output", func(c *runtimeconfig.Config) { c.Output.Provider = "s3" }, runtimeconfig.ErrOutputProviderUnknown},
		{"fs without dir", func(c *runtimeconfig.Config) { c.Output.Dir = "" }, runtimeconfig.ErrOutputDirRequired},
		{"theme without dir", func(c *runtimeconfig.Config) { c.Theme.Name = "default" }, runtimeconfig.ErrThemeDirRequired},
		{"markdown without dir", func(c *runtimeconfig.Config) {
			c.Markdown.Enabled = true
			c.Markdown.ContentDir = ""
		}, runtimeconfig.ErrMarkdownContentDirMissing},
		{"metrics without address", func(c *runtimeconfig.Config) {
			c.Metrics.Enabled = true
			c.Metrics.Address = ""
		}, runtimeconfig.ErrMetricsAddressRequired},
		{"unknown logger", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"bad level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"bad format", func(c *runtimeconfig.Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, runtimeconfig.ErrLoggingFormatInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidateAcceptsSQLOutputWithoutDir(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Output = runtimeconfig.OutputConfig{Provider: runtimeconfig.OutputProviderSQL}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigDecodesFromYAML(t *testing.T) {
	source := []byte(`
database:
  dsn: file:site.db
publish:
  pattern: "/blog/*"
  workers: 4
  interval: 15m
output:
  provider: sql
  table: artifacts
logging:
  provider: gologger
  format: pretty
  focus: [sitepublish.publish]
`)
	cfg := runtimeconfig.DefaultConfig()
	if err := yaml.Unmarshal(source, &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.Database.DSN != "file:site.db" || !cfg.Database.Migrate {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Publish.Pattern != "/blog/*" || cfg.Publish.Workers != 4 || cfg.Publish.Interval != 15*time.Minute {
		t.Fatalf("unexpected publish config %+v", cfg.Publish)
	}
	if cfg.Output.Provider != "sql" || cfg.Output.Table != "artifacts" {
		t.Fatalf("unexpected output config %+v", cfg.Output)
	}
	if len(cfg.Logging.Focus) != 1 || cfg.Logging.Format != "pretty" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}
