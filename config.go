package sitepublish

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sitepublish/internal/runtimeconfig"
)

var (
	ErrDatabaseDSNRequired       = runtimeconfig.ErrDatabaseDSNRequired
	ErrCacheTTLInvalid           = runtimeconfig.ErrCacheTTLInvalid
	ErrWorkersInvalid            = runtimeconfig.ErrWorkersInvalid
	ErrIntervalInvalid           = runtimeconfig.ErrIntervalInvalid
	ErrOutputProviderUnknown     = runtimeconfig.ErrOutputProviderUnknown
	ErrOutputDirRequired         = runtimeconfig.ErrOutputDirRequired
	ErrThemeDirRequired          = runtimeconfig.ErrThemeDirRequired
	ErrMarkdownContentDirMissing = runtimeconfig.ErrMarkdownContentDirMissing
	ErrMetricsAddressRequired    = runtimeconfig.ErrMetricsAddressRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
)

const (
	OutputProviderFS  = runtimeconfig.OutputProviderFS
	OutputProviderSQL = runtimeconfig.OutputProviderSQL
)

type (
	Config         = runtimeconfig.Config
	DatabaseConfig = runtimeconfig.DatabaseConfig
	CacheConfig    = runtimeconfig.CacheConfig
	PublishConfig  = runtimeconfig.PublishConfig
	OutputConfig   = runtimeconfig.OutputConfig
	ThemeConfig    = runtimeconfig.ThemeConfig
	LayoutConfig   = runtimeconfig.LayoutConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	MetricsConfig  = runtimeconfig.MetricsConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file over DefaultConfig. Keys missing from the file keep
// their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
