package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

const (
	rootModule      = "sitepublish"
	publishModule   = "sitepublish.publish"
	storeModule     = "sitepublish.store"
	schedulerModule = "sitepublish.scheduler"
	importModule    = "sitepublish.import"
)

const (
	fieldPageKey   = "page_key"
	fieldLocale    = "locale"
	fieldPermalink = "permalink"
)

// ModuleLogger returns a logger scoped to module. A nil provider, or one that
// returns nil, yields a no-op logger; every logger carries a "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	var logger interfaces.Logger = noopLogger{}
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// PublishLogger returns the logger namespace used by the publishing orchestrator.
func PublishLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, publishModule)
}

// StoreLogger returns the logger namespace used by the content store.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// SchedulerLogger returns the logger namespace used by periodic publishing.
func SchedulerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, schedulerModule)
}

// ImportLogger returns the logger namespace used by the markdown importer.
func ImportLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, importModule)
}

// WithPageContext attaches page identifying fields. Empty values are skipped.
func WithPageContext(logger interfaces.Logger, key, locale, permalink string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(key); trimmed != "" {
		fields[fieldPageKey] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldLocale] = trimmed
	}
	if trimmed := strings.TrimSpace(permalink); trimmed != "" {
		fields[fieldPermalink] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
