// Package sitepublish publishes a CMS site as static files: every page in every locale is
// rendered, minified and uploaded together with its style sheets, a sitemap and a search
// index.
package sitepublish

import (
	"context"
	"net/http"

	markdowncmd "github.com/goliatone/go-sitepublish/internal/commands/markdown"
	publishcmd "github.com/goliatone/go-sitepublish/internal/commands/publish"
	"github.com/goliatone/go-sitepublish/internal/di"
	"github.com/goliatone/go-sitepublish/internal/publish"
	"github.com/goliatone/go-sitepublish/internal/scheduler"
	"github.com/goliatone/go-sitepublish/internal/store"
	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

type (
	// Result is the outcome of one publish run.
	Result = publish.Result
	// PageOutcome is the outcome of one page within a run.
	PageOutcome = publish.PageOutcome
	// RenderError is the error recorded for a page that could not be published.
	RenderError = publish.RenderError
	// RunError is the error recorded when a run stops before finishing.
	RunError = publish.RunError
	// Store is the sqlite content store.
	Store = store.Store
	// Page is one stored page variant.
	Page = store.Page
	// Scheduler republishes on an interval.
	Scheduler = scheduler.Scheduler
	// Option overrides a dependency of the module.
	Option = di.Option
)

var (
	WithBunDB          = di.WithBunDB
	WithFS             = di.WithFS
	WithLoggerProvider = di.WithLoggerProvider
	WithCache          = di.WithCache
	WithBlobStorage    = di.WithBlobStorage
	WithStyleCompiler  = di.WithStyleCompiler
	WithRenderer       = di.WithRenderer
	WithRegistry       = di.WithRegistry
)

// Module is the top level publisher runtime.
type Module struct {
	container *di.Container
}

// New builds a module from cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Store exposes the content store for seeding locales, settings, pages and media.
func (m *Module) Store() *Store {
	return m.container.Store()
}

// Publish runs one publish pass through the command handler. The result is returned
// even when the command fails.
func (m *Module) Publish(ctx context.Context, reason string, failOnPageErrors bool) (*Result, error) {
	var result *Result
	err := m.container.PublishHandler().Execute(ctx, publishcmd.PublishSiteCommand{
		Reason:           reason,
		FailOnPageErrors: failOnPageErrors,
		ResultCallback:   func(r *Result) { result = r },
	})
	return result, err
}

// ImportMarkdown imports every markdown file below dir.
func (m *Module) ImportMarkdown(ctx context.Context, dir string, locales []string, defaultLocale string) error {
	return m.container.ImportHandler().Execute(ctx, markdowncmd.ImportDirectoryCommand{
		Directory:     dir,
		Locales:       locales,
		DefaultLocale: defaultLocale,
	})
}

// Scheduler returns a stopped scheduler bound to the publisher.
func (m *Module) Scheduler() (*Scheduler, error) {
	return m.container.Scheduler()
}

// MetricsHandler serves Prometheus metrics, or nil when metrics are disabled.
func (m *Module) MetricsHandler() http.Handler {
	return m.container.MetricsHandler()
}

// Logger returns a logger scoped to module.
func (m *Module) Logger(module string) interfaces.Logger {
	return m.container.Logger(module)
}

// Close releases resources the module opened.
func (m *Module) Close() error {
	return m.container.Close()
}
