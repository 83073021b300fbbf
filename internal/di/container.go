package di

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	storageadapter "github.com/goliatone/go-sitepublish/internal/adapters/storage"
	"github.com/goliatone/go-sitepublish/internal/blobstore"
	"github.com/goliatone/go-sitepublish/internal/commands"
	markdowncmd "github.com/goliatone/go-sitepublish/internal/commands/markdown"
	publishcmd "github.com/goliatone/go-sitepublish/internal/commands/publish"
	"github.com/goliatone/go-sitepublish/internal/logging"
	"github.com/goliatone/go-sitepublish/internal/logging/console"
	"github.com/goliatone/go-sitepublish/internal/logging/gologger"
	"github.com/goliatone/go-sitepublish/internal/markdown"
	"github.com/goliatone/go-sitepublish/internal/metrics"
	"github.com/goliatone/go-sitepublish/internal/publish"
	"github.com/goliatone/go-sitepublish/internal/render"
	"github.com/goliatone/go-sitepublish/internal/runtimeconfig"
	"github.com/goliatone/go-sitepublish/internal/scheduler"
	"github.com/goliatone/go-sitepublish/internal/store"
	"github.com/goliatone/go-sitepublish/internal/styles"
	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

const sqliteDriver = "sqlite3"

// Container wires the publisher from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	fs             afero.Fs
	bunDB          *bun.DB
	ownsDB         bool
	loggerProvider interfaces.LoggerProvider
	cacheService   repocache.CacheService
	keySerializer  repocache.KeySerializer
	blobs          interfaces.BlobStorage
	styleCompiler  interfaces.StyleCompiler
	renderer       interfaces.HTMLRenderer
	registry       *prom.Registry
	recorder       metrics.Recorder

	store     *store.Store
	publisher *publish.Service
	importer  *markdown.Importer
	closed    bool
}

// Option overrides a dependency before the container is built.
type Option func(*Container)

// WithBunDB supplies an open database. The container does not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithFS sets the filesystem used for markdown import and fs output.
func WithFS(fs afero.Fs) Option {
	return func(c *Container) {
		c.fs = fs
	}
}

// WithLoggerProvider replaces the provider selected by the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithCache supplies the repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithBlobStorage replaces the artifact store selected by the output config.
func WithBlobStorage(storage interfaces.BlobStorage) Option {
	return func(c *Container) {
		c.blobs = storage
	}
}

// WithStyleCompiler replaces the global style compiler.
func WithStyleCompiler(compiler interfaces.StyleCompiler) Option {
	return func(c *Container) {
		c.styleCompiler = compiler
	}
}

// WithRenderer replaces the page renderer.
func WithRenderer(renderer interfaces.HTMLRenderer) Option {
	return func(c *Container) {
		c.renderer = renderer
	}
}

// WithRegistry sets the Prometheus registry metrics are registered on.
func WithRegistry(registry *prom.Registry) Option {
	return func(c *Container) {
		c.registry = registry
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	steps := []func(context.Context) error{
		c.configureLogging,
		c.configureDatabase,
		c.configureStore,
		c.configureBlobs,
		c.configureRendering,
		c.configureMetrics,
		c.configurePublisher,
		c.configureImporter,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) configureLogging(context.Context) error {
	if c.loggerProvider != nil {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level, _ := console.ParseLevel(cfg.Level)
		c.loggerProvider = console.NewProvider(console.Options{Writer: os.Stderr, MinLevel: &level})
	}
	return nil
}

func (c *Container) configureDatabase(ctx context.Context) error {
	if c.bunDB == nil {
		sqlDB, err := sql.Open(sqliteDriver, c.Config.Database.DSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		c.bunDB = bun.NewDB(sqlDB, sqlitedialect.New())
		c.bunDB.SetMaxOpenConns(1)
		c.ownsDB = true
	}
	if c.Config.Database.Migrate {
		if err := store.Migrate(ctx, c.bunDB); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}
	return nil
}

func (c *Container) configureStore(context.Context) error {
	opts := []store.Option{store.WithLogger(logging.StoreLogger(c.loggerProvider))}
	if c.Config.Cache.Enabled {
		if c.cacheService == nil {
			cacheCfg := repocache.DefaultConfig()
			cacheCfg.TTL = c.Config.Cache.TTL
			service, err := repocache.NewCacheService(cacheCfg)
			if err != nil {
				return fmt.Errorf("create cache: %w", err)
			}
			c.cacheService = service
		}
		if c.keySerializer == nil {
			c.keySerializer = repocache.NewDefaultKeySerializer()
		}
		opts = append(opts, store.WithCache(c.cacheService, c.keySerializer))
	}
	s, err := store.New(c.bunDB, opts...)
	if err != nil {
		return err
	}
	c.store = s
	return nil
}

func (c *Container) configureBlobs(ctx context.Context) error {
	if c.blobs != nil {
		return nil
	}
	out := c.Config.Output
	switch strings.ToLower(strings.TrimSpace(out.Provider)) {
	case runtimeconfig.OutputProviderSQL:
		sqlStore, err := blobstore.NewSQLStore(storageadapter.NewSQLAdapter(c.bunDB.DB), out.Table)
		if err != nil {
			return err
		}
		if err := sqlStore.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("create artifact table: %w", err)
		}
		c.blobs = sqlStore
	default:
		c.blobs = blobstore.NewFSStore(c.filesystem(), out.Dir)
	}
	return nil
}

func (c *Container) configureRendering(context.Context) error {
	if c.styleCompiler == nil {
		if theme := c.Config.Theme; strings.TrimSpace(theme.Name) != "" {
			c.styleCompiler = styles.NewThemeCompiler(styles.ThemeConfig{
				Dir:       theme.Dir,
				Name:      theme.Name,
				Variant:   theme.Variant,
				CSSPrefix: theme.CSSPrefix,
			}, nil)
		} else {
			c.styleCompiler = styles.StaticCompiler{}
		}
	}
	if c.renderer == nil {
		var opts []render.Option
		if file := strings.TrimSpace(c.Config.Layout.File); file != "" {
			opts = append(opts, render.WithLayoutFile(file))
		}
		renderer, err := render.NewTemplateRenderer(opts...)
		if err != nil {
			return err
		}
		c.renderer = renderer
	}
	return nil
}

func (c *Container) configureMetrics(context.Context) error {
	if !c.Config.Metrics.Enabled && c.registry == nil {
		c.recorder = metrics.NoopRecorder{}
		return nil
	}
	if c.registry == nil {
		c.registry = prom.NewRegistry()
	}
	c.recorder = metrics.NewPrometheusRecorder(c.registry)
	return nil
}

func (c *Container) configurePublisher(context.Context) error {
	svc, err := publish.NewService(publish.Config{
		Pattern: c.Config.Publish.Pattern,
		Workers: c.Config.Publish.Workers,
	}, publish.Dependencies{
		Locales:  c.store,
		Settings: c.store,
		Pages:    c.store,
		Media:    c.store,
		Styles:   c.styleCompiler,
		Renderer: c.renderer,
		Storage:  c.blobs,
		Logger:   logging.PublishLogger(c.loggerProvider),
		Metrics:  c.recorder,
	})
	if err != nil {
		return err
	}
	c.publisher = svc
	return nil
}

func (c *Container) configureImporter(context.Context) error {
	importer, err := markdown.NewImporter(c.store, logging.ImportLogger(c.loggerProvider))
	if err != nil {
		return err
	}
	c.importer = importer
	return nil
}

func (c *Container) filesystem() afero.Fs {
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	return c.fs
}

// Store returns the content store.
func (c *Container) Store() *store.Store { return c.store }

// Publisher returns the publish service.
func (c *Container) Publisher() *publish.Service { return c.publisher }

// Importer returns the markdown importer.
func (c *Container) Importer() *markdown.Importer { return c.importer }

// Blobs returns the artifact store.
func (c *Container) Blobs() interfaces.BlobStorage { return c.blobs }

// Logger returns a logger scoped to module.
func (c *Container) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}

// PublishHandler returns the publish command handler.
func (c *Container) PublishHandler() *publishcmd.PublishSiteHandler {
	return publishcmd.NewPublishSiteHandler(c.publisher, commands.CommandLogger(c.loggerProvider, "publish"))
}

// ImportHandler returns the markdown import command handler.
func (c *Container) ImportHandler() *markdowncmd.ImportDirectoryHandler {
	return markdowncmd.NewImportDirectoryHandler(c.filesystem(), c.importer, commands.CommandLogger(c.loggerProvider, "markdown"))
}

// Scheduler returns a stopped scheduler bound to the publisher.
func (c *Container) Scheduler() (*scheduler.Scheduler, error) {
	return scheduler.New(c.publisher, logging.SchedulerLogger(c.loggerProvider))
}

// MetricsHandler serves the registry, or nil when metrics are disabled.
func (c *Container) MetricsHandler() http.Handler {
	if c.registry == nil {
		return nil
	}
	return metrics.HTTPHandler(c.registry)
}

// Close releases the database when the container opened it. Later calls are no-ops.
func (c *Container) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.ownsDB && c.bunDB != nil {
		return c.bunDB.Close()
	}
	return nil
}
