package publish

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitepublish/internal/logging"
	"github.com/goliatone/go-sitepublish/internal/metrics"
	"github.com/goliatone/go-sitepublish/internal/render"
	"github.com/goliatone/go-sitepublish/internal/search"
	"github.com/goliatone/go-sitepublish/internal/sitemap"
	"github.com/goliatone/go-sitepublish/internal/styles"
	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

const (
	// SitemapPath is where the sitemap document is uploaded.
	SitemapPath = "/sitemap.xml"
	// SearchIndexPath is where the search index is uploaded.
	SearchIndexPath = "/search-index.json"

	contentTypeHTML = "text/html"
	contentTypeXML  = "application/xml"
	contentTypeJSON = "application/json"

	defaultPattern = "*"
)

// Minifier compresses a rendered page. The title names the page in errors.
type Minifier interface {
	Minify(title, source string) (string, error)
}

// Config captures runtime toggles for a publish run.
type Config struct {
	// Pattern filters the pages returned by the page provider. Empty means "*".
	Pattern string
	// Workers bounds concurrent page tasks. Zero or less runs every task on its own goroutine.
	Workers int
}

// Dependencies lists the collaborators of the publisher. Media and Styles are optional.
type Dependencies struct {
	Locales  interfaces.LocaleProvider
	Settings interfaces.SiteSettingsProvider
	Pages    interfaces.PageProvider
	Media    interfaces.MediaProvider
	Styles   interfaces.StyleCompiler
	Renderer interfaces.HTMLRenderer
	Minifier Minifier
	Storage  interfaces.BlobStorage
	Logger   interfaces.Logger
	Metrics  metrics.Recorder
	RunID    func() string
}

// Service publishes every page of the site in every locale.
type Service struct {
	cfg       Config
	deps      Dependencies
	logger    interfaces.Logger
	metrics   metrics.Recorder
	extractor *styles.Extractor
	minifier  Minifier
	runID     func() string
	now       func() time.Time
}

// NewService validates the dependencies and wires a publisher.
func NewService(cfg Config, deps Dependencies) (*Service, error) {
	switch {
	case deps.Locales == nil:
		return nil, errLocalesRequired
	case deps.Settings == nil:
		return nil, errSettingsRequired
	case deps.Pages == nil:
		return nil, errPagesRequired
	case deps.Renderer == nil:
		return nil, errRendererRequired
	case deps.Storage == nil:
		return nil, errStorageRequired
	}
	if strings.TrimSpace(cfg.Pattern) == "" {
		cfg.Pattern = defaultPattern
	}
	if deps.Styles == nil {
		deps.Styles = styles.StaticCompiler{}
	}

	svc := &Service{
		cfg:       cfg,
		deps:      deps,
		logger:    logging.OrNoOp(deps.Logger),
		metrics:   metrics.OrNoop(deps.Metrics),
		extractor: styles.NewExtractor(deps.Storage),
		minifier:  deps.Minifier,
		runID:     deps.RunID,
		now:       time.Now,
	}
	if svc.minifier == nil {
		svc.minifier = render.NewMinifier()
	}
	if svc.runID == nil {
		svc.runID = uuid.NewString
	}
	return svc, nil
}

type pageTask struct {
	page          interfaces.PageRecord
	locale        string
	contentLocale string
	permalink     string
}

type runState struct {
	settings interfaces.SiteSettings
	sitemap  *sitemap.Accumulator
	search   *search.Accumulator
	logger   interfaces.Logger
}

// Publish runs one full publish. It never returns an error: run-level failures are logged
// and reported through Result.Err, page failures through Result.Pages.
func (s *Service) Publish(ctx context.Context) *Result {
	if ctx == nil {
		ctx = context.Background()
	}
	start := s.now()
	result := &Result{RunID: s.runID()}
	ctx = logging.ContextWithFields(ctx, map[string]any{"run_id": result.RunID})
	logger := logging.WithFields(s.logger, map[string]any{"run_id": result.RunID})
	logger.Info("publish.start")

	if err := s.run(ctx, logger, result); err != nil {
		result.Err = err
		logger.Error("publish.failed", "error", err)
	}

	result.Duration = s.now().Sub(start)
	s.metrics.ObservePublishDuration(result.Duration)
	s.metrics.IncPublishOutcome(result.Outcome())
	logger.Info("publish.complete",
		"outcome", string(result.Outcome()),
		"published", result.Published,
		"failed", result.Failed,
		"duration", result.Duration,
	)
	return result
}

func (s *Service) run(ctx context.Context, logger interfaces.Logger, result *Result) error {
	locales, defaultLocale, err := s.resolveLocales(ctx)
	if err != nil {
		return runError(err, codeLocales, "resolve locales")
	}
	for _, locale := range locales {
		result.Locales = append(result.Locales, locale.Code)
	}

	sheet, err := s.deps.Styles.GetStyleSheet(ctx)
	if err != nil {
		return runError(err, codeStyles, "compile global style sheet")
	}
	if err := s.extractor.BuildGlobalStyle(ctx, sheet); err != nil {
		return runError(err, codeStyles, "upload global style sheet")
	}

	settings, err := s.deps.Settings.GetSiteSettings(ctx)
	if err != nil {
		return runError(err, codeSettings, "fetch site settings")
	}

	state := &runState{
		settings: settings,
		sitemap:  sitemap.NewAccumulator(settings.Hostname),
		search:   search.NewAccumulator(),
		logger:   logger,
	}

	tasks, err := s.collectTasks(ctx, locales, defaultLocale)
	if err != nil {
		return runError(err, codePages, "list pages")
	}
	logger.Debug("publish.tasks.scheduled", "tasks", len(tasks), "locales", len(locales))

	result.Pages = s.execute(ctx, state, tasks)
	for _, page := range result.Pages {
		if page.Err != nil {
			result.Failed++
			continue
		}
		result.Published++
	}

	doc, err := state.sitemap.Build()
	if err != nil {
		return runError(err, codeSitemap, "build sitemap")
	}
	if err := s.deps.Storage.UploadBlob(ctx, SitemapPath, doc, contentTypeXML); err != nil {
		return runError(err, codeSitemap, "upload sitemap")
	}

	index, err := state.search.Build()
	if err != nil {
		return runError(err, codeSearchIndex, "build search index")
	}
	if err := s.deps.Storage.UploadBlob(ctx, SearchIndexPath, index, contentTypeJSON); err != nil {
		return runError(err, codeSearchIndex, "upload search index")
	}
	return nil
}

// resolveLocales returns the configured locales and the default code. An empty list
// disables localization.
func (s *Service) resolveLocales(ctx context.Context) ([]interfaces.Locale, string, error) {
	locales, err := s.deps.Locales.GetLocales(ctx)
	if err != nil {
		return nil, "", err
	}
	if len(locales) == 0 {
		return nil, "", nil
	}
	for _, locale := range locales {
		if locale.IsDefault {
			return locales, locale.Code, nil
		}
	}
	code, err := s.deps.Locales.GetDefaultLocale(ctx)
	if err != nil {
		return nil, "", err
	}
	return locales, strings.TrimSpace(code), nil
}

func (s *Service) collectTasks(ctx context.Context, locales []interfaces.Locale, defaultLocale string) ([]pageTask, error) {
	if len(locales) == 0 {
		pages, err := s.deps.Pages.Search(ctx, s.cfg.Pattern, "")
		if err != nil {
			return nil, err
		}
		tasks := make([]pageTask, 0, len(pages))
		for _, page := range pages {
			tasks = append(tasks, pageTask{
				page:      page,
				permalink: LocalizedPermalink("", page.Permalink),
			})
		}
		return tasks, nil
	}

	var tasks []pageTask
	for _, locale := range locales {
		contentLocale := locale.Code
		if strings.EqualFold(locale.Code, defaultLocale) {
			contentLocale = ""
		}
		pages, err := s.deps.Pages.Search(ctx, s.cfg.Pattern, contentLocale)
		if err != nil {
			return nil, err
		}
		for _, page := range pages {
			tasks = append(tasks, pageTask{
				page:          page,
				locale:        locale.Code,
				contentLocale: contentLocale,
				permalink:     LocalizedPermalink(contentLocale, page.Permalink),
			})
		}
	}
	return tasks, nil
}

// execute fans the tasks out and waits for every outcome. Outcomes keep task order.
func (s *Service) execute(ctx context.Context, state *runState, tasks []pageTask) []PageOutcome {
	outcomes := make([]PageOutcome, len(tasks))
	if len(tasks) == 0 {
		return outcomes
	}

	var wg sync.WaitGroup
	workers := s.cfg.Workers
	if workers <= 0 || workers >= len(tasks) {
		for i := range tasks {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i] = s.publishPage(ctx, state, tasks[i])
			}(i)
		}
		wg.Wait()
		return outcomes
	}

	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = s.publishPage(ctx, state, tasks[i])
			}
		}()
	}
	for i := range tasks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return outcomes
}
