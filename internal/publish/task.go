package publish

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-sitepublish/internal/linkeddata"
	"github.com/goliatone/go-sitepublish/internal/logging"
	"github.com/goliatone/go-sitepublish/internal/metrics"
	"github.com/goliatone/go-sitepublish/internal/search"
	"github.com/goliatone/go-sitepublish/internal/styles"
	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

// publishPage renders and uploads one page. Every failure is captured on the outcome so
// sibling tasks keep running.
func (s *Service) publishPage(ctx context.Context, state *runState, task pageTask) PageOutcome {
	record := task.page
	outcome := PageOutcome{
		Key:       record.Key,
		Title:     record.Title,
		Locale:    task.locale,
		Permalink: task.permalink,
	}
	logger := logging.WithPageContext(state.logger, record.Key, task.locale, task.permalink)
	errorTitle := firstNonEmpty(record.Title, record.Key, task.permalink)

	fail := func(err error, category goerrors.Category, code, message string) PageOutcome {
		outcome.Err = pageError(errorTitle, err, category, code, message)
		logger.Error("publish.page.failed", "error", outcome.Err)
		s.metrics.IncPageResult(task.locale, metrics.PageFailed)
		return outcome
	}

	if err := ctx.Err(); err != nil {
		return fail(err, goerrors.CategoryInternal, codePageRender, "publish cancelled")
	}

	content, err := s.deps.Pages.GetPageContent(ctx, record.Key, task.contentLocale)
	if err != nil {
		return fail(err, goerrors.CategoryExternal, codePageContent, "fetch page content")
	}
	if content == nil {
		content = &interfaces.PageContent{Format: interfaces.ContentFormatHTML}
	}

	manager := styles.NewManager()
	page := s.buildRenderContext(ctx, logger, state.settings, task, content, manager)

	raw, err := s.deps.Renderer.RenderHTML(ctx, page)
	if err != nil {
		return fail(err, goerrors.CategoryInternal, codePageRender, "render html")
	}
	html, err := s.minifier.Minify(errorTitle, raw)
	if err != nil {
		return fail(err, goerrors.CategoryInternal, codePageRender, "minify html")
	}

	if err := s.extractor.BuildLocalStyle(ctx, task.permalink, manager.StyleSheets()); err != nil {
		return fail(err, goerrors.CategoryExternal, codePageStyle, "upload page style sheet")
	}

	doc, err := search.NewDocument(search.Entry{
		Permalink:   task.permalink,
		Title:       page.Title,
		Description: page.Description,
		Locale:      task.locale,
		HTML:        html,
	})
	if err != nil {
		return fail(err, goerrors.CategoryInternal, codePageRender, "index page text")
	}

	output := OutputPath(task.permalink)
	if err := s.deps.Storage.UploadBlob(ctx, output, []byte(html), contentTypeHTML); err != nil {
		return fail(err, goerrors.CategoryExternal, codePageUpload, "upload page")
	}

	state.search.Add(doc)
	state.sitemap.AppendPermalink(task.permalink)

	outcome.Output = output
	s.metrics.IncPageResult(task.locale, metrics.PagePublished)
	logger.Debug("publish.page.published", "output", output, "bytes", len(html))
	return outcome
}

func (s *Service) buildRenderContext(
	ctx context.Context,
	logger interfaces.Logger,
	settings interfaces.SiteSettings,
	task pageTask,
	content *interfaces.PageContent,
	manager *styles.Manager,
) *interfaces.RenderContext {
	record := task.page
	url := AbsoluteURL(settings.Hostname, task.permalink)
	title := PageTitle(record.Title, settings.Title)
	description := firstNonEmpty(record.Description, settings.Description)

	page := &interfaces.RenderContext{
		Title:       title,
		Description: description,
		Keywords:    firstNonEmpty(record.Keywords, settings.Keywords),
		Permalink:   task.permalink,
		URL:         url,
		Author:      strings.TrimSpace(settings.Author),
		Locale:      task.locale,
		StyleReferences: []string{
			styles.GlobalStylePath,
			styles.LocalStylePath(task.permalink),
		},
		OpenGraph: interfaces.OpenGraph{
			Type:        OpenGraphType(task.permalink),
			Title:       title,
			Description: description,
			URL:         url,
			SiteName:    strings.TrimSpace(settings.Title),
		},
		Bindings: interfaces.RenderBindings{
			Styles:         manager,
			NavigationPath: task.permalink,
			Locale:         task.locale,
			Content:        content,
		},
	}

	if share := record.SocialShare; share != nil {
		page.OpenGraph.Title = firstNonEmpty(share.Title, page.OpenGraph.Title)
		page.OpenGraph.Description = firstNonEmpty(share.Description, page.OpenGraph.Description)
		if image := s.resolveMedia(ctx, logger, share.ImageSourceKey, "share_image"); image != "" {
			page.OpenGraph.Image = AbsoluteURL(settings.Hostname, image)
		}
	}

	if strings.TrimSpace(record.JSONLD) != "" {
		data, err := linkeddata.Parse(record.JSONLD)
		if err != nil {
			logger.Warn("publish.page.linked_data_invalid", "error", err)
		} else {
			page.LinkedData = data
		}
	}

	page.FaviconPermalink = s.resolveMedia(ctx, logger, settings.FaviconSourceKey, "favicon")
	return page
}

// resolveMedia looks key up and returns the asset permalink. Lookup failures and unknown
// keys are logged and yield "".
func (s *Service) resolveMedia(ctx context.Context, logger interfaces.Logger, key, purpose string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if s.deps.Media == nil {
		logger.Warn("publish.page.media_unavailable", "media_key", key, "purpose", purpose)
		return ""
	}
	asset, err := s.deps.Media.GetMediaByKey(ctx, key)
	if err != nil {
		logger.Warn("publish.page.media_lookup_failed", "media_key", key, "purpose", purpose, "error", err)
		return ""
	}
	if asset == nil || strings.TrimSpace(asset.Permalink) == "" {
		logger.Warn("publish.page.media_missing", "media_key", key, "purpose", purpose)
		return ""
	}
	return asset.Permalink
}
