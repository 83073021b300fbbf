package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitepublish/internal/identity"
	"github.com/goliatone/go-sitepublish/internal/logging"
	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

const settingsRowID = 1

var errDatabaseRequired = errors.New("store: bun database is required")

// Store is the bun-backed content source of the publisher. It implements the locale, site
// settings, page and media provider contracts.
type Store struct {
	db     *bun.DB
	pages  repository.Repository[*Page]
	media  repository.Repository[*Media]
	logger interfaces.Logger
	now    func() time.Time
}

var (
	_ interfaces.LocaleProvider       = (*Store)(nil)
	_ interfaces.SiteSettingsProvider = (*Store)(nil)
	_ interfaces.PageProvider         = (*Store)(nil)
	_ interfaces.MediaProvider        = (*Store)(nil)
)

type options struct {
	cache      cache.CacheService
	serializer cache.KeySerializer
	logger     interfaces.Logger
}

// Option customises a Store.
type Option func(*options)

// WithCache routes single-record page and media reads through go-repository-cache.
func WithCache(service cache.CacheService, serializer cache.KeySerializer) Option {
	return func(o *options) {
		o.cache = service
		o.serializer = serializer
	}
}

// WithLogger sets the store logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New wires a Store over db. Call Migrate before first use.
func New(db *bun.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, errDatabaseRequired
	}
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{
		db:     db,
		pages:  wrapWithCache(newPageRepository(db), cfg.cache, cfg.serializer),
		media:  wrapWithCache(newMediaRepository(db), cfg.cache, cfg.serializer),
		logger: logging.OrNoOp(cfg.logger),
		now:    time.Now,
	}, nil
}

// GetLocales returns the configured locales by position.
func (s *Store) GetLocales(ctx context.Context) ([]interfaces.Locale, error) {
	var rows []Locale
	if err := s.db.NewSelect().
		Model(&rows).
		OrderExpr("l.position ASC").
		OrderExpr("l.code ASC").
		Scan(ctx); err != nil {
		return nil, err
	}
	locales := make([]interfaces.Locale, 0, len(rows))
	for _, row := range rows {
		locales = append(locales, interfaces.Locale{Code: row.Code, IsDefault: row.IsDefault})
	}
	return locales, nil
}

// GetDefaultLocale returns the flagged default, else the first locale, else "".
func (s *Store) GetDefaultLocale(ctx context.Context) (string, error) {
	locales, err := s.GetLocales(ctx)
	if err != nil {
		return "", err
	}
	for _, locale := range locales {
		if locale.IsDefault {
			return locale.Code, nil
		}
	}
	if len(locales) > 0 {
		return locales[0].Code, nil
	}
	return "", nil
}

// SaveLocale inserts or updates a locale. Flagging a locale as default clears the flag on
// every other locale.
func (s *Store) SaveLocale(ctx context.Context, locale interfaces.Locale, position int) error {
	code := strings.TrimSpace(locale.Code)
	if code == "" {
		return errors.New("store: locale code is required")
	}
	row := &Locale{
		ID:        identity.LocaleUUID(code),
		Code:      code,
		IsDefault: locale.IsDefault,
		Position:  position,
		CreatedAt: s.now().UTC(),
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(row).
			On("CONFLICT (id) DO UPDATE").
			Set("is_default = EXCLUDED.is_default").
			Set("position = EXCLUDED.position").
			Exec(ctx); err != nil {
			return err
		}
		if !row.IsDefault {
			return nil
		}
		_, err := tx.NewUpdate().
			Model((*Locale)(nil)).
			Set("is_default = ?", false).
			Where("code != ?", code).
			Exec(ctx)
		return err
	})
}

// GetSiteSettings returns the stored settings. A missing row yields empty settings.
func (s *Store) GetSiteSettings(ctx context.Context) (interfaces.SiteSettings, error) {
	var row SiteSettings
	if err := s.db.NewSelect().Model(&row).Where("id = ?", settingsRowID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WithContext(ctx).Debug("store.site_settings.missing")
			return interfaces.SiteSettings{}, nil
		}
		return interfaces.SiteSettings{}, err
	}
	return row.settings(), nil
}

// SaveSiteSettings replaces the stored settings.
func (s *Store) SaveSiteSettings(ctx context.Context, settings interfaces.SiteSettings) error {
	row := &SiteSettings{
		ID:          settingsRowID,
		Hostname:    strings.TrimSpace(settings.Hostname),
		Title:       settings.Title,
		Description: settings.Description,
		Keywords:    settings.Keywords,
		Author:      settings.Author,
		FaviconKey:  strings.TrimSpace(settings.FaviconSourceKey),
		UpdatedAt:   s.now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("hostname = EXCLUDED.hostname").
		Set("title = EXCLUDED.title").
		Set("description = EXCLUDED.description").
		Set("keywords = EXCLUDED.keywords").
		Set("author = EXCLUDED.author").
		Set("favicon_key = EXCLUDED.favicon_key").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// Search lists the pages whose permalink matches pattern ("*" wildcards). For a non-empty
// locale, canonical pages without a variant in that locale are included as-is.
func (s *Store) Search(ctx context.Context, pattern string, locale string) ([]interfaces.PageRecord, error) {
	locale = strings.TrimSpace(locale)
	locales := []string{""}
	if locale != "" {
		locales = append(locales, locale)
	}

	var rows []Page
	q := s.db.NewSelect().
		Model(&rows).
		Where("p.locale IN (?)", bun.In(locales))
	if like, ok := likePattern(pattern); ok {
		q = q.Where(`p.permalink LIKE ? ESCAPE '\'`, like)
	}
	if err := q.OrderExpr("p.position ASC").OrderExpr("p.page_key ASC").Scan(ctx); err != nil {
		return nil, err
	}

	order := make([]string, 0, len(rows))
	byKey := make(map[string]*Page, len(rows))
	for i := range rows {
		row := &rows[i]
		existing, seen := byKey[row.Key]
		if !seen {
			order = append(order, row.Key)
			byKey[row.Key] = row
			continue
		}
		if existing.Locale == "" && row.Locale != "" {
			byKey[row.Key] = row
		}
	}

	records := make([]interfaces.PageRecord, 0, len(order))
	for _, key := range order {
		records = append(records, byKey[key].record())
	}
	return records, nil
}

// GetPageContent returns the body of key in locale, falling back to the canonical variant.
func (s *Store) GetPageContent(ctx context.Context, key string, locale string) (*interfaces.PageContent, error) {
	key = strings.TrimSpace(key)
	locale = strings.TrimSpace(locale)
	if locale != "" {
		page, err := s.pages.GetByID(ctx, identity.PageUUID(key, locale).String())
		if err == nil {
			return page.content(), nil
		}
		if !isNotFound(err) {
			return nil, mapRepositoryError(err, "page", key+":"+locale)
		}
	}
	page, err := s.pages.GetByID(ctx, identity.PageUUID(key, "").String())
	if err != nil {
		return nil, mapRepositoryError(err, "page", key)
	}
	return page.content(), nil
}

// SavePage inserts or updates one locale variant of a page.
func (s *Store) SavePage(ctx context.Context, page *Page) error {
	if page == nil || strings.TrimSpace(page.Key) == "" {
		return errors.New("store: page key is required")
	}
	page.Key = strings.TrimSpace(page.Key)
	page.Locale = strings.TrimSpace(page.Locale)
	page.ID = identity.PageUUID(page.Key, page.Locale)
	if page.Format == "" {
		page.Format = string(interfaces.ContentFormatHTML)
	}
	if page.Permalink == "" {
		page.Permalink = "/"
	}
	page.UpdatedAt = s.now().UTC()

	_, err := s.pages.GetByID(ctx, page.ID.String())
	switch {
	case err == nil:
		if _, err := s.pages.Update(ctx, page, repository.UpdateByID(page.ID.String())); err != nil {
			return mapRepositoryError(err, "page", page.Key)
		}
	case isNotFound(err):
		if _, err := s.pages.Create(ctx, page); err != nil {
			return mapRepositoryError(err, "page", page.Key)
		}
	default:
		return mapRepositoryError(err, "page", page.Key)
	}
	s.logger.Debug("store.page.saved", "page_key", page.Key, "locale", page.Locale)
	return nil
}

// GetMediaByKey resolves a media key. Unknown keys return nil without error.
func (s *Store) GetMediaByKey(ctx context.Context, key string) (*interfaces.MediaAsset, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	media, err := s.media.GetByIdentifier(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, mapRepositoryError(err, "media", key)
	}
	return &interfaces.MediaAsset{Key: media.Key, Permalink: media.Permalink, ContentType: media.ContentType}, nil
}

// SaveMedia registers a media asset.
func (s *Store) SaveMedia(ctx context.Context, asset interfaces.MediaAsset) error {
	key := strings.TrimSpace(asset.Key)
	if key == "" {
		return errors.New("store: media key is required")
	}
	row := &Media{
		ID:          identity.MediaUUID(key),
		Key:         key,
		Permalink:   asset.Permalink,
		ContentType: asset.ContentType,
	}
	_, err := s.media.GetByID(ctx, row.ID.String())
	switch {
	case err == nil:
		_, err = s.media.Update(ctx, row, repository.UpdateByID(row.ID.String()))
	case isNotFound(err):
		_, err = s.media.Create(ctx, row)
	}
	if err != nil {
		return mapRepositoryError(err, "media", key)
	}
	return nil
}

// likePattern converts a "*" glob into a LIKE expression. Empty and "*" match everything.
func likePattern(pattern string) (string, bool) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || pattern == "*" {
		return "", false
	}
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `*`, `%`)
	return replacer.Replace(pattern), true
}
