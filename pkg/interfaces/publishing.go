package interfaces

import "context"

// SiteSettings is the site-wide snapshot fetched once per publish run. Every field is
// optional; consumers degrade when a value is missing.
type SiteSettings struct {
	Hostname         string `json:"hostname,omitempty"`
	Title            string `json:"title,omitempty"`
	Description      string `json:"description,omitempty"`
	Keywords         string `json:"keywords,omitempty"`
	Author           string `json:"author,omitempty"`
	FaviconSourceKey string `json:"favicon_source_key,omitempty"`
}

// Locale describes a content locale. At most one locale is flagged as default.
type Locale struct {
	Code      string `json:"code"`
	IsDefault bool   `json:"is_default,omitempty"`
}

// SocialShare carries optional overrides for open-graph metadata.
type SocialShare struct {
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	ImageSourceKey string `json:"image_source_key,omitempty"`
}

// PageRecord is the publishable view of a page for a single locale.
type PageRecord struct {
	Key         string       `json:"key"`
	Permalink   string       `json:"permalink"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Keywords    string       `json:"keywords,omitempty"`
	JSONLD      string       `json:"json_ld,omitempty"`
	SocialShare *SocialShare `json:"social_share,omitempty"`
}

// ContentFormat identifies how a page body is encoded.
type ContentFormat string

const (
	ContentFormatHTML     ContentFormat = "html"
	ContentFormatMarkdown ContentFormat = "markdown"
)

// PageContent is the body of a page as stored by the content provider.
type PageContent struct {
	Format ContentFormat `json:"format,omitempty"`
	Body   string        `json:"body,omitempty"`
	Styles []StyleRule   `json:"styles,omitempty"`
}

// MediaAsset is the resolved location of a stored media item.
type MediaAsset struct {
	Key         string `json:"key"`
	Permalink   string `json:"permalink"`
	ContentType string `json:"content_type,omitempty"`
}

// LocaleProvider lists the locales content is published in.
type LocaleProvider interface {
	GetLocales(ctx context.Context) ([]Locale, error)
	GetDefaultLocale(ctx context.Context) (string, error)
}

// SiteSettingsProvider returns the current site settings.
type SiteSettingsProvider interface {
	GetSiteSettings(ctx context.Context) (SiteSettings, error)
}

// PageProvider enumerates pages and fetches their bodies. An empty locale selects the
// canonical (default) content.
type PageProvider interface {
	Search(ctx context.Context, pattern string, locale string) ([]PageRecord, error)
	GetPageContent(ctx context.Context, key string, locale string) (*PageContent, error)
}

// MediaProvider resolves media keys. A nil asset with a nil error means the key is unknown.
type MediaProvider interface {
	GetMediaByKey(ctx context.Context, key string) (*MediaAsset, error)
}

// StyleCompiler produces the site-wide style sheet.
type StyleCompiler interface {
	GetStyleSheet(ctx context.Context) (StyleSheet, error)
}

// BlobStorage receives published artifacts. Paths are slash separated and rooted at "/".
type BlobStorage interface {
	UploadBlob(ctx context.Context, path string, data []byte, contentType string) error
}

// HTMLRenderer turns a render context into an HTML document.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, page *RenderContext) (string, error)
}
