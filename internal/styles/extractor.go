package styles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

const (
	// GlobalStylePath is where the site-wide style sheet is uploaded.
	GlobalStylePath = "/styles/styles.css"
	localStyleName  = "styles.css"
	contentTypeCSS  = "text/css"
)

var errStorageRequired = errors.New("styles: blob storage is required")

// LocalStylePath returns the page-scoped style sheet path for permalink: "/styles.css"
// for the home page, "{permalink}/styles.css" for any other page.
func LocalStylePath(permalink string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(permalink), "/")
	if trimmed == "" {
		return "/" + localStyleName
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return trimmed + "/" + localStyleName
}

// Extractor writes global and page-scoped style sheets to blob storage.
type Extractor struct {
	storage interfaces.BlobStorage
	minify  bool
}

// ExtractorOption customises an Extractor.
type ExtractorOption func(*Extractor)

// WithMinify toggles CSS minification of written sheets. Enabled by default.
func WithMinify(enabled bool) ExtractorOption {
	return func(e *Extractor) {
		e.minify = enabled
	}
}

// NewExtractor returns an Extractor uploading to storage.
func NewExtractor(storage interfaces.BlobStorage, opts ...ExtractorOption) *Extractor {
	e := &Extractor{storage: storage, minify: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildGlobalStyle writes the site-wide sheet to GlobalStylePath.
func (e *Extractor) BuildGlobalStyle(ctx context.Context, sheet interfaces.StyleSheet) error {
	return e.write(ctx, GlobalStylePath, []interfaces.StyleSheet{sheet})
}

// BuildLocalStyle writes the sheets collected for one page under scopePath, the
// page's permalink.
func (e *Extractor) BuildLocalStyle(ctx context.Context, scopePath string, sheets []interfaces.StyleSheet) error {
	return e.write(ctx, LocalStylePath(scopePath), sheets)
}

func (e *Extractor) write(ctx context.Context, path string, sheets []interfaces.StyleSheet) error {
	if e == nil || e.storage == nil {
		return errStorageRequired
	}
	text := Serialize(sheets...)
	if e.minify && text != "" {
		minified, err := MinifyCSS(text)
		if err != nil {
			return err
		}
		text = minified
	}
	if err := e.storage.UploadBlob(ctx, path, []byte(text), contentTypeCSS); err != nil {
		return fmt.Errorf("styles: upload %s: %w", path, err)
	}
	return nil
}
