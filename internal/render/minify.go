package render

import (
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
)

const (
	mediaTypeHTML = "text/html"
	mediaTypeCSS  = "text/css"
)

// Minifier compresses rendered pages with a fixed configuration:
//
//   - element and attribute names keep their source case
//   - whitespace is collapsed to single spaces and line breaks are dropped; the space
//     between inline elements is kept
//   - comments are removed
//   - boolean attributes are collapsed and empty attributes dropped
//   - embedded <style> blocks and style attributes are minified as CSS
//   - document tags, optional end tags, default attribute values (script and link type
//     attributes included) and attribute quotes are left untouched
type Minifier struct {
	m *minify.M
}

// NewMinifier returns the page minifier.
func NewMinifier() *Minifier {
	m := minify.New()
	m.AddFunc(mediaTypeCSS, css.Minify)
	m.Add(mediaTypeHTML, &html.Minifier{
		KeepComments:        false,
		KeepWhitespace:      false,
		KeepDocumentTags:    true,
		KeepEndTags:         true,
		KeepDefaultAttrVals: true,
		KeepQuotes:          true,
	})
	return &Minifier{m: m}
}

// Minify compresses source. Failures name the page title.
func (m *Minifier) Minify(title, source string) (string, error) {
	out, err := m.m.String(mediaTypeHTML, source)
	if err != nil {
		return "", fmt.Errorf("render: unable to minify page %s: %w", title, err)
	}
	return restoreNameCase(source, out), nil
}
