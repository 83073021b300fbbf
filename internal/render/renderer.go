package render

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

//go:embed templates/page.html.tmpl
var defaultLayout string

const contentSheetKey = "content"

var errPageRequired = errors.New("render: render context is required")

// TemplateRenderer renders pages through an html/template layout. Markdown bodies are
// converted with goldmark; HTML bodies are emitted verbatim.
type TemplateRenderer struct {
	layout   *template.Template
	markdown goldmark.Markdown
}

// Option customises a TemplateRenderer.
type Option func(*rendererOptions)

type rendererOptions struct {
	layout     string
	layoutFile string
}

// WithLayout replaces the embedded layout with source.
func WithLayout(source string) Option {
	return func(o *rendererOptions) {
		o.layout = source
	}
}

// WithLayoutFile reads the layout from path.
func WithLayoutFile(path string) Option {
	return func(o *rendererOptions) {
		o.layoutFile = strings.TrimSpace(path)
	}
}

// NewTemplateRenderer parses the layout and prepares the markdown engine.
func NewTemplateRenderer(opts ...Option) (*TemplateRenderer, error) {
	options := rendererOptions{layout: defaultLayout}
	for _, opt := range opts {
		opt(&options)
	}
	if options.layoutFile != "" {
		data, err := os.ReadFile(options.layoutFile)
		if err != nil {
			return nil, fmt.Errorf("render: read layout %s: %w", options.layoutFile, err)
		}
		options.layout = string(data)
	}

	layout, err := template.New("page").Option("missingkey=zero").Parse(options.layout)
	if err != nil {
		return nil, fmt.Errorf("render: parse layout: %w", err)
	}

	return &TemplateRenderer{
		layout: layout,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}, nil
}

type layoutData struct {
	Page       *interfaces.RenderContext
	Content    template.HTML
	LinkedData template.JS
}

// RenderHTML satisfies interfaces.HTMLRenderer.
func (r *TemplateRenderer) RenderHTML(ctx context.Context, page *interfaces.RenderContext) (string, error) {
	if page == nil {
		return "", errPageRequired
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data := layoutData{Page: page}

	if content := page.Bindings.Content; content != nil {
		body, err := r.renderBody(content)
		if err != nil {
			return "", err
		}
		data.Content = body
		if styles := page.Bindings.Styles; styles != nil {
			for _, rule := range content.Styles {
				styles.AddRule(contentSheetKey, rule)
			}
		}
	}

	if len(page.LinkedData) > 0 {
		encoded, err := json.Marshal(page.LinkedData)
		if err != nil {
			return "", fmt.Errorf("render: encode linked data: %w", err)
		}
		data.LinkedData = template.JS(encoded)
	}

	var buf bytes.Buffer
	if err := r.layout.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render: execute layout: %w", err)
	}
	return buf.String(), nil
}

func (r *TemplateRenderer) renderBody(content *interfaces.PageContent) (template.HTML, error) {
	switch content.Format {
	case interfaces.ContentFormatMarkdown:
		var buf bytes.Buffer
		if err := r.markdown.Convert([]byte(content.Body), &buf); err != nil {
			return "", fmt.Errorf("render: convert markdown: %w", err)
		}
		return template.HTML(buf.String()), nil
	case interfaces.ContentFormatHTML, "":
		return template.HTML(content.Body), nil
	default:
		return "", fmt.Errorf("render: unsupported content format %q", content.Format)
	}
}
