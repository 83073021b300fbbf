package markdown

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-sitepublish/internal/logging"
	"github.com/goliatone/go-sitepublish/internal/store"
	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

var ErrPageSinkRequired = errors.New("markdown importer: page sink is required")

// PageSink persists imported pages. *store.Store satisfies it.
type PageSink interface {
	SavePage(ctx context.Context, page *store.Page) error
}

// ImportResult summarises an import run.
type ImportResult struct {
	Imported []string
	Failed   map[string]error
}

// Importer stores markdown documents as pages with markdown bodies.
type Importer struct {
	sink   PageSink
	logger interfaces.Logger
}

// NewImporter builds an Importer writing to sink.
func NewImporter(sink PageSink, logger interfaces.Logger) (*Importer, error) {
	if sink == nil {
		return nil, ErrPageSinkRequired
	}
	return &Importer{sink: sink, logger: logging.OrNoOp(logger)}, nil
}

// Import saves every document. A document that cannot be saved is recorded in the
// result and the remaining documents are still imported; the joined failures are
// returned as the error.
func (i *Importer) Import(ctx context.Context, docs []*Document) (*ImportResult, error) {
	result := &ImportResult{Failed: map[string]error{}}
	var errs []error
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := i.importDocument(ctx, doc); err != nil {
			result.Failed[doc.Path] = err
			errs = append(errs, fmt.Errorf("%s: %w", doc.Path, err))
			i.logger.Warn("import.document.failed", "path", doc.Path, "error", err)
			continue
		}
		result.Imported = append(result.Imported, doc.Path)
		logging.WithPageContext(i.logger, doc.Key, doc.Locale, doc.Permalink).Debug("import.document.saved", "path", doc.Path)
	}
	i.logger.Info("import.complete", "imported", len(result.Imported), "failed", len(result.Failed))
	return result, errors.Join(errs...)
}

func (i *Importer) importDocument(ctx context.Context, doc *Document) error {
	linkedData, err := doc.FrontMatter.LinkedData()
	if err != nil {
		return err
	}
	meta := doc.FrontMatter
	return i.sink.SavePage(ctx, &store.Page{
		Key:              doc.Key,
		Locale:           doc.Locale,
		Permalink:        doc.Permalink,
		Title:            meta.Title,
		Description:      meta.Description,
		Keywords:         meta.KeywordList(),
		JSONLD:           linkedData,
		ShareTitle:       meta.Share.Title,
		ShareDescription: meta.Share.Description,
		ShareImageKey:    meta.Share.Image,
		Format:           string(interfaces.ContentFormatMarkdown),
		Body:             string(doc.Body),
		Position:         meta.Position,
	})
}

// ImportDir loads every markdown file below root and imports it.
func ImportDir(ctx context.Context, loader *Loader, importer *Importer, root string) (*ImportResult, error) {
	docs, err := loader.Load(root)
	if err != nil {
		return nil, err
	}
	return importer.Import(ctx, docs)
}
