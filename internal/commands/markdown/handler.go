package markdowncmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/afero"

	"github.com/goliatone/go-sitepublish/internal/commands"
	"github.com/goliatone/go-sitepublish/internal/logging"
	"github.com/goliatone/go-sitepublish/internal/markdown"
	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

var ErrImporterRequired = errors.New("markdown command: importer is required")

// ImportDirectoryHandler executes ImportDirectoryCommand.
type ImportDirectoryHandler struct {
	inner *commands.Handler[ImportDirectoryCommand]
}

// NewImportDirectoryHandler builds a handler that reads from fs and saves through importer.
// A nil fs reads from the operating system.
func NewImportDirectoryHandler(fs afero.Fs, importer *markdown.Importer, logger interfaces.Logger, opts ...commands.HandlerOption[ImportDirectoryCommand]) *ImportDirectoryHandler {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger = logging.OrNoOp(logger)

	exec := func(ctx context.Context, msg ImportDirectoryCommand) error {
		if importer == nil {
			return ErrImporterRequired
		}
		loader := markdown.NewLoader(fs, markdown.LoaderConfig{
			Locales:       msg.Locales,
			DefaultLocale: msg.DefaultLocale,
		})
		_, err := markdown.ImportDir(ctx, loader, importer, strings.TrimSpace(msg.Directory))
		return err
	}

	handlerOpts := []commands.HandlerOption[ImportDirectoryCommand]{
		commands.WithLogger[ImportDirectoryCommand](logger),
		commands.WithOperation[ImportDirectoryCommand]("markdown.import"),
		commands.WithMessageFields[ImportDirectoryCommand](func(msg ImportDirectoryCommand) map[string]any {
			return map[string]any{"directory": msg.Directory}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportDirectoryHandler{inner: commands.NewHandler[ImportDirectoryCommand](exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ImportDirectoryCommand].
func (h *ImportDirectoryHandler) Execute(ctx context.Context, msg ImportDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}
