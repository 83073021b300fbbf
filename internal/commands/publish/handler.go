package publishcmd

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-sitepublish/internal/commands"
	"github.com/goliatone/go-sitepublish/internal/logging"
	"github.com/goliatone/go-sitepublish/internal/publish"
	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

const codePagesFailed = "PUBLISH_PAGES_INCOMPLETE"

var (
	ErrPublisherRequired = errors.New("publish command: publisher is required")
	ErrPagesFailed       = errors.New("publish command: one or more pages failed")
)

// Publisher runs one publish pass. *publish.Service satisfies it.
type Publisher interface {
	Publish(ctx context.Context) *publish.Result
}

// PublishSiteHandler executes PublishSiteCommand through the shared command handler.
type PublishSiteHandler struct {
	inner *commands.Handler[PublishSiteCommand]
}

// NewPublishSiteHandler builds a handler over publisher.
func NewPublishSiteHandler(publisher Publisher, logger interfaces.Logger, opts ...commands.HandlerOption[PublishSiteCommand]) *PublishSiteHandler {
	logger = logging.OrNoOp(logger)

	exec := func(ctx context.Context, msg PublishSiteCommand) error {
		if publisher == nil {
			return ErrPublisherRequired
		}
		result := publisher.Publish(ctx)
		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		if result == nil {
			return nil
		}
		if result.Err != nil {
			return result.Err
		}
		if msg.FailOnPageErrors && result.Failed > 0 {
			return goerrors.Wrap(fmt.Errorf("%w: %d of %d", ErrPagesFailed, result.Failed, len(result.Pages)),
				goerrors.CategoryExternal, "publish run incomplete").
				WithTextCode(codePagesFailed)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishSiteCommand]{
		commands.WithLogger[PublishSiteCommand](logger),
		commands.WithOperation[PublishSiteCommand]("site.publish"),
		commands.WithMessageFields[PublishSiteCommand](func(msg PublishSiteCommand) map[string]any {
			fields := map[string]any{}
			if msg.Reason != "" {
				fields["reason"] = msg.Reason
			}
			if msg.FailOnPageErrors {
				fields["fail_on_page_errors"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishSiteHandler{inner: commands.NewHandler[PublishSiteCommand](exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PublishSiteCommand].
func (h *PublishSiteHandler) Execute(ctx context.Context, msg PublishSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}
