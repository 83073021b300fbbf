package publishcmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-sitepublish/internal/publish"
)

const publishSiteMessageType = "sitepublish.site.publish"

// ResultCallback receives the run result before the handler returns.
type ResultCallback func(*publish.Result)

// PublishSiteCommand runs one publish pass over every locale and page.
type PublishSiteCommand struct {
	// Reason is recorded in the command logs.
	Reason string `json:"reason,omitempty"`
	// FailOnPageErrors turns a partial run into a command failure.
	FailOnPageErrors bool           `json:"fail_on_page_errors,omitempty"`
	ResultCallback   ResultCallback `json:"-"`
}

// Type implements command.Message.
func (PublishSiteCommand) Type() string { return publishSiteMessageType }

// Validate bounds the free-form reason.
func (m PublishSiteCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Reason, validation.Length(0, 200).
			ErrorObject(validation.NewError("sitepublish.site.publish.reason_too_long", "reason must be at most 200 characters"))),
	)
}
