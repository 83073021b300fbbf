package markdowncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const importDirectoryMessageType = "sitepublish.markdown.import_directory"

// ImportDirectoryCommand imports every markdown file below Directory into the store.
type ImportDirectoryCommand struct {
	Directory     string   `json:"directory"`
	Locales       []string `json:"locales,omitempty"`
	DefaultLocale string   `json:"default_locale,omitempty"`
}

// Type implements command.Message.
func (ImportDirectoryCommand) Type() string { return importDirectoryMessageType }

// Validate ensures a directory is given and locales are non-empty.
func (cmd ImportDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("sitepublish.markdown.import_directory.directory_required", "directory is required")
			}
			return nil
		})),
		validation.Field(&cmd.Locales, validation.Each(validation.Required)),
	)
}
