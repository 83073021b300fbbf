package commands

import (
	"strings"

	"github.com/goliatone/go-sitepublish/internal/logging"
	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

const commandModuleRoot = "sitepublish.commands"

// CommandLogger scopes provider to sitepublish.commands.{group}. Groups are "publish" and
// "markdown"; an empty group logs under "site".
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.Trim(strings.TrimSpace(group), ".")
	if group == "" {
		group = "site"
	}
	return logging.WithFields(
		logging.ModuleLogger(provider, commandModuleRoot+"."+group),
		map[string]any{"component": "command", "command_group": group},
	)
}
