package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskcard/internal/config"
	"taskcard/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "taskcard help" }
func (c *HelpCmd) NeedsSession() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, s *Session, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskcard                                   List tasks and sub-tasks
  taskcard list [--ids]                      List tasks and sub-tasks
  taskcard add <title...>                    Create a task
  taskcard edit <ref> <title...>             Rename a task or sub-task
  taskcard check <ref>                       Check off a task or sub-task
  taskcard uncheck <ref>                     Clear a check mark
  taskcard rm <ref>                          Delete a task or sub-task
  taskcard move <ref> <position>             Move a task or sub-task
  taskcard sub add <task> <title...>         Add a sub-task
  taskcard sub edit|check|uncheck|rm <ref>
  taskcard sub move <ref> <position>
  taskcard sync                              Replace local tasks with the remote ones
  taskcard export [--format json|yaml]       Print the collection
  taskcard ui                                Interactive board
  taskcard login [--token <token>]
  taskcard logout
  taskcard help
  taskcard version

References:
  3      task 3 as numbered by list
  3.2    sub-task 2 of task 3

Sub-task changes are kept locally even when logged in.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Settings (config.yaml in the config directory, or TASKCARD_* variables):
  backend          restapi (default) or googletasks
  api_url          REST API base URL (default http://localhost:1009)
  timeout          per-request timeout (default 5s)
  logout_policy    keep (default), clear or unsynced
`
