package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskcard/internal/auth"
	"taskcard/internal/config"
	"taskcard/internal/exitcode"
	"taskcard/internal/output"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskcard` (no args) and `taskcard list`.
type ListCmd struct {
	showIDs bool
}

// SetShowIDs sets the --ids flag (for testing).
func (c *ListCmd) SetShowIDs(show bool) {
	c.showIDs = show
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks and sub-tasks" }
func (c *ListCmd) Usage() string      { return "taskcard list [--ids]" }
func (c *ListCmd) NeedsSession() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.showIDs, "ids", false, "")
}

// Run prints the collection as last stored. Run sync to pull the remote one first.
func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, s *Session, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	tasks := s.Sync.Tasks()
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	output.FormatTree(out, tasks, output.TreeOptions{
		ShowIDs:   c.showIDs,
		MarkLocal: s.Sync.State() == auth.Authenticated,
	})
	return exitcode.Success
}
