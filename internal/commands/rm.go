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
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task (with its sub-tasks) or a sub-task" }
func (c *RmCmd) Usage() string      { return "taskcard rm <ref>" }
func (c *RmCmd) NeedsSession() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, s *Session, args []string, out, errOut io.Writer) int {
	ref, code := parseRefArg(args, errOut)
	if code != exitcode.Success {
		return code
	}
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	return removeRef(ctx, cfg, s, ref, out, errOut)
}

// removeRef deletes the entry ref points at. A failing remote delete of a
// task is logged by the synchronizer and does not fail the command.
func removeRef(ctx context.Context, cfg *config.Config, s *Session, ref TaskRef, out, errOut io.Writer) int {
	task, sub, err := lookup(s.Sync.Tasks(), ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if ref.IsSub() {
		err = s.Sync.DeleteSubTask(task.ID, sub.ID)
	} else {
		err = s.Sync.DeleteTask(ctx, task.ID)
	}
	if err != nil {
		return s.fail(errOut, err)
	}
	return success(cfg, out)
}
