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
	Register(&CheckCmd{checked: true})
	Register(&CheckCmd{checked: false})
}

// CheckCmd implements the check and uncheck commands.
type CheckCmd struct {
	checked bool
}

// NewCheckCmd returns the check (checked=true) or uncheck command.
func NewCheckCmd(checked bool) *CheckCmd {
	return &CheckCmd{checked: checked}
}

func (c *CheckCmd) Name() string {
	if c.checked {
		return "check"
	}
	return "uncheck"
}

func (c *CheckCmd) Aliases() []string {
	if c.checked {
		return []string{"done"}
	}
	return []string{"undone"}
}

func (c *CheckCmd) Synopsis() string {
	if c.checked {
		return "Check off a task or sub-task"
	}
	return "Clear the check mark of a task or sub-task"
}

func (c *CheckCmd) Usage() string      { return "taskcard " + c.Name() + " <ref>" }
func (c *CheckCmd) NeedsSession() bool { return true }

func (c *CheckCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CheckCmd) Run(ctx context.Context, cfg *config.Config, s *Session, args []string, out, errOut io.Writer) int {
	ref, code := parseRefArg(args, errOut)
	if code != exitcode.Success {
		return code
	}
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	return checkRef(ctx, cfg, s, ref, c.checked, out, errOut)
}

// checkRef sets the checked flag of exactly the entry ref points at.
func checkRef(ctx context.Context, cfg *config.Config, s *Session, ref TaskRef, checked bool, out, errOut io.Writer) int {
	task, sub, err := lookup(s.Sync.Tasks(), ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if ref.IsSub() {
		err = s.Sync.UpdateSubTaskCheck(task.ID, sub.ID, checked)
	} else {
		task.IsChecked = checked
		err = s.Sync.UpdateTask(ctx, task)
	}
	if err != nil {
		return s.fail(errOut, err)
	}
	return success(cfg, out)
}
