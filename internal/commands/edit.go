package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskcard/internal/config"
	"taskcard/internal/exitcode"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct{}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return []string{"rename"} }
func (c *EditCmd) Synopsis() string   { return "Change the title of a task or sub-task" }
func (c *EditCmd) Usage() string      { return "taskcard edit <ref> <title...>" }
func (c *EditCmd) NeedsSession() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, s *Session, args []string, out, errOut io.Writer) int {
	ref, code := parseRefArg(args, errOut)
	if code != exitcode.Success {
		return code
	}
	title := strings.Join(args[1:], " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	return editRef(ctx, cfg, s, ref, title, out, errOut)
}

// editRef renames the task or sub-task ref points at.
func editRef(ctx context.Context, cfg *config.Config, s *Session, ref TaskRef, title string, out, errOut io.Writer) int {
	task, sub, err := lookup(s.Sync.Tasks(), ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if ref.IsSub() {
		err = s.Sync.UpdateSubTaskTitle(task.ID, sub.ID, title)
	} else {
		task.Title = title
		err = s.Sync.UpdateTask(ctx, task)
	}
	if err != nil {
		return s.fail(errOut, err)
	}
	return success(cfg, out)
}

// parseRefArg parses args[0] as a task reference and reports failures.
func parseRefArg(args []string, errOut io.Writer) (TaskRef, int) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return TaskRef{}, exitcode.UserError
	}
	return ref, exitcode.Success
}
