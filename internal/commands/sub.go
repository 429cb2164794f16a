package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskcard/internal/config"
	"taskcard/internal/exitcode"
	"taskcard/internal/service"
)

func init() {
	Register(&SubCmd{})
}

// SubCmd implements the sub command, which groups the sub-task operations.
// Sub-task changes are local only, even when logged in.
type SubCmd struct{}

func (c *SubCmd) Name() string       { return "sub" }
func (c *SubCmd) Aliases() []string  { return nil }
func (c *SubCmd) Synopsis() string   { return "Manage sub-tasks" }
func (c *SubCmd) Usage() string      { return "taskcard sub add|edit|check|uncheck|rm|move ..." }
func (c *SubCmd) NeedsSession() bool { return true }

func (c *SubCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SubCmd) Run(ctx context.Context, cfg *config.Config, s *Session, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: sub-command required (add, edit, check, uncheck, rm, move)")
		return exitcode.UserError
	}
	action, args := args[0], args[1:]
	switch action {
	case "add", "edit", "check", "uncheck", "rm", "move":
	default:
		fmt.Fprintf(errOut, "error: unknown sub-command: %s\n", action)
		return exitcode.UserError
	}

	ref, code := parseRefArg(args, errOut)
	if code != exitcode.Success {
		return code
	}
	if action == "add" {
		if ref.IsSub() {
			fmt.Fprintf(errOut, "error: task reference expected: %s\n", ref)
			return exitcode.UserError
		}
	} else if !ref.IsSub() {
		fmt.Fprintf(errOut, "error: sub-task reference expected (e.g. %d.1): %s\n", ref.TaskNum, ref)
		return exitcode.UserError
	}

	switch action {
	case "add":
		return c.add(ctx, cfg, s, ref, strings.Join(args[1:], " "), out, errOut)
	case "edit":
		title := strings.Join(args[1:], " ")
		if strings.TrimSpace(title) == "" {
			fmt.Fprintln(errOut, "error: title required")
			return exitcode.UserError
		}
		return editRef(ctx, cfg, s, ref, title, out, errOut)
	case "check", "uncheck":
		return checkRef(ctx, cfg, s, ref, action == "check", out, errOut)
	case "rm":
		return removeRef(ctx, cfg, s, ref, out, errOut)
	default: // move
		pos, code := parsePosition(args, errOut)
		if code != exitcode.Success {
			return code
		}
		return moveRef(cfg, s, ref, pos, out, errOut)
	}
}

func (c *SubCmd) add(ctx context.Context, cfg *config.Config, s *Session, ref TaskRef, title string, out, errOut io.Writer) int {
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	task, _, err := lookup(s.Sync.Tasks(), ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := s.Sync.AddSubTask(task.ID, service.SubTask{Title: title}); err != nil {
		return s.fail(errOut, err)
	}
	return success(cfg, out)
}
