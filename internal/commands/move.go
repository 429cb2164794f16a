package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"taskcard/internal/config"
	"taskcard/internal/exitcode"
	"taskcard/internal/service"
)

func init() {
	Register(&MoveCmd{})
}

// MoveCmd implements the move command.
type MoveCmd struct{}

func (c *MoveCmd) Name() string       { return "move" }
func (c *MoveCmd) Aliases() []string  { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string   { return "Move a task or sub-task to another position" }
func (c *MoveCmd) Usage() string      { return "taskcard move <ref> <position>" }
func (c *MoveCmd) NeedsSession() bool { return true }

func (c *MoveCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MoveCmd) Run(ctx context.Context, cfg *config.Config, s *Session, args []string, out, errOut io.Writer) int {
	ref, code := parseRefArg(args, errOut)
	if code != exitcode.Success {
		return code
	}
	pos, code := parsePosition(args, errOut)
	if code != exitcode.Success {
		return code
	}

	return moveRef(cfg, s, ref, pos, out, errOut)
}

// parsePosition parses args[1] as a 1-based target position.
func parsePosition(args []string, errOut io.Writer) (int, int) {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: position required")
		return 0, exitcode.UserError
	}
	if len(args) > 2 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[2])
		return 0, exitcode.UserError
	}
	pos, err := strconv.Atoi(args[1])
	if err != nil || pos < 1 {
		fmt.Fprintf(errOut, "error: invalid position: %s\n", args[1])
		return 0, exitcode.UserError
	}
	return pos, exitcode.Success
}

// moveRef reorders the collection (or one task's sub-tasks) so the entry ref
// points at ends up at pos.
func moveRef(cfg *config.Config, s *Session, ref TaskRef, pos int, out, errOut io.Writer) int {
	tasks := s.Sync.Tasks()
	task, _, err := lookup(tasks, ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if ref.IsSub() {
		if pos > len(task.SubTasks) {
			fmt.Fprintf(errOut, "error: position out of range: %d\n", pos)
			return exitcode.UserError
		}
		err = s.Sync.UpdateSubTaskOrder(task.ID, moveItem(task.SubTasks, ref.SubNum-1, pos-1))
	} else {
		if pos > len(tasks) {
			fmt.Fprintf(errOut, "error: position out of range: %d\n", pos)
			return exitcode.UserError
		}
		err = s.Sync.UpdateTaskOrder(moveItem(tasks, ref.TaskNum-1, pos-1))
	}
	if err != nil {
		return s.fail(errOut, err)
	}
	return success(cfg, out)
}

// moveItem returns a copy of items with the element at from moved to to.
func moveItem[T service.Task | service.SubTask](items []T, from, to int) []T {
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	item := items[from]
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out
}
