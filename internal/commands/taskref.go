package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"taskcard/internal/service"
)

// TaskRef is a parsed position reference as printed by list.
type TaskRef struct {
	TaskNum int // 1-based task position
	SubNum  int // 1-based sub-task position, 0 if the ref names a task
}

// IsSub reports whether the reference names a sub-task.
func (r TaskRef) IsSub() bool { return r.SubNum > 0 }

func (r TaskRef) String() string {
	if r.IsSub() {
		return fmt.Sprintf("%d.%d", r.TaskNum, r.SubNum)
	}
	return strconv.Itoa(r.TaskNum)
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the first argument.
//
//	3     task 3
//	3.2   sub-task 2 of task 3
//
// Positions start at 1.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || args[0] == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	arg := args[0]

	taskPart, subPart, hasSub := strings.Cut(arg, ".")
	if !isAllDigits(taskPart) || (hasSub && !isAllDigits(subPart)) {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
	}

	ref := TaskRef{}
	var err error
	if ref.TaskNum, err = strconv.Atoi(taskPart); err != nil || ref.TaskNum < 1 {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
	}
	if hasSub {
		if ref.SubNum, err = strconv.Atoi(subPart); err != nil || ref.SubNum < 1 {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
	}
	return ref, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// lookup resolves ref against the collection.
// sub is the zero value when ref names a task.
func lookup(tasks []service.Task, ref TaskRef) (task service.Task, sub service.SubTask, err error) {
	if ref.TaskNum > len(tasks) {
		return task, sub, fmt.Errorf("task number out of range: %d", ref.TaskNum)
	}
	task = tasks[ref.TaskNum-1]
	if !ref.IsSub() {
		return task, sub, nil
	}
	if ref.SubNum > len(task.SubTasks) {
		return task, sub, fmt.Errorf("sub-task number out of range: %s", ref)
	}
	return task, task.SubTasks[ref.SubNum-1], nil
}
