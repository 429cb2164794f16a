// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"taskcard/internal/service"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// TreeOptions controls FormatTree.
type TreeOptions struct {
	// ShowIDs appends the stored identifier to every line.
	ShowIDs bool

	// MarkLocal flags tasks that exist only locally.
	MarkLocal bool
}

// FormatTree writes the collection, one line per task followed by its sub-tasks.
// Tasks are numbered from 1; sub-tasks as <task>.<sub>.
//
//	   1  [ ] groceries
//	        1.1  [x] milk
func FormatTree(w io.Writer, tasks []service.Task, opts TreeOptions) {
	for i, task := range tasks {
		FormatTask(w, i+1, task, opts)
		for j, sub := range task.SubTasks {
			FormatSubTask(w, i+1, j+1, sub, opts)
		}
	}
}

// FormatTask formats a task line.
// Format: "{N:>4}  [{x| }] {TITLE}\n"
func FormatTask(w io.Writer, num int, task service.Task, opts TreeOptions) {
	line := fmt.Sprintf("%4d  [%c] %s", num, checkMark(task.IsChecked), normalizeTitle(task.Title))
	if opts.MarkLocal && !task.IsSynced {
		line += " (local)"
	}
	if opts.ShowIDs {
		line += fmt.Sprintf("  #%d", task.ID)
	}
	fmt.Fprintln(w, line)
}

// FormatSubTask formats a sub-task line, indented under its task.
// Format: "    {N.M:>7}  [{x| }] {TITLE}\n"
func FormatSubTask(w io.Writer, taskNum, subNum int, sub service.SubTask, opts TreeOptions) {
	ref := fmt.Sprintf("%d.%d", taskNum, subNum)
	line := fmt.Sprintf("    %7s  [%c] %s", ref, checkMark(sub.IsChecked), normalizeTitle(sub.Title))
	if opts.ShowIDs {
		line += fmt.Sprintf("  #%d", sub.ID)
	}
	fmt.Fprintln(w, line)
}

// Export writes the collection as JSON or YAML.
func Export(w io.Writer, tasks []service.Task, format string) error {
	if tasks == nil {
		tasks = []service.Task{}
	}
	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func checkMark(checked bool) rune {
	if checked {
		return 'x'
	}
	return ' '
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
