package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"taskcard/internal/service"
)

// renderCard shows the selected task and its sub-tasks.
func renderCard(th Theme, task *service.Task, cursor int, focused bool, width int) string {
	inner := width - th.Card.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}

	if task == nil {
		return th.Card.Width(inner).Render(th.Footer.Render("no tasks yet, press a to add one"))
	}

	var b strings.Builder
	b.WriteString(th.CardTitle.Render(ansi.Truncate(task.Title, inner, "…")))
	b.WriteString("\n")

	addLine := "+ add sub-task"
	if focused && cursor == len(task.SubTasks) {
		addLine = th.Selected.Render("> " + addLine)
	} else {
		addLine = th.Footer.Render("  " + addLine)
	}

	for j, sub := range task.SubTasks {
		mark := ' '
		style := th.Item
		if sub.IsChecked {
			mark = 'x'
			style = th.Checked
		}
		prefix := "  "
		if focused && j == cursor {
			prefix = "> "
			style = th.Selected
		}
		text := ansi.Truncate(fmt.Sprintf("[%c] %s", mark, sub.Title), inner-2, "…")
		b.WriteString(prefix + style.Render(text))
		b.WriteString("\n")
	}
	b.WriteString(addLine)

	return th.Card.Width(inner).Render(b.String())
}
