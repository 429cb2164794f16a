package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"taskcard/internal/service"
)

const (
	drawerMinWidth       = 25
	drawerCollapsedWidth = 7
	drawerShare          = 0.18
)

// drawerWidth returns the width of the task drawer for a window of the given
// width: 18% of it but at least 25 columns while open, 7 when collapsed.
func drawerWidth(windowWidth int, open bool) int {
	if !open {
		return drawerCollapsedWidth
	}
	w := int(float64(windowWidth) * drawerShare)
	if w < drawerMinWidth {
		w = drawerMinWidth
	}
	return w
}

// renderDrawer lists task titles. Collapsed, only the toggle and the
// position numbers are shown.
func renderDrawer(th Theme, tasks []service.Task, selected int, focused, open, authenticated bool, width, height int) string {
	inner := width - th.Drawer.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}

	var b strings.Builder
	b.WriteString(th.DrawerTitle.Render("≡"))
	if open {
		b.WriteString(th.DrawerTitle.Render(" tasks"))
	}
	b.WriteString("\n\n")

	for i, task := range tasks {
		var line string
		if open {
			mark := ' '
			if task.IsChecked {
				mark = 'x'
			}
			line = fmt.Sprintf("[%c] %s", mark, task.Title)
			if authenticated && !task.IsSynced {
				line += " *"
			}
		} else {
			line = fmt.Sprintf("%d", i+1)
		}
		prefix := "  "
		if i == selected && focused {
			prefix = "> "
		}
		line = ansi.Truncate(prefix+line, inner, "…")
		if i == selected {
			line = th.DrawerTitle.Underline(true).Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return th.Drawer.Width(width).Height(height).Render(b.String())
}
