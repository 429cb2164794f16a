package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalAddTask
	modalEditTask
	modalAddSubTask
	modalEditSubTask
)

func (k modalKind) title() string {
	switch k {
	case modalAddTask:
		return "Add task"
	case modalEditTask:
		return "Edit task"
	case modalAddSubTask:
		return "Add sub-task"
	case modalEditSubTask:
		return "Edit sub-task"
	}
	return ""
}

// modal is the single-line title prompt used for every add and edit.
type modal struct {
	kind   modalKind
	input  textinput.Model
	taskID int64
	subID  int64
	err    string
}

func newModal(kind modalKind, value string, taskID, subID int64) modal {
	ti := textinput.New()
	ti.Placeholder = "Enter a title"
	ti.CharLimit = 200
	ti.Width = 44
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	return modal{kind: kind, input: ti, taskID: taskID, subID: subID}
}

func (m modal) open() bool { return m.kind != modalNone }

// submit returns the entered title, or ok=false with the modal left open
// when it is blank.
func (m *modal) submit() (string, bool) {
	title := m.input.Value()
	if strings.TrimSpace(title) == "" {
		m.err = "title required"
		return "", false
	}
	return title, true
}

func (m modal) view(th Theme) string {
	body := th.ModalTitle.Render(m.kind.title()) + "\n" + m.input.View()
	if m.err != "" {
		body += "\n" + th.Error.Render(m.err)
	}
	body += "\n\n" + th.Footer.Render("enter save · esc cancel")
	return th.Modal.Render(body)
}
