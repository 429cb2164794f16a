// Package tui is the interactive terminal front end: a collapsible drawer
// of tasks next to a card with the selected task's sub-tasks.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskcard/internal/auth"
	"taskcard/internal/service"
	"taskcard/internal/tasksync"
)

type focus int

const (
	focusDrawer focus = iota
	focusCard
)

// --- Messages ---

// alertMsg carries a synchronizer alert into the program.
type alertMsg string

// opDoneMsg reports the end of an operation that may have reached the network.
type opDoneMsg struct {
	err error
}

// Model is the bubbletea model of the UI.
type Model struct {
	ctx  context.Context
	sync *tasksync.Synchronizer
	auth *auth.Provider
	th   Theme

	tasks      []service.Task
	selected   int
	subCursor  int
	focus      focus
	drawerOpen bool
	modal      modal

	busy   bool
	status string
	alert  string

	width, height int
}

// New creates the model over s. p may be nil, which disables logout.
func New(ctx context.Context, s *tasksync.Synchronizer, p *auth.Provider) Model {
	return Model{
		ctx:        ctx,
		sync:       s,
		auth:       p,
		th:         DefaultTheme,
		tasks:      s.Tasks(),
		drawerOpen: true,
		width:      80,
		height:     24,
	}
}

// Init pulls the remote collection when logged in.
func (m Model) Init() tea.Cmd {
	if m.sync.State() != auth.Authenticated {
		return nil
	}
	return m.run(func(ctx context.Context) error { return m.sync.FetchAll(ctx) })
}

// run executes fn off the update loop.
func (m Model) run(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case alertMsg:
		m.alert = string(msg)
		return m, nil
	case opDoneMsg:
		m.busy = false
		m.setErr(msg.err)
		m.reload()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.alert != "" {
			m.alert = ""
			return m, nil
		}
		if m.modal.open() {
			return m.updateModal(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "ctrl+b", "b":
		m.drawerOpen = !m.drawerOpen
	case "tab":
		if m.focus == focusDrawer && m.current() != nil {
			m.focus = focusCard
		} else {
			m.focus = focusDrawer
		}
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "shift+up", "K":
		return m.reorder(-1)
	case "shift+down", "J":
		return m.reorder(1)
	case "a":
		if m.focus == focusCard && m.current() != nil {
			m.modal = newModal(modalAddSubTask, "", m.current().ID, 0)
		} else {
			m.modal = newModal(modalAddTask, "", 0, 0)
		}
	case "enter", "e":
		return m.edit()
	case " ", "x":
		return m.toggle()
	case "d", "delete":
		return m.remove()
	case "r":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = "syncing…"
		return m, m.run(func(ctx context.Context) error { return m.sync.FetchAll(ctx) })
	case "L":
		return m.logout()
	}
	return m, nil
}

func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.modal = modal{}
		return m, nil
	case tea.KeyEnter:
		title, ok := m.modal.submit()
		if !ok {
			return m, nil
		}
		md := m.modal
		m.modal = modal{}
		return m.apply(md, title)
	}
	var cmd tea.Cmd
	m.modal.input, cmd = m.modal.input.Update(msg)
	return m, cmd
}

// apply performs the add or edit the modal was opened for.
func (m Model) apply(md modal, title string) (tea.Model, tea.Cmd) {
	switch md.kind {
	case modalAddTask:
		return m.remoteOp(func(ctx context.Context) error {
			return m.sync.AddTask(ctx, service.Task{Title: title})
		})
	case modalEditTask:
		task, ok := m.sync.Task(md.taskID)
		if !ok {
			m.setErr(tasksync.ErrTaskNotFound)
			return m, nil
		}
		task.Title = title
		return m.remoteOp(func(ctx context.Context) error { return m.sync.UpdateTask(ctx, task) })
	case modalAddSubTask:
		m.setErr(m.sync.AddSubTask(md.taskID, service.SubTask{Title: title}))
		m.reload()
		if t := m.current(); t != nil {
			m.subCursor = len(t.SubTasks) - 1
		}
	case modalEditSubTask:
		m.setErr(m.sync.UpdateSubTaskTitle(md.taskID, md.subID, title))
		m.reload()
	}
	return m, nil
}

func (m Model) edit() (tea.Model, tea.Cmd) {
	task := m.current()
	if task == nil {
		return m, nil
	}
	if m.focus == focusDrawer {
		m.modal = newModal(modalEditTask, task.Title, task.ID, 0)
		return m, nil
	}
	if sub := m.currentSub(); sub != nil {
		m.modal = newModal(modalEditSubTask, sub.Title, task.ID, sub.ID)
	} else {
		m.modal = newModal(modalAddSubTask, "", task.ID, 0)
	}
	return m, nil
}

func (m Model) toggle() (tea.Model, tea.Cmd) {
	task := m.current()
	if task == nil {
		return m, nil
	}
	if m.focus == focusCard {
		if sub := m.currentSub(); sub != nil {
			m.setErr(m.sync.UpdateSubTaskCheck(task.ID, sub.ID, !sub.IsChecked))
			m.reload()
		}
		return m, nil
	}
	updated := task.Clone()
	updated.IsChecked = !updated.IsChecked
	return m.remoteOp(func(ctx context.Context) error { return m.sync.UpdateTask(ctx, updated) })
}

func (m Model) remove() (tea.Model, tea.Cmd) {
	task := m.current()
	if task == nil {
		return m, nil
	}
	if m.focus == focusCard {
		if sub := m.currentSub(); sub != nil {
			m.setErr(m.sync.DeleteSubTask(task.ID, sub.ID))
			m.reload()
		}
		return m, nil
	}
	id := task.ID
	return m.remoteOp(func(ctx context.Context) error { return m.sync.DeleteTask(ctx, id) })
}

// reorder swaps the selected entry with its neighbour in direction dir.
// The new order is built from m.tasks, which is stale while an operation runs.
func (m Model) reorder(dir int) (tea.Model, tea.Cmd) {
	if m.busy {
		m.status = "busy, try again"
		return m, nil
	}
	task := m.current()
	if task == nil {
		return m, nil
	}
	if m.focus == focusCard {
		subs := append([]service.SubTask(nil), task.SubTasks...)
		to := m.subCursor + dir
		if m.subCursor >= len(subs) || to < 0 || to >= len(subs) {
			return m, nil
		}
		subs[m.subCursor], subs[to] = subs[to], subs[m.subCursor]
		if err := m.sync.UpdateSubTaskOrder(task.ID, subs); err != nil {
			m.setErr(err)
			return m, nil
		}
		m.subCursor = to
		m.reload()
		return m, nil
	}

	tasks := service.CloneTasks(m.tasks)
	to := m.selected + dir
	if to < 0 || to >= len(tasks) {
		return m, nil
	}
	tasks[m.selected], tasks[to] = tasks[to], tasks[m.selected]
	if err := m.sync.UpdateTaskOrder(tasks); err != nil {
		m.setErr(err)
		return m, nil
	}
	m.selected = to
	m.reload()
	return m, nil
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	if m.auth == nil || !m.auth.IsAuthenticated() {
		m.status = "not logged in"
		return m, nil
	}
	return m.remoteOp(func(context.Context) error { return m.auth.Clear() })
}

// remoteOp runs an operation that may block on the network.
// Only one runs at a time.
func (m Model) remoteOp(fn func(ctx context.Context) error) (tea.Model, tea.Cmd) {
	if m.busy {
		m.status = "busy, try again"
		return m, nil
	}
	m.busy = true
	return m, m.run(fn)
}

func (m *Model) setErr(err error) {
	switch {
	case err == nil:
	case errors.Is(err, tasksync.ErrEmptyTitle):
		m.status = "title required"
	default:
		m.status = "error: " + err.Error()
	}
}

// reload re-reads the collection and keeps the cursors in range.
func (m *Model) reload() {
	m.tasks = m.sync.Tasks()
	if m.selected >= len(m.tasks) {
		m.selected = len(m.tasks) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	if t := m.current(); t != nil {
		if m.subCursor > len(t.SubTasks) {
			m.subCursor = len(t.SubTasks)
		}
	} else {
		m.focus = focusDrawer
		m.subCursor = 0
	}
}

func (m *Model) moveCursor(delta int) {
	if m.focus == focusCard {
		t := m.current()
		if t == nil {
			return
		}
		// The extra row is the "add sub-task" line.
		m.subCursor = clamp(m.subCursor+delta, 0, len(t.SubTasks))
		return
	}
	m.selected = clamp(m.selected+delta, 0, len(m.tasks)-1)
	m.subCursor = 0
}

func (m Model) current() *service.Task {
	if m.selected < 0 || m.selected >= len(m.tasks) {
		return nil
	}
	return &m.tasks[m.selected]
}

func (m Model) currentSub() *service.SubTask {
	t := m.current()
	if t == nil || m.subCursor >= len(t.SubTasks) {
		return nil
	}
	return &t.SubTasks[m.subCursor]
}

func (m Model) View() string {
	if m.modal.open() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.modal.view(m.th))
	}

	bodyHeight := m.height - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	dw := drawerWidth(m.width, m.drawerOpen)
	authenticated := m.sync.State() == auth.Authenticated

	drawer := renderDrawer(m.th, m.tasks, m.selected, m.focus == focusDrawer, m.drawerOpen, authenticated, dw, bodyHeight)
	card := renderCard(m.th, m.current(), m.subCursor, m.focus == focusCard, m.width-dw)
	body := lipgloss.JoinHorizontal(lipgloss.Top, drawer, card)

	return lipgloss.JoinVertical(lipgloss.Left, body, m.footer(authenticated))
}

func (m Model) footer(authenticated bool) string {
	if m.alert != "" {
		return m.th.Alert.Render(m.alert)
	}
	if m.status != "" {
		return m.th.Footer.Render(m.status)
	}
	state := "offline"
	if authenticated {
		state = "synced"
	}
	return m.th.Footer.Render(state + " · a add · e edit · space check · d delete · J/K move · tab focus · b drawer · r sync · L logout · q quit")
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
