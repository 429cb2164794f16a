// Package tasksync owns the task collection and keeps it consistent with
// whichever backing store is authoritative for the current authentication
// state.
//
// Every mutation is written through to the local store. While authenticated,
// task create/update/delete are also sent to the remote API; sub-task and
// reorder operations are always local.
//
// Two overlapping operations on the same task are not ordered: the one whose
// remote response is applied last wins. A fetch started before a local edit
// overwrites that edit when it completes.
package tasksync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"taskcard/internal/auth"
	"taskcard/internal/service"
	"taskcard/internal/store"
)

var (
	// ErrEmptyTitle indicates a title that is empty after trimming.
	ErrEmptyTitle = errors.New("title required")

	// ErrTaskNotFound indicates no task has the given identifier.
	ErrTaskNotFound = errors.New("task not found")

	// ErrSubTaskNotFound indicates the task has no sub-task with the given identifier.
	ErrSubTaskNotFound = errors.New("sub-task not found")

	// ErrDuplicateID indicates an identifier already used in the same scope.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrNoRemote indicates an authenticated state was requested without a remote backend.
	ErrNoRemote = errors.New("no remote backend configured")

	// ErrPersist indicates the collection could not be written to the local store.
	ErrPersist = errors.New("failed to save tasks")
)

// Alerter surfaces a blocking, user-visible message.
type Alerter interface {
	Alert(msg string)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(msg string)

// Alert implements Alerter.
func (f AlertFunc) Alert(msg string) { f(msg) }

// LogoutPolicy decides what happens to the collection on the transition
// from Authenticated to Unauthenticated.
type LogoutPolicy string

const (
	// LogoutKeep leaves the collection as it is.
	LogoutKeep LogoutPolicy = "keep"

	// LogoutClear empties the collection.
	LogoutClear LogoutPolicy = "clear"

	// LogoutUnsynced drops synced tasks and keeps local-only ones.
	LogoutUnsynced LogoutPolicy = "unsynced"
)

// ParseLogoutPolicy parses a policy name. The empty string means LogoutKeep.
func ParseLogoutPolicy(s string) (LogoutPolicy, error) {
	switch p := LogoutPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return LogoutKeep, nil
	case LogoutKeep, LogoutClear, LogoutUnsynced:
		return p, nil
	default:
		return "", fmt.Errorf("invalid logout policy: %s", s)
	}
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger for failures that are not surfaced to the user.
func WithLogger(l *log.Logger) Option {
	return func(s *Synchronizer) { s.logger = l }
}

// WithAlerter sets the user-visible alert sink.
func WithAlerter(a Alerter) Option {
	return func(s *Synchronizer) { s.alerter = a }
}

// WithLogoutPolicy sets the logout policy.
func WithLogoutPolicy(p LogoutPolicy) Option {
	return func(s *Synchronizer) { s.policy = p }
}

// WithState seeds the initial state without running its transition effects.
// Used when the stored collection already mirrors an authenticated session.
func WithState(st auth.State) Option {
	return func(s *Synchronizer) { s.initial = st }
}

// WithClock overrides the time source used for client-generated identifiers.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

// Synchronizer is the single owner of the task collection.
type Synchronizer struct {
	mu      sync.Mutex
	tasks   []service.Task
	mode    mode
	initial auth.State

	remote  service.Remote
	store   *store.TaskStore
	logger  *log.Logger
	alerter Alerter
	policy  LogoutPolicy
	now     func() time.Time
}

// New loads the collection from st and returns a Synchronizer in the
// Unauthenticated state (unless WithState says otherwise).
// remote may be nil if the Authenticated state is never entered.
func New(st *store.TaskStore, remote service.Remote, opts ...Option) (*Synchronizer, error) {
	s := &Synchronizer{
		remote: remote,
		store:  st,
		policy: LogoutKeep,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard, "", 0)
	}
	if s.alerter == nil {
		s.alerter = AlertFunc(func(msg string) { s.logger.Printf("alert: %s", msg) })
	}

	if s.initial == auth.Authenticated {
		if remote == nil {
			return nil, ErrNoRemote
		}
		s.mode = remoteMode{remote: remote}
	} else {
		s.mode = localMode{}
	}

	tasks, err := st.Load()
	if err != nil {
		return nil, err
	}
	s.tasks = tasks
	return s, nil
}

// State returns the current authentication state.
func (s *Synchronizer) State() auth.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode.state()
}

// Tasks returns a deep copy of the collection.
func (s *Synchronizer) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return service.CloneTasks(s.tasks)
}

// Task returns a copy of the task with the given identifier.
func (s *Synchronizer) Task(id int64) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return service.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// SetAuthState moves the state machine.
// Unauthenticated→Authenticated replaces the collection with a full remote
// fetch; Authenticated→Unauthenticated applies the logout policy.
func (s *Synchronizer) SetAuthState(ctx context.Context, st auth.State) error {
	s.mu.Lock()
	if s.mode.state() == st {
		s.mu.Unlock()
		return nil
	}

	if st == auth.Unauthenticated {
		s.mode = localMode{}
		err := s.applyLogoutLocked()
		s.mu.Unlock()
		return err
	}

	if s.remote == nil {
		s.mu.Unlock()
		return ErrNoRemote
	}
	s.mode = remoteMode{remote: s.remote}
	s.mu.Unlock()

	return s.FetchAll(ctx)
}

// Follow puts the synchronizer in the provider's current state and keeps it
// there as the provider's credentials change. A new access token while
// already authenticated refetches the collection. The returned func stops
// following.
func (s *Synchronizer) Follow(ctx context.Context, p *auth.Provider) (func(), error) {
	var mu sync.Mutex
	last := p.AccessToken()

	err := s.SetAuthState(ctx, p.State())
	stop := p.Subscribe(func(c auth.Credentials) {
		mu.Lock()
		changed := c.AccessToken != last
		last = c.AccessToken
		mu.Unlock()

		if changed && c.State() == auth.Authenticated && s.State() == auth.Authenticated {
			if err := s.FetchAll(ctx); err != nil {
				s.logger.Printf("warning: refetch after token change: %v", err)
			}
			return
		}
		if err := s.SetAuthState(ctx, c.State()); err != nil {
			s.logger.Printf("warning: auth state change to %v: %v", c.State(), err)
		}
	})
	return stop, err
}

func (s *Synchronizer) applyLogoutLocked() error {
	switch s.policy {
	case LogoutClear:
		s.tasks = []service.Task{}
	case LogoutUnsynced:
		kept := make([]service.Task, 0, len(s.tasks))
		for _, t := range s.tasks {
			if !t.IsSynced {
				kept = append(kept, t)
			}
		}
		s.tasks = kept
	default:
		return nil
	}
	return s.commitLocked()
}

// FetchAll replaces the collection with the remote one.
// On failure the error is logged and returned and the collection is left
// untouched. While unauthenticated it does nothing, and a fetch that
// completes after a logout is discarded.
func (s *Synchronizer) FetchAll(ctx context.Context) error {
	m := s.currentMode()

	tasks, ok, err := m.fetch(ctx)
	if err != nil {
		s.logger.Printf("error fetching tasks: %v", err)
		return err
	}
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode.state() != m.state() {
		s.logger.Printf("discarding fetch: auth state changed to %v", s.mode.state())
		return nil
	}
	s.tasks = tasks
	return s.commitLocked()
}

// AddTask appends a task.
// Unauthenticated, the supplied identifier is kept (a zero identifier is
// replaced by a generated one). Authenticated, only the title is sent and the
// server-assigned identifier is used; a remote failure raises one alert and
// leaves the collection unchanged.
func (s *Synchronizer) AddTask(ctx context.Context, task service.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return ErrEmptyTitle
	}
	task = task.Clone()
	if task.SubTasks == nil {
		task.SubTasks = []service.SubTask{}
	}

	m := s.currentMode()
	if m.state() == auth.Unauthenticated {
		s.mu.Lock()
		if task.ID == 0 {
			task.ID = s.nextTaskIDLocked()
		}
		if s.indexLocked(task.ID) >= 0 {
			s.mu.Unlock()
			return fmt.Errorf("%w: task %d", ErrDuplicateID, task.ID)
		}
		s.mu.Unlock()
	}

	added, err := m.create(ctx, task)
	if err != nil {
		s.alerter.Alert("An error occurred while adding the list.")
		return fmt.Errorf("failed to add task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(added.ID) >= 0 {
		return fmt.Errorf("%w: task %d", ErrDuplicateID, added.ID)
	}
	s.tasks = append(s.tasks, added)
	return s.commitLocked()
}

// UpdateTask replaces the title and checked state of the task with the same
// identifier. Authenticated, the change is sent first and the entry takes the
// identifier the server returns. A remote failure is logged and returned.
func (s *Synchronizer) UpdateTask(ctx context.Context, task service.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return ErrEmptyTitle
	}
	if _, ok := s.Task(task.ID); !ok {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, task.ID)
	}

	m := s.currentMode()
	newID, err := m.update(ctx, task)
	if err != nil {
		s.logger.Printf("error updating task %d: %v", task.ID, err)
		return fmt.Errorf("failed to update task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(task.ID)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, task.ID)
	}
	if newID != task.ID && s.indexLocked(newID) >= 0 {
		return fmt.Errorf("%w: task %d", ErrDuplicateID, newID)
	}

	entry := s.tasks[i].Clone()
	entry.Title = task.Title
	entry.IsChecked = task.IsChecked
	if m.state() == auth.Authenticated {
		entry.ID = newID
		entry.IsSynced = true
	}
	s.tasks[i] = entry
	return s.commitLocked()
}

// DeleteTask removes the task and its sub-tasks.
// The local removal is persisted before the remote delete is issued and is
// never rolled back; a failing remote delete is only logged.
func (s *Synchronizer) DeleteTask(ctx context.Context, id int64) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	m := s.mode
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	err := s.commitLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if m.state() == auth.Authenticated {
		if rerr := m.remove(ctx, id); rerr != nil {
			s.logger.Printf("warning: remote delete of task %d failed: %v", id, rerr)
		}
	}
	return nil
}

// AddSubTask appends a sub-task to the task. A zero identifier is replaced
// by a generated one.
func (s *Synchronizer) AddSubTask(taskID int64, sub service.SubTask) error {
	if strings.TrimSpace(sub.Title) == "" {
		return ErrEmptyTitle
	}
	return s.editSubTasks(taskID, func(subs []service.SubTask) ([]service.SubTask, error) {
		if sub.ID == 0 {
			sub.ID = s.nextSubTaskID(subs)
		}
		if subIndex(subs, sub.ID) >= 0 {
			return nil, fmt.Errorf("%w: sub-task %d", ErrDuplicateID, sub.ID)
		}
		return append(subs, sub), nil
	})
}

// UpdateSubTaskTitle renames one sub-task.
func (s *Synchronizer) UpdateSubTaskTitle(taskID, subTaskID int64, title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	return s.editSubTask(taskID, subTaskID, func(sub *service.SubTask) {
		sub.Title = title
	})
}

// UpdateSubTaskCheck sets the checked flag of one sub-task only.
func (s *Synchronizer) UpdateSubTaskCheck(taskID, subTaskID int64, checked bool) error {
	return s.editSubTask(taskID, subTaskID, func(sub *service.SubTask) {
		sub.IsChecked = checked
	})
}

// DeleteSubTask removes one sub-task.
func (s *Synchronizer) DeleteSubTask(taskID, subTaskID int64) error {
	return s.editSubTasks(taskID, func(subs []service.SubTask) ([]service.SubTask, error) {
		j := subIndex(subs, subTaskID)
		if j < 0 {
			return nil, fmt.Errorf("%w: %d", ErrSubTaskNotFound, subTaskID)
		}
		return append(subs[:j:j], subs[j+1:]...), nil
	})
}

// UpdateTaskOrder replaces the collection with newOrder as supplied.
// It is not checked to be a permutation of the current collection; only
// identifier uniqueness is enforced.
func (s *Synchronizer) UpdateTaskOrder(newOrder []service.Task) error {
	seen := make(map[int64]bool, len(newOrder))
	tasks := make([]service.Task, len(newOrder))
	for i, t := range newOrder {
		if seen[t.ID] {
			return fmt.Errorf("%w: task %d", ErrDuplicateID, t.ID)
		}
		seen[t.ID] = true
		tasks[i] = t.Clone()
		if tasks[i].SubTasks == nil {
			tasks[i].SubTasks = []service.SubTask{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
	return s.commitLocked()
}

// UpdateSubTaskOrder replaces the sub-tasks of one task with newOrder as supplied.
func (s *Synchronizer) UpdateSubTaskOrder(taskID int64, newOrder []service.SubTask) error {
	seen := make(map[int64]bool, len(newOrder))
	for _, sub := range newOrder {
		if seen[sub.ID] {
			return fmt.Errorf("%w: sub-task %d", ErrDuplicateID, sub.ID)
		}
		seen[sub.ID] = true
	}
	return s.editSubTasks(taskID, func([]service.SubTask) ([]service.SubTask, error) {
		subs := make([]service.SubTask, len(newOrder))
		copy(subs, newOrder)
		return subs, nil
	})
}

func (s *Synchronizer) editSubTask(taskID, subTaskID int64, fn func(*service.SubTask)) error {
	return s.editSubTasks(taskID, func(subs []service.SubTask) ([]service.SubTask, error) {
		j := subIndex(subs, subTaskID)
		if j < 0 {
			return nil, fmt.Errorf("%w: %d", ErrSubTaskNotFound, subTaskID)
		}
		fn(&subs[j])
		return subs, nil
	})
}

// editSubTasks applies fn to a copy of the task's sub-tasks and commits the result.
func (s *Synchronizer) editSubTasks(taskID int64, fn func([]service.SubTask) ([]service.SubTask, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(taskID)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, taskID)
	}
	entry := s.tasks[i].Clone()
	if entry.SubTasks == nil {
		entry.SubTasks = []service.SubTask{}
	}
	subs, err := fn(entry.SubTasks)
	if err != nil {
		return err
	}
	entry.SubTasks = subs
	s.tasks[i] = entry
	return s.commitLocked()
}

func (s *Synchronizer) currentMode() mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// commitLocked writes the whole collection through to the local store.
func (s *Synchronizer) commitLocked() error {
	if err := s.store.Save(s.tasks); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

func (s *Synchronizer) indexLocked(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// nextTaskIDLocked returns the current time in milliseconds, bumped past any
// identifier already in use.
func (s *Synchronizer) nextTaskIDLocked() int64 {
	id := s.now().UnixMilli()
	for _, t := range s.tasks {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	return id
}

func (s *Synchronizer) nextSubTaskID(subs []service.SubTask) int64 {
	id := s.now().UnixMilli()
	for _, sub := range subs {
		if sub.ID >= id {
			id = sub.ID + 1
		}
	}
	return id
}

func subIndex(subs []service.SubTask, id int64) int {
	for j, sub := range subs {
		if sub.ID == id {
			return j
		}
	}
	return -1
}
