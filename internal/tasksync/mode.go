package tasksync

import (
	"context"
	"fmt"

	"taskcard/internal/auth"
	"taskcard/internal/service"
)

// mode is the per-state behavior of the task operations that may reach the
// remote API. Sub-task and reorder operations are the same in both states and
// do not go through it.
type mode interface {
	state() auth.State

	// fetch returns the authoritative collection, or ok=false when the mode
	// has nothing to fetch from.
	fetch(ctx context.Context) (tasks []service.Task, ok bool, err error)

	// create returns the task as it must be appended.
	create(ctx context.Context, task service.Task) (service.Task, error)

	// update returns the identifier the updated entry must carry.
	update(ctx context.Context, task service.Task) (int64, error)

	// remove is the side effect of a delete. The local removal has already
	// happened when it is called.
	remove(ctx context.Context, id int64) error
}

// localMode serves every operation from memory.
type localMode struct{}

func (localMode) state() auth.State { return auth.Unauthenticated }

func (localMode) fetch(ctx context.Context) ([]service.Task, bool, error) {
	return nil, false, nil
}

func (localMode) create(ctx context.Context, task service.Task) (service.Task, error) {
	return task, nil
}

func (localMode) update(ctx context.Context, task service.Task) (int64, error) {
	return task.ID, nil
}

func (localMode) remove(ctx context.Context, id int64) error {
	return nil
}

// remoteMode backs task operations with the remote API.
type remoteMode struct {
	remote service.Remote
}

func (remoteMode) state() auth.State { return auth.Authenticated }

// fetch retrieves every list and then the sub-tasks of each one.
// Any failure discards everything fetched so far.
func (m remoteMode) fetch(ctx context.Context) ([]service.Task, bool, error) {
	lists, err := m.remote.ListLists(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch lists: %w", err)
	}

	tasks := make([]service.Task, 0, len(lists))
	for _, list := range lists {
		subs, err := m.remote.ListSubTasks(ctx, list.ID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to fetch sub-tasks of list %d: %w", list.ID, err)
		}
		tasks = append(tasks, list.ToTask(subs))
	}
	return tasks, true, nil
}

// create sends only the title and takes the server-assigned identifier.
func (m remoteMode) create(ctx context.Context, task service.Task) (service.Task, error) {
	id, err := m.remote.CreateList(ctx, task.Title)
	if err != nil {
		return service.Task{}, err
	}
	task.ID = id
	task.IsSynced = true
	return task, nil
}

// update falls back to the original identifier when the server returns none.
func (m remoteMode) update(ctx context.Context, task service.Task) (int64, error) {
	id, err := m.remote.UpdateList(ctx, task.ID, task.Title, task.IsChecked)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return task.ID, nil
	}
	return id, nil
}

func (m remoteMode) remove(ctx context.Context, id int64) error {
	return m.remote.DeleteList(ctx, id)
}
