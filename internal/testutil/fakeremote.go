// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"taskcard/internal/service"
)

// FakeRemote is an in-memory implementation of service.Remote for testing.
type FakeRemote struct {
	mu     sync.RWMutex
	lists  []service.RemoteList
	subs   map[int64][]service.RemoteSubTask // listID -> sub-tasks
	nextID int64

	// UpdateReturnsID makes UpdateList report a fresh identifier, the way a
	// server re-inserting the row would.
	UpdateReturnsID int64

	// Calls counts invocations per method name.
	Calls map[string]int

	// Error injection for testing
	ListListsErr    error
	ListSubTasksErr map[int64]error // listID -> error
	CreateListErr   error
	UpdateListErr   error
	DeleteListErr   error
}

// NewFakeRemote creates an empty FakeRemote. Server identifiers start at 100.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		subs:            make(map[int64][]service.RemoteSubTask),
		nextID:          100,
		Calls:           make(map[string]int),
		ListSubTasksErr: make(map[int64]error),
	}
}

// AddList adds a list to the fake remote.
func (f *FakeRemote) AddList(id int64, title string, visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, service.RemoteList{ID: id, Title: title, IsVisible: visible})
	if _, ok := f.subs[id]; !ok {
		f.subs[id] = nil
	}
}

// AddSubTask adds a sub-task to a list.
func (f *FakeRemote) AddSubTask(listID, id int64, content string, done bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[listID] = append(f.subs[listID], service.RemoteSubTask{ID: id, Content: content, Done: done})
}

// Lists returns a copy of the stored lists.
func (f *FakeRemote) Lists() []service.RemoteList {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.RemoteList, len(f.lists))
	copy(out, f.lists)
	return out
}

func (f *FakeRemote) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[name]++
}

// ListLists implements service.Remote.
func (f *FakeRemote) ListLists(ctx context.Context) ([]service.RemoteList, error) {
	f.count("ListLists")
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	return f.Lists(), nil
}

// ListSubTasks implements service.Remote.
func (f *FakeRemote) ListSubTasks(ctx context.Context, listID int64) ([]service.RemoteSubTask, error) {
	f.count("ListSubTasks")
	if err, ok := f.ListSubTasksErr[listID]; ok && err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	subs := f.subs[listID]
	out := make([]service.RemoteSubTask, len(subs))
	copy(out, subs)
	return out, nil
}

// CreateList implements service.Remote.
func (f *FakeRemote) CreateList(ctx context.Context, title string) (int64, error) {
	f.count("CreateList")
	if f.CreateListErr != nil {
		return 0, f.CreateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.lists = append(f.lists, service.RemoteList{ID: id, Title: title})
	f.subs[id] = nil
	return id, nil
}

// UpdateList implements service.Remote.
func (f *FakeRemote) UpdateList(ctx context.Context, listID int64, title string, visible bool) (int64, error) {
	f.count("UpdateList")
	if f.UpdateListErr != nil {
		return 0, f.UpdateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lists {
		if l.ID == listID {
			f.lists[i].Title = title
			f.lists[i].IsVisible = visible
			if f.UpdateReturnsID != 0 {
				f.lists[i].ID = f.UpdateReturnsID
				f.subs[f.UpdateReturnsID] = f.subs[listID]
				delete(f.subs, listID)
			}
			return f.UpdateReturnsID, nil
		}
	}
	return 0, service.ErrNotFound
}

// DeleteList implements service.Remote.
func (f *FakeRemote) DeleteList(ctx context.Context, listID int64) error {
	f.count("DeleteList")
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lists {
		if l.ID == listID {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			delete(f.subs, listID)
			return nil
		}
	}
	return service.ErrNotFound
}
