// Package service defines the task model and the backend-agnostic remote interface.
package service

import (
	"context"
	"errors"
)

// Remote defines the operations the synchronizer needs from a remote list/task API.
// All network calls go through this interface.
// The synchronizer never imports a backend package directly.
type Remote interface {
	// ListLists returns all tasks ("lists") in API order.
	ListLists(ctx context.Context) ([]RemoteList, error)

	// ListSubTasks returns the sub-tasks of one list in API order.
	ListSubTasks(ctx context.Context, listID int64) ([]RemoteSubTask, error)

	// CreateList creates a list with the given title and returns its server-assigned ID.
	CreateList(ctx context.Context, title string) (int64, error)

	// UpdateList updates title and visibility of a list.
	// Returns the ID reported by the server, or 0 if it reported none.
	UpdateList(ctx context.Context, listID int64, title string, visible bool) (int64, error)

	// DeleteList deletes a list and its sub-tasks.
	DeleteList(ctx context.Context, listID int64) error
}

// Error kinds shared by backends and the local store.
var (
	// ErrNetwork indicates the request was rejected or the server was unreachable.
	ErrNetwork = errors.New("network failure")

	// ErrAuth indicates a missing, expired or revoked credential.
	ErrAuth = errors.New("token expired or revoked (run: taskcard login)")

	// ErrNotFound indicates the remote resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorageCorrupt indicates the persisted document could not be parsed.
	ErrStorageCorrupt = errors.New("local storage corrupt")
)
