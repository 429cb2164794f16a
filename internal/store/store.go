// Package store is the durable write-through mirror of the task collection.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"taskcard/internal/service"
)

// TasksKey is the fixed key the task collection is stored under.
const TasksKey = "tasks"

// KV is a synchronous key-value store.
type KV interface {
	// Get returns the value for key. ok is false if the key is absent.
	Get(key string) (value []byte, ok bool, err error)

	// Set overwrites the value for key.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

// DirKV stores each key as <dir>/<key>.json.
type DirKV struct {
	dir string
}

// NewDirKV returns a KV backed by files in dir.
// The directory is created on first write.
func NewDirKV(dir string) *DirKV {
	return &DirKV{dir: dir}
}

func (d *DirKV) path(key string) string {
	return filepath.Join(d.dir, key+".json")
}

// Get implements KV.
func (d *DirKV) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(d.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Set implements KV. The value is written to a temp file and renamed into place.
func (d *DirKV) Set(key string, value []byte) error {
	if err := os.MkdirAll(d.dir, 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(d.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmpName, d.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete implements KV.
func (d *DirKV) Delete(key string) error {
	err := os.Remove(d.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// MemKV is an in-memory KV, used by tests and by the UI preview.
type MemKV struct {
	data map[string][]byte
}

// NewMemKV returns an empty in-memory KV.
func NewMemKV() *MemKV {
	return &MemKV{data: make(map[string][]byte)}
}

// Get implements KV.
func (m *MemKV) Get(key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set implements KV.
func (m *MemKV) Set(key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

// Delete implements KV.
func (m *MemKV) Delete(key string) error {
	delete(m.data, key)
	return nil
}

// TaskStore persists the task collection as a single JSON array.
//
// The document has no version field. Unknown fields are ignored on read and
// missing fields take their zero values.
type TaskStore struct {
	kv     KV
	logger *log.Logger
}

// NewTaskStore creates a TaskStore over kv. A nil logger discards output.
func NewTaskStore(kv KV, logger *log.Logger) *TaskStore {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &TaskStore{kv: kv, logger: logger}
}

// KV returns the underlying key-value store.
func (s *TaskStore) KV() KV {
	return s.kv
}

// Load reads the persisted collection.
// An absent or unparsable document yields an empty collection; only a failing
// read of the backing store is returned as an error.
func (s *TaskStore) Load() ([]service.Task, error) {
	tasks, err := s.load()
	if errors.Is(err, service.ErrStorageCorrupt) {
		s.logger.Printf("warning: %v, starting with an empty collection", err)
		return []service.Task{}, nil
	}
	return tasks, err
}

func (s *TaskStore) load() ([]service.Task, error) {
	data, ok, err := s.kv.Get(TasksKey)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(string(data)) == "" {
		return []service.Task{}, nil
	}

	var tasks []service.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrStorageCorrupt, err)
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	for i := range tasks {
		if tasks[i].SubTasks == nil {
			tasks[i].SubTasks = []service.SubTask{}
		}
	}
	return tasks, nil
}

// Save overwrites the persisted document with the full collection.
func (s *TaskStore) Save(tasks []service.Task) error {
	doc := make([]service.Task, len(tasks))
	for i, t := range tasks {
		doc[i] = t
		if t.SubTasks == nil {
			doc[i].SubTasks = []service.SubTask{}
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	return s.kv.Set(TasksKey, data)
}
