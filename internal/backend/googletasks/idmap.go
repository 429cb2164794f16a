package googletasks

import (
	"encoding/json"
	"fmt"
	"sync"

	"taskcard/internal/store"
)

// IDMapKey is the store key the identifier map is persisted under.
const IDMapKey = "googletasks.ids"

// IDMap assigns stable integer identifiers to Google's string identifiers.
// Every new assignment is written through to the store.
type IDMap struct {
	mu     sync.Mutex
	kv     store.KV
	doc    idMapDoc
	remote map[int64]string
}

type idMapDoc struct {
	Next int64            `json:"next"`
	IDs  map[string]int64 `json:"ids"`
}

// NewIDMap loads the map persisted in kv. An absent entry starts empty.
func NewIDMap(kv store.KV) (*IDMap, error) {
	m := &IDMap{
		kv:     kv,
		doc:    idMapDoc{Next: 1, IDs: make(map[string]int64)},
		remote: make(map[int64]string),
	}

	data, ok, err := kv.Get(IDMapKey)
	if err != nil {
		return nil, err
	}
	if ok && len(data) > 0 {
		var doc idMapDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid id map: %w", err)
		}
		if doc.IDs != nil {
			m.doc.IDs = doc.IDs
		}
		if doc.Next > m.doc.Next {
			m.doc.Next = doc.Next
		}
	}

	for s, id := range m.doc.IDs {
		m.remote[id] = s
		if id >= m.doc.Next {
			m.doc.Next = id + 1
		}
	}
	return m, nil
}

// ID returns the integer identifier for a Google identifier, assigning one
// if it has none yet.
func (m *IDMap) ID(remoteID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.doc.IDs[remoteID]; ok {
		return id, nil
	}
	id := m.doc.Next
	m.doc.Next++
	m.doc.IDs[remoteID] = id
	m.remote[id] = remoteID
	if err := m.saveLocked(); err != nil {
		return 0, err
	}
	return id, nil
}

// Remote returns the Google identifier for id.
func (m *IDMap) Remote(id int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.remote[id]
	return s, ok
}

// Forget drops the mapping for id. Identifiers are never reused.
func (m *IDMap) Forget(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.remote[id]
	if !ok {
		return nil
	}
	delete(m.remote, id)
	delete(m.doc.IDs, s)
	return m.saveLocked()
}

func (m *IDMap) saveLocked() error {
	data, err := json.Marshal(m.doc)
	if err != nil {
		return err
	}
	return m.kv.Set(IDMapKey, data)
}
