// internal/mirror/memory.go
package mirror

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryMirror is an in-process Mirror for tests and single-node setups.
// Snapshots round-trip through JSON so the behaviour matches the Redis
// implementation, including loss of type information tests might rely on.
type MemoryMirror struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{data: make(map[string][]byte)}
}

func (m *MemoryMirror) Write(_ context.Context, assessmentID string, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[Key(assessmentID)] = raw
	return nil
}

func (m *MemoryMirror) Read(_ context.Context, assessmentID string) (*Snapshot, error) {
	m.mu.RLock()
	raw, ok := m.data[Key(assessmentID)]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (m *MemoryMirror) Clear(_ context.Context, assessmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, Key(assessmentID))
	return nil
}

// Corrupt overwrites the stored payload with invalid JSON. Test helper for
// exercising the degraded-read path.
func (m *MemoryMirror) Corrupt(assessmentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[Key(assessmentID)] = []byte("{not-json")
}
