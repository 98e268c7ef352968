package state

import (
	"context"
	"sync"
)

// Keys under which collections are persisted.
const (
	KeyTasks            = "tasks"
	KeyActions          = "actions"
	KeyInventory        = "inventory"
	KeyRewards          = "rewards"
	KeyAchievements     = "achievements"
	KeyRecurrents       = "recurrents"
	KeyPrestigePoints   = "prestigePoints"
	KeyPrestigeSettings = "prestigeSettings"
	KeyScripts          = "scripts"
	KeyEventHistory     = "eventHistory"
)

// KV is the persistence boundary: raw JSON documents by key.
// Implemented by store.Store (SQLite) and MemoryKV.
type KV interface {
	// Load returns the stored value and whether the key exists.
	Load(ctx context.Context, key string) ([]byte, bool, error)

	// Save replaces the value stored under key.
	Save(ctx context.Context, key string, value []byte) error
}

// MemoryKV is an in-process KV used by tests and the scenario harness.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string][]byte
	saves  map[string]int
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		values: make(map[string][]byte),
		saves:  make(map[string]int),
	}
}

// Load implements KV.
func (m *MemoryKV) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Save implements KV.
func (m *MemoryKV) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	m.saves[key]++
	return nil
}

// Saves returns how many times key has been saved.
func (m *MemoryKV) Saves(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[key]
}
