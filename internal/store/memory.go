// internal/store/memory.go
//
// In-memory implementation of Store.
//
// Characteristics:
//   - Profiles keyed by player id in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Values are deep-copied on the way in and out, so callers never share
//     maps or slices with the store.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"

	"github.com/Caliovent/korean-party-functions/internal/game"
)

type memory struct {
	mu       sync.RWMutex
	profiles map[string]game.Profile
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{profiles: make(map[string]game.Profile)}
}

func (m *memory) Save(ctx context.Context, playerID string, p game.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[playerID] = p.Clone()
	return nil
}

func (m *memory) Get(ctx context.Context, playerID string) (game.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.profiles[playerID]; ok {
		return p.Clone(), nil
	}
	return game.Profile{}, ErrNotFound
}
