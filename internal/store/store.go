// internal/store/store.go
//
// Persistence for player progression profiles.
//
// Two implementations share the Store interface:
//   - memory (memory.go): map-backed, process lifetime only.
//   - SQLite (sqlite.go): one JSON document per player in the profiles table.
//
// Writes are last-write-wins; callers that read, modify and save a profile
// do not get optimistic concurrency control.

package store

import (
	"context"
	"errors"

	"github.com/Caliovent/korean-party-functions/internal/game"
)

// ErrNotFound is returned by Get when no profile exists for the player.
var ErrNotFound = errors.New("profile not found")

// Store defines the persistence interface for player profiles.
type Store interface {
	// Get loads the profile of playerID, or ErrNotFound.
	Get(ctx context.Context, playerID string) (game.Profile, error)

	// Save stores or replaces the profile of playerID.
	Save(ctx context.Context, playerID string, p game.Profile) error
}
