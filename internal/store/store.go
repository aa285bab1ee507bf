// internal/store/store.go
//
// Persistence interface for live game sessions.
//
// Only rounds in progress (and recently finished ones, until swept) are kept;
// nothing here is a history of past games.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/davidcallanan/wordle/internal/game"
)

// ErrNotFound is returned when no session has the requested ID.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Get returns a copy of the session with the given ID.
	Get(ctx context.Context, id string) (*game.Session, error)

	// Update runs fn on the session under exclusion and persists it if fn
	// returns nil. Concurrent Updates of one session never interleave.
	Update(ctx context.Context, id string, fn func(*game.Session) error) (*game.Session, error)

	// Delete removes a session. Missing IDs are not an error.
	Delete(ctx context.Context, id string) error

	// Sweep drops finished sessions and sessions untouched since before.
	// Returns the number removed.
	Sweep(ctx context.Context, before time.Time) (int, error)
}

// expired reports whether Sweep should drop s.
func expired(s *game.Session, before time.Time) bool {
	return s.Terminal() || s.UpdatedAt.Before(before)
}
