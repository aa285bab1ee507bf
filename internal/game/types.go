// internal/game/types.go
//
// Core type definitions for the Wordle game engine.
// Defines:
//   - Mark:    per-letter result of a guess (exact/present/absent).
//   - State:   lifecycle of a single round (playing → won | lost).
//   - Session: one round's hidden solution, attempt budget, and state.

package game

import "time"

// Mark represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "exact":   letter is correct and in the correct position.
//   - "present": letter occurs in the solution at another, not yet credited, position.
//   - "absent":  letter does not occur, or all its occurrences are already credited.
type Mark string

const (
	MarkExact   Mark = "exact"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

// State is the coarse lifecycle of a session. Transitions are one-way.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Terminal reports whether no further guesses may be evaluated.
func (s State) Terminal() bool { return s == StateWon || s == StateLost }

// Session holds the state of a single round.
//
// A Session is not safe for concurrent use: Evaluate consumes attempt budget,
// so callers sharing one across goroutines must serialize access (see store.Store.Update).
type Session struct {
	ID          string    // Unique round identifier (random hex string).
	Owner       string    // Player that started the round; empty for local play.
	Solution    string    // Hidden word (always lowercase).
	MaxAttempts int       // Attempt budget the round started with.
	Remaining   int       // Attempts left; never negative.
	Guesses     []string  // Accepted guesses so far (lowercased).
	State       State     // playing | won | lost
	CreatedAt   time.Time // When the round was created.
	UpdatedAt   time.Time // Last accepted guess (or CreatedAt).
}
