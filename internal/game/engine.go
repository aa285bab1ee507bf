// internal/game/engine.go
//
// Core game engine for a single Wordle round.
// Responsibilities:
//   - Create sessions around a chosen solution and attempt budget.
//   - Score guesses with the two-pass duplicate-aware algorithm.
//   - Track state transitions: playing → won/lost.
//
// Notes:
//   - Dictionary membership is the caller's job (see words.List.IsAllowed);
//     the engine only requires the guess to have the solution's length.
//   - A length mismatch is rejected, never truncated.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrSessionFinished is returned when a guess arrives after the round ended.
	ErrSessionFinished = errors.New("game finished")
	// ErrNoAttemptsRemaining is returned when the budget is already spent.
	// Unreachable through the state machine; kept for sessions restored from storage.
	ErrNoAttemptsRemaining = errors.New("no attempts remaining")
	// ErrLengthMismatch is returned when the guess and solution differ in length.
	ErrLengthMismatch = errors.New("guess length does not match word size")
	// ErrInvalidSession is returned by NewSession for unusable parameters.
	ErrInvalidSession = errors.New("invalid session parameters")
)

// NewSession constructs a round for solution with maxAttempts guesses.
func NewSession(solution string, maxAttempts int) (*Session, error) {
	solution = strings.ToLower(strings.TrimSpace(solution))
	if solution == "" {
		return nil, fmt.Errorf("%w: empty solution", ErrInvalidSession)
	}
	if maxAttempts <= 0 {
		return nil, fmt.Errorf("%w: attempt budget %d", ErrInvalidSession, maxAttempts)
	}
	now := time.Now().UTC()
	return &Session{
		ID:          randomID(),
		Solution:    solution,
		MaxAttempts: maxAttempts,
		Remaining:   maxAttempts,
		Guesses:     []string{},
		State:       StatePlaying,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Size is the word length W of the round.
func (s *Session) Size() int { return utf8.RuneCountInString(s.Solution) }

// Terminal reports whether the round is won or lost.
func (s *Session) Terminal() bool { return s.State.Terminal() }

// Evaluate scores a guess, consuming one attempt.
// Returns: the per-letter marks, the new state, or an error.
//
// On error nothing is mutated:
//   - ErrSessionFinished if the round is already won or lost.
//   - ErrNoAttemptsRemaining if no budget is left.
//   - ErrLengthMismatch if the guess is not exactly Size() letters.
//
// State transitions:
//   - guess == solution → won.
//   - else budget reached zero → lost.
func (s *Session) Evaluate(guess string) ([]Mark, State, error) {
	if s.Terminal() {
		return nil, s.State, ErrSessionFinished
	}
	if s.Remaining <= 0 {
		return nil, s.State, ErrNoAttemptsRemaining
	}
	guess = strings.ToLower(strings.TrimSpace(guess))
	if n := utf8.RuneCountInString(guess); n != s.Size() {
		return nil, s.State, fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, n, s.Size())
	}

	s.Remaining--
	marks := Score(s.Solution, guess)
	s.Guesses = append(s.Guesses, guess)
	s.UpdatedAt = time.Now().UTC()

	if guess == s.Solution {
		s.State = StateWon
	} else if s.Remaining == 0 {
		s.State = StateLost
	}
	return marks, s.State, nil
}

// Score implements the two-pass Wordle scoring algorithm.
//
// Pass 1:
//   - Mark exact matches; everything else starts as absent.
//   - Each solution letter's remaining count is its occurrences minus its exact matches.
//
// Pass 2, left to right:
//   - A non-exact guess letter with remaining count is present and consumes one.
//
// Position order decides which duplicate guess letters get credited.
// Score panics if solution and guess differ in length.
func Score(solution, guess string) []Mark {
	sol := []rune(solution)
	gs := []rune(guess)
	if len(sol) != len(gs) {
		panic(fmt.Sprintf("game: score %q against %q: length mismatch", guess, solution))
	}

	marks := make([]Mark, len(gs))
	remaining := make(map[rune]int, len(sol))
	for i, r := range sol {
		remaining[r]++
		if gs[i] == r {
			marks[i] = MarkExact
			remaining[r]--
		} else {
			marks[i] = MarkAbsent
		}
	}

	for i, r := range gs {
		if marks[i] == MarkExact {
			continue
		}
		if remaining[r] > 0 {
			marks[i] = MarkPresent
			remaining[r]--
		}
	}
	return marks
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	c := *s
	c.Guesses = make([]string, len(s.Guesses))
	copy(c.Guesses, s.Guesses)
	return &c
}

// AllExact returns true if every mark is MarkExact.
func AllExact(m []Mark) bool {
	for _, x := range m {
		if x != MarkExact {
			return false
		}
	}
	return true
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
