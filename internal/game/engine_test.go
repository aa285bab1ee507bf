package game

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const (
	E = MarkExact
	P = MarkPresent
	A = MarkAbsent
)

func TestScore(t *testing.T) {
	tests := []struct {
		solution, guess string
		want            []Mark
	}{
		{"allow", "lolly", []Mark{P, P, E, A, A}},
		{"crane", "crane", []Mark{E, E, E, E, E}},
		{"abbey", "bobby", []Mark{P, A, E, A, E}},
		{"speed", "eerie", []Mark{P, P, A, A, A}},
		{"there", "eerie", []Mark{P, A, P, A, E}},
		{"crane", "ghost", []Mark{A, A, A, A, A}},
		{"nacre", "crane", []Mark{P, P, P, P, E}},
	}
	for _, tt := range tests {
		t.Run(tt.solution+"/"+tt.guess, func(t *testing.T) {
			got := Score(tt.solution, tt.guess)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Score(%q, %q) mismatch (-want +got):\n%s", tt.solution, tt.guess, diff)
			}
		})
	}
}

func TestScoreLengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for mismatched lengths")
		}
	}()
	Score("crane", "cran")
}

// Random words over a tiny alphabet force plenty of duplicate letters.
func TestScoreProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	word := func() string {
		var b strings.Builder
		for i := 0; i < 5; i++ {
			b.WriteByte("abc"[rng.IntN(3)])
		}
		return b.String()
	}

	for n := 0; n < 2000; n++ {
		sol, guess := word(), word()
		marks := Score(sol, guess)
		if len(marks) != len(sol) {
			t.Fatalf("len(marks) = %d, want %d", len(marks), len(sol))
		}

		credited := map[byte]int{}
		for i, m := range marks {
			if (m == MarkExact) != (guess[i] == sol[i]) {
				t.Fatalf("Score(%q, %q)[%d] = %s, exact iff letters match", sol, guess, i, m)
			}
			if m != MarkAbsent {
				credited[guess[i]]++
			}
		}
		for letter, c := range credited {
			if occ := strings.Count(sol, string(letter)); c > occ {
				t.Fatalf("Score(%q, %q): %d credits for %q, solution has %d", sol, guess, c, letter, occ)
			}
		}
		if got := Score(sol, guess); !cmp.Equal(marks, got) {
			t.Fatalf("Score(%q, %q) not deterministic", sol, guess)
		}
	}
}

func TestEvaluateWin(t *testing.T) {
	s, err := NewSession("ALLOW", 6)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	marks, state, err := s.Evaluate("lolly")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if diff := cmp.Diff([]Mark{P, P, E, A, A}, marks); diff != "" {
		t.Fatalf("marks mismatch (-want +got):\n%s", diff)
	}
	if state != StatePlaying || s.Remaining != 5 {
		t.Fatalf("state = %s remaining = %d, want playing/5", state, s.Remaining)
	}

	marks, state, err = s.Evaluate(" Allow ")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !AllExact(marks) {
		t.Fatalf("marks = %v, want all exact", marks)
	}
	if state != StateWon {
		t.Fatalf("state = %s, want won", state)
	}
	if diff := cmp.Diff([]string{"lolly", "allow"}, s.Guesses); diff != "" {
		t.Fatalf("guesses mismatch (-want +got):\n%s", diff)
	}

	if _, state, err := s.Evaluate("allow"); !errors.Is(err, ErrSessionFinished) || state != StateWon {
		t.Fatalf("after win: state = %s err = %v, want won/ErrSessionFinished", state, err)
	}
	if s.Remaining != 4 {
		t.Fatalf("remaining = %d after rejected guess, want 4", s.Remaining)
	}
}

func TestEvaluateLoseOnLastAttempt(t *testing.T) {
	s, err := NewSession("crane", 3)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	for i, g := range []string{"ghost", "plumb", "fizzy"} {
		_, state, err := s.Evaluate(g)
		if err != nil {
			t.Fatalf("guess %d: %v", i, err)
		}
		if want := 3 - i - 1; s.Remaining != want {
			t.Fatalf("guess %d: remaining = %d, want %d", i, s.Remaining, want)
		}
		if i < 2 && state != StatePlaying {
			t.Fatalf("guess %d: state = %s, want playing", i, state)
		}
		if i == 2 && state != StateLost {
			t.Fatalf("final guess: state = %s, want lost", state)
		}
	}

	if _, state, err := s.Evaluate("crane"); !errors.Is(err, ErrSessionFinished) || state != StateLost {
		t.Fatalf("after loss: state = %s err = %v, want lost/ErrSessionFinished", state, err)
	}
	if s.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", s.Remaining)
	}
}

func TestEvaluateWinOnLastAttempt(t *testing.T) {
	s, _ := NewSession("crane", 1)
	if _, state, err := s.Evaluate("crane"); err != nil || state != StateWon {
		t.Fatalf("state = %s err = %v, want won", state, err)
	}
}

func TestEvaluateLengthMismatch(t *testing.T) {
	s, _ := NewSession("crane", 6)
	for _, g := range []string{"cran", "cranes", ""} {
		if _, _, err := s.Evaluate(g); !errors.Is(err, ErrLengthMismatch) {
			t.Fatalf("Evaluate(%q) err = %v, want ErrLengthMismatch", g, err)
		}
	}
	if s.Remaining != 6 || len(s.Guesses) != 0 {
		t.Fatalf("rejected guesses consumed budget: remaining = %d guesses = %v", s.Remaining, s.Guesses)
	}
}

func TestEvaluateNoAttemptsRemaining(t *testing.T) {
	// A restored session whose budget is spent but whose state was never advanced.
	s := &Session{Solution: "crane", MaxAttempts: 6, State: StatePlaying}
	marks, _, err := s.Evaluate("crane")
	if !errors.Is(err, ErrNoAttemptsRemaining) {
		t.Fatalf("err = %v, want ErrNoAttemptsRemaining", err)
	}
	if marks != nil || s.Remaining != 0 || s.State != StatePlaying {
		t.Fatalf("session mutated: marks = %v remaining = %d state = %s", marks, s.Remaining, s.State)
	}
}

func TestNewSessionRejectsBadParameters(t *testing.T) {
	if _, err := NewSession("  ", 6); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("empty solution err = %v", err)
	}
	if _, err := NewSession("crane", 0); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("zero budget err = %v", err)
	}
}

func TestClone(t *testing.T) {
	s, _ := NewSession("crane", 6)
	_, _, _ = s.Evaluate("ghost")
	c := s.Clone()
	c.Guesses[0] = "other"
	if s.Guesses[0] != "ghost" {
		t.Fatalf("clone shares guesses slice")
	}
}
