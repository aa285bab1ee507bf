package game

import (
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// Factory starts rounds with a uniformly random solution from a fixed pool.
// It is safe for concurrent use.
type Factory struct {
	answers     []string
	maxAttempts int

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewFactory builds a Factory over answers. A nil src seeds a PCG from the clock.
func NewFactory(answers []string, maxAttempts int, src rand.Source) (*Factory, error) {
	if len(answers) == 0 {
		return nil, errors.New("game: empty solution pool")
	}
	if maxAttempts <= 0 {
		return nil, ErrInvalidSession
	}
	if src == nil {
		now := time.Now()
		src = rand.NewPCG(uint64(now.UnixNano()), uint64(now.Nanosecond()))
	}
	pool := make([]string, len(answers))
	for i, w := range answers {
		pool[i] = strings.ToLower(w)
	}
	return &Factory{answers: pool, maxAttempts: maxAttempts, rng: rand.New(src)}, nil
}

// MaxAttempts is the budget every new session starts with.
func (f *Factory) MaxAttempts() int { return f.maxAttempts }

// NewSession starts a round with a solution picked uniformly from the pool.
func (f *Factory) NewSession() (*Session, error) {
	f.mu.Lock()
	i := f.rng.IntN(len(f.answers))
	f.mu.Unlock()
	return NewSession(f.answers[i], f.maxAttempts)
}

// WithSolution starts a round with a fixed solution (testing, daily mode).
func (f *Factory) WithSolution(word string) (*Session, error) {
	return NewSession(word, f.maxAttempts)
}
