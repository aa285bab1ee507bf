// internal/words/words.go
//
// Word list management for the game engine.
//
// Responsibilities:
//   - Load answer and allowed guess lists from files or fall back to embedded defaults.
//   - Maintain sets for quick lookups (answers only, answers∪guesses).
//   - Answer IsAllowed/IsAnswer/Stats queries for callers validating guesses.
//
// Word Lists:
//   - "answers": candidate solutions (exactly Size lowercase letters).
//   - "allowed": valid guesses (always includes answers).
//
// Load behavior:
//   1. If AnswersFile and AllowedFile are both set,
//      load answers from the first and allowed guesses from the second.
//   2. If only AllowedFile is set,
//      load that file and use it for both answers and allowed guesses.
//   3. If neither is set,
//      fall back to the lists embedded in the assets package.
//
// Constraints:
//   • Words must be Size ASCII letters (a–z); anything else is dropped.
//   • Lists are normalized to lowercase.

package words

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davidcallanan/wordle/assets"
)

// DefaultSize is the classic five-letter word length.
const DefaultSize = 5

// ErrNoAnswers is returned when the solution pool ends up empty.
var ErrNoAnswers = errors.New("words: answers list is empty")

// Options selects where the lists come from.
type Options struct {
	AnswersFile string
	AllowedFile string
	Size        int // word length; 0 means DefaultSize
}

// List is an immutable pair of word lists. Safe for concurrent reads.
type List struct {
	size       int
	answers    []string            // candidate solutions, file order
	answersSet map[string]struct{} // answers only
	allowedSet map[string]struct{} // answers ∪ guesses
}

// Load reads both lists according to opts.
func Load(opts Options) (*List, error) {
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}

	var ansList, allowList []string
	var err error
	switch {
	// Case 1: both lists provided
	case opts.AnswersFile != "" && opts.AllowedFile != "":
		if ansList, err = readWordFile(opts.AnswersFile, size); err != nil {
			return nil, err
		}
		if allowList, err = readWordFile(opts.AllowedFile, size); err != nil {
			return nil, err
		}

	// Case 2: only allowed file provided → use for both
	case opts.AllowedFile != "":
		if allowList, err = readWordFile(opts.AllowedFile, size); err != nil {
			return nil, err
		}
		ansList = allowList

	// Case 3: embedded defaults
	default:
		if ansList, err = readEmbedded(assets.Answers, size); err != nil {
			return nil, err
		}
		if allowList, err = readEmbedded(assets.Allowed, size); err != nil {
			return nil, err
		}
	}
	return New(ansList, allowList, size)
}

// New builds a List from in-memory slices. Words are normalized and filtered
// like file input; answers are always added to the allowed set.
func New(answers, allowed []string, size int) (*List, error) {
	l := &List{
		size:       size,
		answersSet: make(map[string]struct{}, len(answers)),
		allowedSet: make(map[string]struct{}, len(answers)+len(allowed)),
	}
	for _, w := range answers {
		w, ok := normalize(w, size)
		if !ok {
			continue
		}
		if _, dup := l.answersSet[w]; dup {
			continue
		}
		l.answers = append(l.answers, w)
		l.answersSet[w] = struct{}{}
		l.allowedSet[w] = struct{}{}
	}
	for _, w := range allowed {
		if w, ok := normalize(w, size); ok {
			l.allowedSet[w] = struct{}{}
		}
	}
	if len(l.answers) == 0 {
		return nil, ErrNoAnswers
	}
	return l, nil
}

// Parse reads one word per line, skipping blanks, "#" comments and
// anything that is not exactly size ASCII letters.
func Parse(r io.Reader, size int) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if w, ok := normalize(line, size); ok {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

// readWordFile loads one word per line from a file.
func readWordFile(path string, size int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: %w", err)
	}
	defer f.Close()
	out, err := Parse(f, size)
	if err != nil {
		return nil, fmt.Errorf("words: read %s: %w", path, err)
	}
	return out, nil
}

func readEmbedded(open func() (io.ReadCloser, error), size int) ([]string, error) {
	f, err := open()
	if err != nil {
		return nil, fmt.Errorf("words: embedded list: %w", err)
	}
	defer f.Close()
	return Parse(f, size)
}

// normalize lowercases w and reports whether it is size letters a–z.
func normalize(w string, size int) (string, bool) {
	w = strings.ToLower(strings.TrimSpace(w))
	if len(w) != size || !isAlpha(w) {
		return "", false
	}
	return w, true
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Size is the word length every list entry has.
func (l *List) Size() int { return l.size }

// Answers returns the solution pool. Callers must not modify it.
func (l *List) Answers() []string { return l.answers }

// IsAllowed reports whether w is a valid guess (answers ∪ guesses).
func (l *List) IsAllowed(w string) bool {
	_, ok := l.allowedSet[strings.ToLower(strings.TrimSpace(w))]
	return ok
}

// IsAnswer reports whether w is an answer word.
func (l *List) IsAnswer(w string) bool {
	_, ok := l.answersSet[strings.ToLower(strings.TrimSpace(w))]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func (l *List) Stats() (answersCount int, allowedCount int) {
	return len(l.answers), len(l.allowedSet)
}
