// Command wordle plays a round in the terminal against a local word list.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/davidcallanan/wordle/internal/game"
	"github.com/davidcallanan/wordle/internal/tiles"
	"github.com/davidcallanan/wordle/internal/words"
)

func main() {
	answersFile := flag.String("answers", os.Getenv("WORDS_ANSWERS_FILE"), "solution pool, one word per line")
	allowedFile := flag.String("allowed", os.Getenv("WORDS_ALLOWED_FILE"), "allowed guesses, one word per line")
	size := flag.Int("size", words.DefaultSize, "word length")
	attempts := flag.Int("attempts", 6, "guesses per round")
	seed := flag.Uint64("seed", 0, "random seed (0 picks one from the clock)")
	plain := flag.Bool("plain", false, "print G/Y/_ instead of coloured tiles")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	list, err := words.Load(words.Options{AnswersFile: *answersFile, AllowedFile: *allowedFile, Size: *size})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	var src rand.Source
	if *seed != 0 {
		src = rand.NewPCG(*seed, *seed)
	}
	factory, err := game.NewFactory(list.Answers(), *attempts, src)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create game")
	}
	s, err := factory.NewSession()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start round")
	}

	render := tiles.Render
	if *plain {
		render = func(_ string, m []game.Mark) string { return tiles.Plain(m) }
	}
	if err := play(os.Stdin, os.Stdout, s, list, render); err != nil {
		log.Fatal().Err(err).Msg("read input")
	}
}

// play runs one round, reading a guess per line until the round ends or input runs out.
func play(in io.Reader, out io.Writer, s *game.Session, list *words.List, render func(string, []game.Mark) string) error {
	sc := bufio.NewScanner(in)
	fmt.Fprintf(out, "Guess the %d-letter word. %d attempts.\n", s.Size(), s.Remaining)
	for !s.Terminal() {
		fmt.Fprintf(out, "Guess %d: ", s.MaxAttempts-s.Remaining+1)
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		guess := strings.ToLower(strings.TrimSpace(sc.Text()))
		if !list.IsAllowed(guess) {
			fmt.Fprintf(out, "Word not allowed! [%s]\n", guess)
			continue
		}
		marks, _, err := s.Evaluate(guess)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, render(guess, marks))
	}

	switch s.State {
	case game.StateWon:
		fmt.Fprintf(out, "You win in %d!\n", len(s.Guesses))
	case game.StateLost:
		fmt.Fprintf(out, "You lose! [%s]\n", strings.ToUpper(s.Solution))
	}
	return nil
}
