// Package tiles draws guess feedback for terminals.
package tiles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/davidcallanan/wordle/internal/game"
)

var (
	base = lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.Color("255"))

	exactStyle   = base.Copy().Background(lipgloss.Color("28"))
	presentStyle = base.Copy().Background(lipgloss.Color("178"))
	absentStyle  = base.Copy().Background(lipgloss.Color("238")).Foreground(lipgloss.Color("250"))
)

func styleFor(m game.Mark) lipgloss.Style {
	switch m {
	case game.MarkExact:
		return exactStyle
	case game.MarkPresent:
		return presentStyle
	default:
		return absentStyle
	}
}

// Render draws one coloured tile per letter of guess.
func Render(guess string, marks []game.Mark) string {
	letters := []rune(strings.ToUpper(guess))
	cells := make([]string, 0, len(marks))
	for i, m := range marks {
		ch := " "
		if i < len(letters) {
			ch = string(letters[i])
		}
		cells = append(cells, styleFor(m).Render(ch))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// Plain encodes marks as G (exact), Y (present) and _ (absent).
func Plain(marks []game.Mark) string {
	b := make([]byte, len(marks))
	for i, m := range marks {
		switch m {
		case game.MarkExact:
			b[i] = 'G'
		case game.MarkPresent:
			b[i] = 'Y'
		default:
			b[i] = '_'
		}
	}
	return string(b)
}
