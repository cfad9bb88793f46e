package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// DefaultWordWrap is used when the terminal width cannot be detected.
const DefaultWordWrap = 100

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a function that renders markdown using glamour.
// When out is not a terminal the markdown is returned untouched so that
// piped output stays copyable.
func NewRenderer(out *os.File) func(string) (string, error) {
	if !IsTerminal(out) {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	width := DefaultWordWrap
	if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 && w < width {
		width = w
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
