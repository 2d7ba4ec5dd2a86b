// Package tui styles terminal output.
package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Render applies style only when w is a terminal, so piped output stays plain.
func Render(w io.Writer, style lipgloss.Style, s string) string {
	if !IsTerminal(w) {
		return s
	}
	return style.Render(s)
}

