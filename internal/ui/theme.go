package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	accent  = lipgloss.Color("#cba6f7")
	muted   = lipgloss.Color("#a6adc8")
	success = lipgloss.Color("#94e2d5")
	failure = lipgloss.Color("#f38ba8")
	border  = lipgloss.Color("#585b70")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle  = lipgloss.NewStyle().Foreground(muted)
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(success)
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(failure)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(1, 2)
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
)

// IsTerminal reports whether v is an *os.File attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Terminal groups the streams interactive components use.
type Terminal struct {
	In  io.Reader
	Out io.Writer
	// Interactive is set when both streams are a terminal.
	Interactive bool
}

// StdTerminal returns the process terminal.
func StdTerminal() Terminal {
	return Terminal{
		In:          os.Stdin,
		Out:         os.Stdout,
		Interactive: IsTerminal(os.Stdin) && IsTerminal(os.Stdout),
	}
}
