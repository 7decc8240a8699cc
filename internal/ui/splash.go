package ui

import (
	"fmt"
	"io"
	"strings"
)

// Splash is the startup banner.
type Splash struct {
	out    io.Writer
	tty    bool
	height int
	hidden bool
}

// ShowSplash draws the banner and returns a handle to hide it.
func ShowSplash(t Terminal, name, version, buildTime string) *Splash {
	content := titleStyle.Render(name) + "\n" +
		mutedStyle.Render(fmt.Sprintf("version %s", version)) + "\n" +
		mutedStyle.Render(fmt.Sprintf("built %s", buildTime)) + "\n\n" +
		mutedStyle.Render("Loading...")
	view := boxStyle.Render(content)
	_, _ = fmt.Fprintln(t.Out, view)
	return &Splash{out: t.Out, tty: t.Interactive, height: strings.Count(view, "\n") + 1}
}

// Hide erases the banner on a terminal. It is safe to call more than once.
func (s *Splash) Hide() {
	if s == nil || s.hidden {
		return
	}
	s.hidden = true
	if s.tty {
		// cursor up, then clear to end of screen
		_, _ = fmt.Fprintf(s.out, "\x1b[%dA\x1b[J", s.height)
	}
}
