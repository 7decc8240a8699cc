package ui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Kind is the severity of a message box.
type Kind int

const (
	KindInfo Kind = iota
	KindWarning
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindWarning:
		return "Warning"
	case KindError:
		return "Error"
	default:
		return "Information"
	}
}

// MessageBox renders a titled markdown message.
func MessageBox(t Terminal, kind Kind, title, body string) {
	_, _ = fmt.Fprint(t.Out, RenderMessage(kind, title, body, t.Interactive))
}

// RenderMessage returns the rendered message. Without a terminal the
// markdown is rendered with the plain "notty" style.
func RenderMessage(kind Kind, title, body string, tty bool) string {
	md := fmt.Sprintf("## %s: %s\n\n%s\n", kind, title, body)

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(80)}
	if tty {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

// Bell rings the terminal bell.
func Bell(t Terminal) {
	_, _ = fmt.Fprint(t.Out, "\a")
}
