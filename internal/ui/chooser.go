package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type chooserModel struct {
	title    string
	options  []string
	cursor   int
	chosen   int
	canceled bool
}

func (m chooserModel) Init() tea.Cmd { return nil }

func (m chooserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = m.cursor
		return m, tea.Quit
	case "esc", "q", "ctrl+c":
		m.canceled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m chooserModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n\n")
	for i, o := range m.options {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "+o) + "\n")
		} else {
			b.WriteString("  " + o + "\n")
		}
	}
	b.WriteString("\n" + mutedStyle.Render("enter select, esc cancel"))
	return boxStyle.Render(b.String()) + "\n"
}

// Chooser asks the user to pick one option.
type Chooser struct {
	term Terminal
}

// NewChooser creates a chooser on t.
func NewChooser(t Terminal) *Chooser {
	return &Chooser{term: t}
}

// Choose returns the picked option. ok is false when the user cancelled.
func (c *Chooser) Choose(ctx context.Context, title string, options []string) (string, bool, error) {
	if len(options) == 0 {
		return "", false, errors.New("ui: nothing to choose from")
	}
	if !c.term.Interactive {
		return c.choosePlain(title, options)
	}

	m := chooserModel{title: title, options: options, chosen: -1}
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(c.term.In), tea.WithOutput(c.term.Out))
	final, err := p.Run()
	if err != nil {
		return "", false, err
	}
	fm := final.(chooserModel)
	if fm.canceled || fm.chosen < 0 {
		return "", false, nil
	}
	return options[fm.chosen], true, nil
}

// choosePlain prints a numbered list and reads the answer from a line of
// input. An empty line or end of input cancels.
func (c *Chooser) choosePlain(title string, options []string) (string, bool, error) {
	_, _ = fmt.Fprintln(c.term.Out, title)
	for i, o := range options {
		_, _ = fmt.Fprintf(c.term.Out, "  %d) %s\n", i+1, o)
	}
	_, _ = fmt.Fprint(c.term.Out, "Choice: ")

	// a final line without newline still counts
	line, _ := bufio.NewReader(c.term.In).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false, nil
	}
	if n, convErr := strconv.Atoi(line); convErr == nil && n >= 1 && n <= len(options) {
		return options[n-1], true, nil
	}
	for _, o := range options {
		if o == line {
			return o, true, nil
		}
	}
	return "", false, fmt.Errorf("ui: invalid choice %q", line)
}
