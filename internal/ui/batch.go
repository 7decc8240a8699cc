package ui

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// maxBatchLines bounds the output kept by the batch window.
const maxBatchLines = 1000

// BatchOptions configures a batch window.
type BatchOptions struct {
	Title string
	// Stop is called when the user confirms stopping a running build. The
	// window then waits for Finished.
	Stop func() error
	// OnClose runs once, when the window has closed for any reason.
	OnClose func()
}

type (
	lineMsg     string
	finishedMsg struct {
		code     int
		keepOpen bool
	}
	closeMsg struct{}
)

type batchModel struct {
	opts       BatchOptions
	lines      []string
	height     int
	running    bool
	stopping   bool
	code       int
	confirming bool
}

func newBatchModel(opts BatchOptions) batchModel {
	return batchModel{opts: opts, running: true, height: 20}
}

func (m batchModel) Init() tea.Cmd { return nil }

func (m batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	case lineMsg:
		m.lines = append(m.lines, string(msg))
		if len(m.lines) > maxBatchLines {
			m.lines = m.lines[len(m.lines)-maxBatchLines:]
		}
	case finishedMsg:
		m.running = false
		m.confirming = false
		m.code = msg.code
		if !msg.keepOpen {
			return m, tea.Quit
		}
	case closeMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		k := msg.String()
		if m.confirming {
			switch k {
			case "y", "Y":
				// the window stays until the stopped build reports back
				m.confirming = false
				m.stopping = true
				if m.opts.Stop != nil {
					_ = m.opts.Stop()
				}
			case "n", "N", "esc":
				m.confirming = false
			}
			return m, nil
		}
		switch k {
		case "q", "esc", "ctrl+c":
			if m.running {
				m.confirming = true
				return m, nil
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m batchModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.opts.Title) + "\n\n")
	start := max(len(m.lines)-m.height, 0)
	for _, l := range m.lines[start:] {
		b.WriteString(l + "\n")
	}
	b.WriteString("\n")
	switch {
	case m.confirming:
		b.WriteString(errStyle.Render("Build still running. Do you want stop the build process? (y/n)"))
	case m.stopping && m.running:
		b.WriteString(mutedStyle.Render("stopping..."))
	case m.running:
		b.WriteString(mutedStyle.Render("building... q to stop"))
	case m.code == 0:
		b.WriteString(okStyle.Render("Build finished.") + " " + mutedStyle.Render("q to close"))
	default:
		b.WriteString(errStyle.Render(fmt.Sprintf("Build failed (status %d).", m.code)) + " " + mutedStyle.Render("q to close"))
	}
	return boxStyle.Render(b.String()) + "\n"
}

// BatchWindow shows the output of a batch build.
type BatchWindow struct {
	term    Terminal
	opts    BatchOptions
	program *tea.Program

	mu       sync.Mutex
	finished bool
	done     chan struct{}
	once     sync.Once
}

// OpenBatchWindow shows the window. On a terminal it runs a bubbletea
// program until the window closes.
func OpenBatchWindow(ctx context.Context, t Terminal, opts BatchOptions) *BatchWindow {
	w := &BatchWindow{term: t, opts: opts, done: make(chan struct{})}
	if !t.Interactive {
		_, _ = fmt.Fprintln(t.Out, opts.Title)
		return w
	}

	w.program = tea.NewProgram(newBatchModel(opts),
		tea.WithContext(ctx), tea.WithInput(t.In), tea.WithOutput(t.Out))
	go func() {
		_, _ = w.program.Run()
		w.markClosed()
	}()
	return w
}

// Append adds one line of build output.
func (w *BatchWindow) Append(line string) {
	if w.program != nil {
		w.program.Send(lineMsg(line))
		return
	}
	_, _ = fmt.Fprintln(w.term.Out, line)
}

// Finished reports the end of the build. The window closes unless
// keepOpen is set, in which case it waits for the user.
func (w *BatchWindow) Finished(code int, keepOpen bool) {
	w.mu.Lock()
	already := w.finished
	w.finished = true
	w.mu.Unlock()
	if already {
		return
	}

	if w.program != nil {
		w.program.Send(finishedMsg{code: code, keepOpen: keepOpen})
		return
	}
	_, _ = fmt.Fprintf(w.term.Out, "Build finished with status %d.\n", code)
	if !keepOpen {
		w.markClosed()
		return
	}
	_, _ = fmt.Fprint(w.term.Out, "Press Enter to close.")
	go func() {
		_, _ = bufio.NewReader(w.term.In).ReadString('\n')
		w.markClosed()
	}()
}

// Close closes the window.
func (w *BatchWindow) Close() {
	if w.program != nil {
		w.program.Send(closeMsg{})
		return
	}
	w.markClosed()
}

// Done is closed once the window has closed.
func (w *BatchWindow) Done() <-chan struct{} {
	return w.done
}

func (w *BatchWindow) markClosed() {
	w.once.Do(func() {
		close(w.done)
		if w.opts.OnClose != nil {
			w.opts.OnClose()
		}
	})
}
