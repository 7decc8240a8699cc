package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain(in string) (Terminal, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return Terminal{In: strings.NewReader(in), Out: out}, out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSplash(t *testing.T) {
	t.Parallel()

	term, out := plain("")
	s := ShowSplash(term, "codehost", "1.2.0", "2026-01-02")
	assert.Contains(t, out.String(), "codehost")
	assert.Contains(t, out.String(), "version 1.2.0")

	n := out.Len()
	s.Hide()
	s.Hide()
	assert.Equal(t, n, out.Len(), "no escape codes without a terminal")

	tty := &Splash{out: out, tty: true, height: 3}
	tty.Hide()
	assert.True(t, strings.HasSuffix(out.String(), "\x1b[3A\x1b[J"))
}

func TestRenderMessage(t *testing.T) {
	t.Parallel()

	got := RenderMessage(KindError, "Startup", "Process exited with status code 2.", false)
	assert.Contains(t, got, "Error: Startup")
	assert.Contains(t, got, "Process exited with status code 2.")
}

func TestChooser_Plain(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		want    string
		wantOK  bool
		wantErr bool
	}{
		{name: "by number", input: "2\n", want: "Release", wantOK: true},
		{name: "by name without newline", input: "Debug", want: "Debug", wantOK: true},
		{name: "empty cancels", input: "\n"},
		{name: "eof cancels", input: ""},
		{name: "out of range", input: "9\n", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			term, out := plain(tc.input)
			got, ok, err := NewChooser(term).Choose(context.Background(), "Select target", []string{"Debug", "Release"})
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
			assert.Contains(t, out.String(), "2) Release")
		})
	}

	_, _, err := NewChooser(Terminal{}).Choose(context.Background(), "x", nil)
	require.Error(t, err)
}

func TestChooserModel(t *testing.T) {
	t.Parallel()

	var m tea.Model = chooserModel{title: "t", options: []string{"a", "b"}, chosen: -1}
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	m, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.(chooserModel).chosen)
	assert.Contains(t, m.View(), "> b")

	m, _ = chooserModel{options: []string{"a"}, chosen: -1}.Update(key("esc"))
	assert.True(t, m.(chooserModel).canceled)
}

func TestBatchModel_StopWhileRunning(t *testing.T) {
	t.Parallel()

	stopped := false
	var m tea.Model = newBatchModel(BatchOptions{Title: "Building 'x'", Stop: func() error { stopped = true; return nil }})
	m, _ = m.Update(lineMsg("compiling"))
	m, cmd := m.Update(key("q"))
	assert.Nil(t, cmd)
	assert.True(t, m.(batchModel).confirming)
	assert.Contains(t, m.View(), "Do you want stop the build process?")

	m, _ = m.Update(key("n"))
	assert.False(t, m.(batchModel).confirming)
	assert.False(t, stopped)

	m, _ = m.Update(key("q"))
	m, cmd = m.Update(key("y"))
	assert.True(t, stopped)
	assert.Nil(t, cmd, "the window waits for the stopped build")
	assert.Contains(t, m.View(), "stopping...")

	_, cmd = m.Update(finishedMsg{code: 1})
	require.NotNil(t, cmd)
}

func TestBatchModel_Finished(t *testing.T) {
	t.Parallel()

	var m tea.Model = newBatchModel(BatchOptions{})
	m, cmd := m.Update(finishedMsg{code: 2, keepOpen: true})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "status 2")

	_, cmd = m.Update(key("q"))
	require.NotNil(t, cmd)

	_, cmd = newBatchModel(BatchOptions{}).Update(finishedMsg{code: 0})
	require.NotNil(t, cmd)
}

func TestBatchWindow_Plain(t *testing.T) {
	t.Parallel()

	closed := 0
	term, out := plain("")
	w := OpenBatchWindow(context.Background(), term, BatchOptions{Title: "Building 'hello.chproj' (target 'Debug')", OnClose: func() { closed++ }})
	w.Append("gcc -c main.c")
	w.Finished(0, false)
	w.Finished(0, false)
	w.Close()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("window not closed")
	}
	assert.Equal(t, 1, closed)
	assert.Contains(t, out.String(), "gcc -c main.c")
	assert.Contains(t, out.String(), "Build finished with status 0.")
}

func TestBatchWindow_PlainKeepOpenWaitsForEnter(t *testing.T) {
	t.Parallel()

	term, _ := plain("\n")
	w := OpenBatchWindow(context.Background(), term, BatchOptions{Title: "t"})
	w.Finished(1, true)
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("window not closed after enter")
	}
}
