package ipc

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu          sync.Mutex
	messages    []Message
	disconnects int
	done        chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{done: make(chan struct{}, 8)}
}

func (h *recordingHandler) Execute(_ context.Context, msg Message) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
	return true
}

func (h *recordingHandler) Disconnect(context.Context) {
	h.mu.Lock()
	h.disconnects++
	h.mu.Unlock()
	h.done <- struct{}{}
}

func (h *recordingHandler) snapshot() ([]Message, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Message(nil), h.messages...), h.disconnects
}

// shortDir keeps socket paths under the unix socket length limit.
func shortDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ipc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

func TestServer_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	path := SocketPath(shortDir(t), "codehost", "tester")
	handler := newRecordingHandler()
	srv, err := Listen(ctx, path, Topic, handler)
	require.NoError(t, err)

	client, err := Dial(ctx, path, Topic)
	require.NoError(t, err)

	ok, err := client.Execute(ctx, CmdLine{Args: "main.go", CWD: "/work"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.Execute(ctx, Raise{})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.Execute(ctx, rawMessage(`[Bogus]`))
	require.NoError(t, err)
	assert.False(t, ok, "unknown messages are not handled")

	require.NoError(t, client.Disconnect(ctx))

	select {
	case <-handler.done:
	case <-ctx.Done():
		t.Fatal("disconnect was not reported")
	}

	messages, disconnects := handler.snapshot()
	assert.Equal(t, []Message{CmdLine{Args: "main.go", CWD: "/work"}, Raise{}}, messages)
	assert.Equal(t, 1, disconnects)

	require.NoError(t, srv.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "socket should be removed on close")
}

func TestDial_WrongTopicIsRefused(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	path := SocketPath(shortDir(t), "codehost", "tester")
	srv, err := Listen(ctx, path, Topic, newRecordingHandler())
	require.NoError(t, err)
	defer srv.Close()

	_, err = Dial(ctx, path, "SomethingElse")
	require.ErrorIs(t, err, ErrTopic)
}

func TestDial_NoServer(t *testing.T) {
	ctx := context.Background()
	_, err := Dial(ctx, filepath.Join(shortDir(t), "missing.ipc"), Topic)
	require.Error(t, err)
}

func TestListen_ReplacesStaleSocket(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	path := SocketPath(shortDir(t), "codehost", "tester")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	srv, err := Listen(ctx, path, Topic, newRecordingHandler())
	require.NoError(t, err)
	defer srv.Close()

	client, err := Dial(ctx, path, Topic)
	require.NoError(t, err)
	require.NoError(t, client.Disconnect(ctx))
}

func TestListen_RefusesLiveSocket(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	path := SocketPath(shortDir(t), "codehost", "tester")
	srv, err := Listen(ctx, path, Topic, newRecordingHandler())
	require.NoError(t, err)
	defer srv.Close()

	_, err = Listen(ctx, path, Topic, newRecordingHandler())
	require.Error(t, err)
}

type rawMessage string

func (m rawMessage) Encode() string { return string(m) }
