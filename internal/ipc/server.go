package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/specialistvlad/codehost/internal/ctxlog"
	"vawter.tech/stopper"
)

// Topic is the only topic the server accepts connections for.
const Topic = "CodehostIPCServer"

// ErrTopic is returned when the server refuses the requested topic.
var ErrTopic = errors.New("ipc: topic refused")

// Handler receives decoded messages. Execute reports whether the message
// was acted on. Disconnect is called once per connection when the client
// goes away.
type Handler interface {
	Execute(ctx context.Context, msg Message) bool
	Disconnect(ctx context.Context)
}

// SocketPath returns the per-user socket path in dir.
func SocketPath(dir, app, user string) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.ipc", app, user))
}

// Server accepts connections on a unix socket and feeds their execute
// frames to a Handler.
type Server struct {
	path    string
	topic   string
	handler Handler
	ln      net.Listener
	sctx    *stopper.Context

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// Listen creates the socket and starts accepting connections. A stale
// socket left by a crashed instance is replaced.
func Listen(ctx context.Context, path, topic string, handler Handler) (*Server, error) {
	logger := ctxlog.DebugFromContext(ctx)

	if _, err := os.Stat(path); err == nil {
		if conn, err := net.DialTimeout("unix", path, 200*time.Millisecond); err == nil {
			_ = conn.Close()
			return nil, fmt.Errorf("ipc: %s already served", path)
		}
		logger.Debug("Removing stale IPC socket.", "path", path)
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("ipc: remove stale socket: %w", err)
		}
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("ipc: restrict socket: %w", err)
	}

	s := &Server{
		path:    path,
		topic:   topic,
		handler: handler,
		ln:      ln,
		sctx:    stopper.WithContext(ctx),
		conns:   make(map[net.Conn]struct{}),
	}

	s.sctx.Go(func(sctx *stopper.Context) error {
		<-sctx.Stopping()
		_ = s.ln.Close()
		s.mu.Lock()
		defer s.mu.Unlock()
		for c := range s.conns {
			_ = c.Close()
		}
		return nil
	})
	s.sctx.Go(s.accept)

	logger.Debug("IPC server listening.", "path", path, "topic", topic)
	return s, nil
}

// Path returns the socket path.
func (s *Server) Path() string { return s.path }

// Close stops accepting, closes open connections, waits for the
// connection goroutines and removes the socket file.
func (s *Server) Close() error {
	s.sctx.Stop(500 * time.Millisecond)
	err := s.sctx.Wait()
	if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}

func (s *Server) accept(sctx *stopper.Context) error {
	logger := ctxlog.DebugFromContext(sctx)
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if sctx.IsStopping() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Warn("IPC accept failed.", "error", err)
			continue
		}
		if !s.track(sctx, conn) {
			continue
		}
		sctx.Go(func(sctx *stopper.Context) error {
			defer s.untrack(conn)
			defer conn.Close()
			s.serve(sctx, conn)
			return nil
		})
	}
}

// track registers conn for shutdown; connections accepted while stopping
// are closed straight away.
func (s *Server) track(sctx *stopper.Context, conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sctx.IsStopping() {
		_ = conn.Close()
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

// serve runs one connection: a connect frame, any number of execute
// frames, then a disconnect frame or EOF.
func (s *Server) serve(ctx context.Context, conn net.Conn) {
	logger := ctxlog.FromContext(ctx)
	debug := ctxlog.DebugFromContext(ctx)

	t, payload, err := readFrame(conn)
	if err != nil {
		debug.Debug("IPC connection dropped before connect.", "error", err)
		return
	}
	if t != FrameConnect || string(payload) != s.topic {
		debug.Debug("IPC connection refused.", "frame", t, "topic", string(payload))
		_ = writeFrame(conn, FrameAck, ackPayload(false))
		return
	}
	if err := writeFrame(conn, FrameAck, ackPayload(true)); err != nil {
		return
	}

	defer s.handler.Disconnect(ctx)
	for {
		t, payload, err := readFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				debug.Debug("IPC connection read failed.", "error", err)
			}
			return
		}
		switch t {
		case FrameExecute:
			handled := false
			msg, err := Decode(string(payload))
			if err != nil {
				logger.Warn(fmt.Sprintf("IPC topic %s not handled.", string(payload)))
			} else {
				handled = s.handler.Execute(ctx, msg)
			}
			if err := writeFrame(conn, FrameAck, ackPayload(handled)); err != nil {
				return
			}
		case FrameDisconnect:
			return
		default:
			debug.Debug("Unexpected IPC frame.", "frame", t)
			return
		}
	}
}
