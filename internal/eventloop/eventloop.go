// Package eventloop provides the single goroutine on which all frame,
// editor and project state is mutated. Other goroutines (IPC connections,
// compiler output readers) hand work to it with Post.
package eventloop

import (
	"context"
	"errors"
	"sync"
)

// ErrQuit is returned by Run after Quit was called.
var ErrQuit = errors.New("eventloop: quit")

// Loop is an unbounded FIFO of callbacks.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	quit    chan struct{}
	quitted bool
}

// New creates an idle loop.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
}

// Post queues fn. It never blocks; callbacks posted before Run starts are
// kept until it does.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// CallAfter queues fn behind everything already posted, so it runs once
// the current callback and its pending followers have finished.
func (l *Loop) CallAfter(fn func()) {
	l.Post(fn)
}

// Quit makes Run return after the callback currently executing.
func (l *Loop) Quit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.quitted {
		l.quitted = true
		close(l.quit)
	}
}

// Done is closed once Quit has been called.
func (l *Loop) Done() <-chan struct{} {
	return l.quit
}

// Run executes callbacks until Quit is called or ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for {
			fn := l.next()
			if fn == nil {
				break
			}
			fn()
			select {
			case <-l.quit:
				return ErrQuit
			default:
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.quit:
			return ErrQuit
		case <-l.wake:
		}
	}
}

// Drain runs every queued callback on the calling goroutine. It is used
// during startup, before Run, and in tests.
func (l *Loop) Drain() {
	for fn := l.next(); fn != nil; fn = l.next() {
		fn()
	}
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn
}
