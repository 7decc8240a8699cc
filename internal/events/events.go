// Package events is the in-process notification bus between the bootstrap
// and the plugins it hosts.
package events

import (
	"fmt"
	"sync"
)

// Type identifies an event.
type Type int

const (
	AppStartupDone Type = iota + 1
	AppCmdLine
	CompilerFinished
	WorkspaceChanged
)

// String returns the event type name.
func (t Type) String() string {
	switch t {
	case AppStartupDone:
		return "app-startup-done"
	case AppCmdLine:
		return "app-cmdline"
	case CompilerFinished:
		return "compiler-finished"
	case WorkspaceChanged:
		return "workspace-changed"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// Event carries the payload of one notification. Only the fields relevant
// to Type are set.
type Event struct {
	Type Type

	// CmdLine and CWD accompany AppCmdLine.
	CmdLine string
	CWD     string

	// Plugin and ExitCode accompany CompilerFinished.
	Plugin   string
	ExitCode int
}

// Func handles one event.
type Func func(Event)

// Bus delivers events synchronously, in subscription order.
type Bus struct {
	mu   sync.RWMutex
	subs map[Type][]Func
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Type][]Func)}
}

// Subscribe registers fn for events of type t.
func (b *Bus) Subscribe(t Type, fn Func) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[t] = append(b.subs[t], fn)
}

// Publish calls every subscriber of e.Type.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := append([]Func(nil), b.subs[e.Type]...)
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(e)
	}
}
