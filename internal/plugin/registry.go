package plugin

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/specialistvlad/codehost/internal/compiler"
	"github.com/specialistvlad/codehost/internal/config"
	"github.com/specialistvlad/codehost/internal/debugger"
	"github.com/specialistvlad/codehost/internal/events"
)

// Module is the interface every plugin module implements to be registered.
type Module interface {
	Register(r *Registry)
}

// Host is what the bootstrap offers to plugins while they register.
type Host struct {
	Bus      *events.Bus
	Projects compiler.ProjectSource
	Settings *config.Settings
	// Output receives compiler output, one line per call.
	Output func(line string)
	Logger *slog.Logger
}

type entry[T any] struct {
	name   string
	plugin T
}

// Registry holds the compiler and debugger plugins of one App.
type Registry struct {
	mu        sync.RWMutex
	host      Host
	safeMode  bool
	compilers []entry[compiler.Plugin]
	debuggers []entry[debugger.Plugin]
}

// New creates an empty registry.
func New(host Host) *Registry {
	if host.Logger == nil {
		host.Logger = slog.Default()
	}
	if host.Output == nil {
		host.Output = func(string) {}
	}
	return &Registry{host: host}
}

// Host returns the services available to plugins.
func (r *Registry) Host() Host {
	return r.host
}

// Load registers every module.
func (r *Registry) Load(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
	r.host.Logger.Debug("All plugin modules registered.", "count", len(modules))
}

// RegisterCompiler registers a compiler plugin.
func (r *Registry) RegisterCompiler(name string, p compiler.Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.compilers {
		if e.name == name {
			panic(fmt.Sprintf("compiler plugin with name '%s' already registered", name))
		}
	}
	r.host.Logger.Debug("Registering compiler plugin.", "name", name)
	r.compilers = append(r.compilers, entry[compiler.Plugin]{name: name, plugin: p})
}

// RegisterDebugger registers a debugger plugin under its settings name.
func (r *Registry) RegisterDebugger(p debugger.Plugin) {
	name := p.SettingsName()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.debuggers {
		if e.name == name {
			panic(fmt.Sprintf("debugger plugin with name '%s' already registered", name))
		}
	}
	r.host.Logger.Debug("Registering debugger plugin.", "name", name)
	r.debuggers = append(r.debuggers, entry[debugger.Plugin]{name: name, plugin: p})
}

// SetSafeMode hides (true) or reveals every plugin.
func (r *Registry) SetSafeMode(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.safeMode = on
}

// SafeMode reports whether plugins are hidden.
func (r *Registry) SafeMode() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.safeMode
}

// FirstCompiler returns the first registered compiler, or nil.
func (r *Registry) FirstCompiler() compiler.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.safeMode || len(r.compilers) == 0 {
		return nil
	}
	return r.compilers[0].plugin
}

// Compilers returns the names of the visible compilers.
func (r *Registry) Compilers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.safeMode {
		return nil
	}
	names := make([]string, 0, len(r.compilers))
	for _, e := range r.compilers {
		names = append(names, e.name)
	}
	return names
}

// Debuggers returns a manager over the visible debugger plugins.
func (r *Registry) Debuggers() *debugger.Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.safeMode {
		return debugger.NewManager()
	}
	plugins := make([]debugger.Plugin, 0, len(r.debuggers))
	for _, e := range r.debuggers {
		plugins = append(plugins, e.plugin)
	}
	return debugger.NewManager(plugins...)
}
