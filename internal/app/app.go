package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/codehost/internal/config"
	"github.com/specialistvlad/codehost/internal/eventloop"
	"github.com/specialistvlad/codehost/internal/events"
	"github.com/specialistvlad/codehost/internal/instance"
	"github.com/specialistvlad/codehost/internal/ipc"
	"github.com/specialistvlad/codehost/internal/locale"
	"github.com/specialistvlad/codehost/internal/personality"
	"github.com/specialistvlad/codehost/internal/plugin"
	"github.com/specialistvlad/codehost/internal/ui"
	"github.com/specialistvlad/codehost/internal/uservars"
	"github.com/specialistvlad/codehost/internal/workbench"
)

// Store reads and writes the persistent files of the application.
type Store interface {
	config.Loader
	config.Saver
}

// Deps holds the collaborators of an App. Zero fields get process
// defaults in NewApp.
type Deps struct {
	Store    Store
	Terminal ui.Terminal
	// ParseCommandLine turns a command line forwarded over IPC into a
	// Config. The default only collects positional documents.
	ParseCommandLine func(cmdline string) (*Config, error)
	// Choose asks the user to pick among options.
	Choose personality.Chooser
	Getenv func(string) string
	// ExecutablePath locates the shared data folder.
	ExecutablePath string
	// RuntimeDir holds the IPC socket and the instance lock.
	RuntimeDir string
	// WorkDir is the working directory documents are resolved against.
	// Log files are written there too.
	WorkDir string
	Modules []plugin.Module
	Now     func() time.Time
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	cfg    *Config
	deps   Deps
	logs   *logSinks
	logger *slog.Logger
	debug  *slog.Logger

	userDataDir   string
	dataDir       string
	crashReport   string
	personalities *personality.Manager
	settings      *config.Settings
	vars          *uservars.Manager
	locale        *locale.Locale
	bus           *events.Bus
	loop          *eventloop.Loop
	plugins       *plugin.Registry
	checker       *instance.Checker
	server        *ipc.Server
	splash        *ui.Splash
	frame         *workbench.Frame

	// Mutated on the event loop, or on the startup goroutine before the
	// loop runs.
	delayed      []string
	autoFile     string
	hasProject   bool
	hasWorkspace bool
	batch        bool
	dbgAttach    string
	dbgConfig    string

	batchWindow   atomic.Pointer[ui.BatchWindow]
	batchDone     bool
	batchExitCode int
}

// NewApp is the constructor for the main application. It returns an App
// with its own isolated loggers; nothing else is touched until Run.
func NewApp(outW io.Writer, cfg *Config, deps Deps) (*App, error) {
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	if deps.ExecutablePath == "" {
		if exe, err := os.Executable(); err == nil {
			deps.ExecutablePath = exe
		}
	}
	if deps.RuntimeDir == "" {
		deps.RuntimeDir = os.TempDir()
	}
	if deps.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("working directory: %w", err)
		}
		deps.WorkDir = wd
	}
	if deps.Terminal.Out == nil {
		deps.Terminal = ui.StdTerminal()
	}
	if deps.Choose == nil {
		deps.Choose = ui.NewChooser(deps.Terminal).Choose
	}
	if deps.ParseCommandLine == nil {
		deps.ParseCommandLine = documentsOnly
	}
	if deps.Modules == nil {
		deps.Modules = coreModules
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("app: no settings store")
	}

	logs, err := newLogSinks(cfg, outW, deps.WorkDir)
	if err != nil {
		return nil, err
	}
	logs.app.Debug("Logger configured successfully.")

	return &App{
		cfg:    cfg,
		deps:   deps,
		logs:   logs,
		logger: logs.app,
		debug:  logs.debug,
		bus:    events.NewBus(),
		loop:   eventloop.New(),
	}, nil
}

func documentsOnly(cmdline string) (*Config, error) {
	args, err := ipc.SplitArgs(cmdline)
	if err != nil {
		return nil, err
	}
	return NewConfig(Config{Documents: args, Args: args})
}

// Frame returns the main window, or nil before it exists.
func (a *App) Frame() *workbench.Frame {
	return a.frame
}

// Plugins returns the plugin registry, or nil before it exists.
func (a *App) Plugins() *plugin.Registry {
	return a.plugins
}

// Bus returns the application event bus.
func (a *App) Bus() *events.Bus {
	return a.bus
}

// SocketPath returns the IPC endpoint of the current user.
func (a *App) SocketPath() string {
	return ipc.SocketPath(a.deps.RuntimeDir, Name, UserName(a.deps.Getenv))
}

// Quit asks the event loop to stop.
func (a *App) Quit() {
	a.loop.Quit()
}

// projectSource lets plugins registered before the frame exists reach
// its projects later.
type projectSource struct{ a *App }

func (s projectSource) ActiveProject() *config.Project {
	if s.a.frame == nil {
		return nil
	}
	return s.a.frame.Projects().ActiveProject()
}

func (s projectSource) Projects() []*config.Project {
	if s.a.frame == nil {
		return nil
	}
	return s.a.frame.Projects().Projects()
}

// compilerOutput feeds the batch window, or the debug log when there is
// none.
func (a *App) compilerOutput(line string) {
	if w := a.batchWindow.Load(); w != nil {
		w.Append(line)
		return
	}
	a.debug.Debug(line)
}
