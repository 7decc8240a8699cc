package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/specialistvlad/codehost/internal/ctxlog"
	"github.com/specialistvlad/codehost/internal/eventloop"
	"github.com/specialistvlad/codehost/internal/events"
	"github.com/specialistvlad/codehost/internal/fsutil"
	"github.com/specialistvlad/codehost/internal/instance"
	"github.com/specialistvlad/codehost/internal/ipc"
	"github.com/specialistvlad/codehost/internal/locale"
	"github.com/specialistvlad/codehost/internal/personality"
	"github.com/specialistvlad/codehost/internal/plugin"
	"github.com/specialistvlad/codehost/internal/scripting"
	"github.com/specialistvlad/codehost/internal/ui"
	"github.com/specialistvlad/codehost/internal/uservars"
	"github.com/specialistvlad/codehost/internal/workbench"
)

const (
	// forwardTimeout bounds one conversation with a running instance.
	forwardTimeout = 2 * time.Second
	// serverWait is how long a second instance waits for the first one's
	// IPC endpoint once the instance lock is known to be held.
	serverWait = 2 * time.Second
)

const anotherInstanceMessage = "Another program instance is already running.\n" +
	Name + " is currently configured to only allow one running instance.\n\n" +
	"You can access this Setting under the menu item 'Environment'."

// Run executes the bootstrap and returns the process exit code. It blocks
// until the main window closes, a batch build ends or ctx is cancelled.
func (a *App) Run(ctx context.Context) (code int, err error) {
	defer a.shutdown()
	ctx = ctxlog.WithLogger(ctx, a.logger)
	ctx = ctxlog.WithDebugLogger(ctx, a.debug)

	a.logger.Info(fmt.Sprintf("Starting %s %s %s", Name, Version, BuildTimestamp))
	if !a.cfg.NoCrashHandler {
		a.crashReport = CrashReportName(a.deps.Now())
	}
	defer a.recoverCrash(&code, &err)

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) (int, error) {
	if err := a.setupPersonality(ctx); err != nil {
		return 1, err
	}
	if err := a.loadConfig(ctx); err != nil {
		return 1, err
	}
	a.initPlugins()

	// a batch op alone does not make a batch run; the documents decide
	// that in the second phase
	batchOp := a.cfg.HasBatchOp()
	if !batchOp && a.cfg.Script == "" {
		a.checkDataPath()
	}
	a.initLocale(ctx)

	ipcEnabled := !a.cfg.NoIPC && !batchOp
	if ipcEnabled && a.settings.Environment.UseIPC && a.forward(ctx) {
		a.logger.Info("Ending application because another instance has been detected!")
		return 0, nil
	}

	if a.settings.Environment.SingleInstance && !a.cfg.MultipleInstance {
		code, stop := a.checkSingleInstance(ctx, ipcEnabled && a.settings.Environment.UseIPC)
		if stop {
			return code, nil
		}
	}

	if ipcEnabled {
		a.startServer(ctx)
	}

	if !batchOp && a.cfg.Script == "" && !a.cfg.NoSplash && a.settings.Environment.ShowSplash {
		a.splash = ui.ShowSplash(a.deps.Terminal, Name, Version, BuildTimestamp)
	}

	a.frame = workbench.NewFrame(ctx, a.deps.Store, a.userDataDir, batchOp || a.cfg.Script != "")

	a.parseDocuments(a.cfg, a.deps.WorkDir)
	a.batch = batchOp && (a.hasProject || a.hasWorkspace)
	for _, opt := range a.cfg.UnknownOptions {
		a.logger.Warn("Unknown command-line option.", "option", opt)
	}
	if len(a.cfg.Documents) == 0 && !a.settings.Environment.BlankWorkspace {
		if err := a.frame.Projects().LoadDefaultWorkspace(ctx); err != nil {
			a.logger.Warn("Cannot load the default workspace.", "error", err)
		}
	}

	switch {
	case a.batch:
		return a.runBatch(ctx)
	case a.cfg.Script != "":
		return a.runScript(ctx)
	default:
		return a.runInteractive(ctx)
	}
}

// setupPersonality resolves the user data folder and selects the
// personality, then freezes the selection.
func (a *App) setupPersonality(ctx context.Context) error {
	dir := a.cfg.UserDataDir
	if dir == "" {
		dir = DefaultUserDataDir()
	}
	dir, err := SetUserDataFolder(dir)
	if err != nil {
		return err
	}
	a.userDataDir = dir
	a.debug.Debug("User data folder set.", "path", dir)

	a.personalities = personality.NewManager(dir)
	defer a.personalities.MarkAsReady()

	switch name := a.cfg.Personality; {
	case name == "":
	case strings.EqualFold(name, personality.Ask):
		if err := a.personalities.AskUser(ctx, a.deps.Choose); err != nil {
			a.logger.Warn("Cannot choose a personality.", "error", err)
		}
	default:
		if err := a.personalities.SetPersonality(name, true); err != nil {
			a.logger.Warn("Cannot select personality.", "personality", name, "error", err)
		}
	}
	a.debug.Debug("Personality selected.", "personality", a.personalities.Current())
	return nil
}

func (a *App) loadConfig(ctx context.Context) error {
	a.dataDir = DataPath(a.cfg.Prefix, a.deps.Getenv, a.deps.ExecutablePath)
	a.debug.Debug("Data path resolved.", "path", a.dataDir)

	settings, err := a.deps.Store.LoadSettings(ctx, a.personalities.SettingsPath())
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settings.App.DataPath = a.dataDir
	a.settings = settings

	a.vars = uservars.NewManager(settings.UserVarSets, settings.ActiveUserVarSet)
	if err := a.vars.ParseCommandLine(a.cfg.UserVarSet, a.cfg.UserVarDefs); err != nil {
		a.logger.Warn("Ignoring invalid user variable definitions.", "error", err)
	}
	return nil
}

func (a *App) initPlugins() {
	a.plugins = plugin.New(plugin.Host{
		Bus:      a.bus,
		Projects: projectSource{a},
		Settings: a.settings,
		Output:   a.compilerOutput,
		Logger:   a.logger,
	})
	a.plugins.Load(a.deps.Modules...)
	a.plugins.SetSafeMode(a.cfg.SafeMode)
	if a.cfg.SafeMode {
		a.logger.Warn("Safe mode: plugins are disabled.")
	}
}

func (a *App) checkDataPath() {
	if fsutil.DirExists(a.dataDir) {
		return
	}
	a.logger.Warn(fmt.Sprintf("Cannot find resources...\n"+
		"%s was configured to be installed in '%s'.\n"+
		"Please use the command-line switch '--prefix' or set the %s environment variable "+
		"to point where %s is installed,\nor try re-installing the application...",
		Name, a.dataDir, DataDirEnv, Name))
}

func (a *App) initLocale(ctx context.Context) {
	l, err := locale.Init(ctx, a.dataDir, a.settings.Locale, a.deps.Getenv)
	if err != nil {
		a.logger.Warn("Cannot initialise the locale.", "error", err)
		return
	}
	a.locale = l
}

// forward hands the command line to a running instance. It reports
// whether an instance answered.
func (a *App) forward(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, forwardTimeout)
	defer cancel()

	client, err := ipc.Dial(ctx, a.SocketPath(), ipc.Topic)
	if err != nil {
		a.debug.Debug("No running instance found.", "error", err)
		return false
	}
	if len(a.cfg.Args) > 0 {
		msg := ipc.CmdLine{Args: ipc.JoinArgs(a.cfg.Args), CWD: a.deps.WorkDir}
		if _, err := client.Execute(ctx, msg); err != nil {
			a.logger.Warn("Cannot forward the command line.", "error", err)
		}
	}
	if a.settings.Environment.RaiseViaIPC {
		if _, err := client.Execute(ctx, ipc.Raise{}); err != nil {
			a.debug.Debug("Cannot raise the running instance.", "error", err)
		}
	}
	if err := client.Disconnect(ctx); err != nil {
		a.debug.Debug("IPC disconnect failed.", "error", err)
	}
	return true
}

// checkSingleInstance takes the per-user lock. stop is set when this
// process must end with code.
func (a *App) checkSingleInstance(ctx context.Context, canForward bool) (code int, stop bool) {
	a.checker = instance.New(Name+"-"+UserName(a.deps.Getenv), a.deps.RuntimeDir)
	running, err := a.checker.IsAnotherRunning()
	if err != nil {
		a.logger.Warn("Cannot check for other instances.", "error", err)
		return 0, false
	}
	if !running {
		return 0, false
	}

	if canForward {
		// the owner may not have opened its endpoint yet
		if err := ipc.WaitForServer(ctx, a.SocketPath(), serverWait); err == nil && a.forward(ctx) {
			a.logger.Info("Ending application because another instance has been detected!")
			return 0, true
		}
	}
	a.debug.Debug("Instance lock held.", "lock", a.checker.LockPath(), "pid", a.checker.OwnerPID())
	ui.MessageBox(a.deps.Terminal, ui.KindError, Name, anotherInstanceMessage)
	return 1, true
}

func (a *App) startServer(ctx context.Context) {
	srv, err := ipc.Listen(ctx, a.SocketPath(), ipc.Topic, &ipcHandler{a: a})
	if err != nil {
		a.logger.Warn("Cannot start the IPC server.", "error", err)
		return
	}
	a.server = srv
}

func (a *App) runBatch(ctx context.Context) (int, error) {
	a.bus.Publish(events.Event{Type: events.AppStartupDone})
	a.bus.Subscribe(events.CompilerFinished, func(e events.Event) {
		a.loop.Post(func() { a.onBatchBuildDone(e.ExitCode) })
	})
	a.loadDelayedFiles(a.deps.WorkDir)

	a.loop.CallAfter(func() { a.batchJob(ctx) })
	if err := a.runLoop(ctx); err != nil {
		return 1, err
	}
	return a.batchExitCode, nil
}

func (a *App) runScript(ctx context.Context) (int, error) {
	a.loadDelayedFiles(a.deps.WorkDir)

	path := fsutil.Normalize(a.cfg.Script, a.deps.WorkDir)
	a.runScriptFile(ctx, path)
	a.frame.Close()
	return 0, nil
}

func (a *App) runScriptFile(ctx context.Context, path string) {
	script, err := a.deps.Store.LoadScript(ctx, path)
	if err != nil {
		a.logger.Error("Cannot load script.", "path", path, "error", err)
		return
	}
	runner := scripting.NewRunner(a.frame, a.vars)
	if err := runner.Run(ctx, script); err != nil {
		a.logger.Error("Script finished with errors.", "path", path, "error", err)
	}
}

func (a *App) runInteractive(ctx context.Context) (int, error) {
	a.checkVersion(ctx)

	if startup := a.locateStartupScript(); startup != "" {
		a.runScriptFile(ctx, startup)
	}

	a.splash.Hide()
	a.frame.Show()
	a.frame.StartupDone()

	a.loadDelayedFiles(a.deps.WorkDir)
	a.attachDebugger(ctx)
	a.bus.Publish(events.Event{Type: events.WorkspaceChanged})
	a.bus.Publish(events.Event{Type: events.AppStartupDone})

	if a.crashReport != "" {
		a.logger.Info(fmt.Sprintf("Setting the crash report file to: %s", a.crashReport))
	}

	if err := a.runLoop(ctx); err != nil {
		return 1, err
	}
	return 0, nil
}

// runLoop runs the event loop until the frame closes. Cancellation of ctx
// is a normal way to end.
func (a *App) runLoop(ctx context.Context) error {
	go func() {
		select {
		case <-a.frame.Closed():
			a.loop.Quit()
		case <-a.loop.Done():
		}
	}()
	err := a.loop.Run(ctx)
	if errors.Is(err, eventloop.ErrQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// checkVersion records the running version in the settings file when it
// differs from the stored one.
func (a *App) checkVersion(ctx context.Context) {
	if a.settings.App.Version == Version {
		return
	}
	a.debug.Debug("Stored version differs.", "stored", a.settings.App.Version, "running", Version)
	a.settings.App.Version = Version
	a.settings.UserVarSets = a.vars.Export()
	a.settings.ActiveUserVarSet = a.vars.ActiveSet()
	if err := a.deps.Store.SaveSettings(ctx, a.personalities.SettingsPath(), a.settings); err != nil {
		a.logger.Warn("Cannot save settings.", "error", err)
	}
}

// locateStartupScript looks in the user scripts folder first, then in the
// shared one.
func (a *App) locateStartupScript() string {
	for _, dir := range []string{a.userDataDir, a.dataDir} {
		path := filepath.Join(dir, "scripts", startupFile)
		if fsutil.Exists(path) {
			return path
		}
	}
	return ""
}

// shutdown releases what Run acquired.
func (a *App) shutdown() {
	a.splash.Hide()
	if a.server != nil {
		if err := a.server.Close(); err != nil {
			a.debug.Debug("IPC server close failed.", "error", err)
		}
	}
	if a.checker != nil {
		if err := a.checker.Release(); err != nil {
			a.debug.Debug("Instance lock release failed.", "error", err)
		}
	}
	a.logs.Close()
}
