package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/codehost/internal/app"
	"github.com/specialistvlad/codehost/internal/ipc"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList collects every occurrence of a repeatable flag.
type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

// boolFlag matches the flag package's interface for value-less flags.
type boolFlag interface {
	IsBoolFlag() bool
}

func newFlagSet(output io.Writer, cfg *app.Config, help *bool, defs *stringList) *flag.FlagSet {
	fs := flag.NewFlagSet(app.Name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, `
%s - code editor host.

Usage:
  %s [options] [filename(s)]

Arguments:
  filename(s)
    Files to open. Projects (%s) and workspaces (%s) are loaded as such;
    a workspace replaces anything given before it.

Options:
`, app.Name, app.Name, app.ProjectExt, app.WorkspaceExt)
		fs.PrintDefaults()
	}

	boolVar := func(p *bool, usage string, names ...string) {
		for _, n := range names {
			fs.BoolVar(p, n, false, usage)
		}
	}
	stringVar := func(p *string, value, usage string, names ...string) {
		for _, n := range names {
			fs.StringVar(p, n, value, usage)
		}
	}

	boolVar(help, "Show this help message.", "h", "help", "?")
	boolVar(&cfg.SafeMode, "Load in safe mode (all plugins will be disabled).", "safe-mode")
	boolVar(&cfg.NoIPC, "Do not talk to a running instance.", "ni", "no-ipc", "nd", "no-dde")
	boolVar(&cfg.NoSplash, "Do not display the splash screen.", "ns", "no-splash-screen")
	boolVar(&cfg.MultipleInstance, "Allow running multiple instances.", "multiple-instance")
	boolVar(&cfg.DebugLog, "Enable the debug log.", "d", "debug-log")
	boolVar(&cfg.NoCrashHandler, "Don't use the crash handler (useful for debugging).", "nc", "no-crash-handler")
	boolVar(&cfg.Verbose, "Show more debugging messages.", "v", "verbose")
	stringVar(&cfg.Prefix, "", "The shared data dir prefix.", "prefix")
	stringVar(&cfg.UserDataDir, "", "Set a custom location for user settings.", "user-data-dir")
	stringVar(&cfg.Personality, "", "Sets the personality to use. Use \"ask\" to choose one interactively.", "p", "personality", "profile")
	boolVar(&cfg.NoLog, "Turn off the application log.", "no-log")
	boolVar(&cfg.LogToFile, "Redirect the application log to a file.", "log-to-file")
	boolVar(&cfg.DebugLogToFile, "Redirect the debug log to a file.", "debug-log-to-file")
	stringVar(&cfg.UserVarSet, "", "Set the active global user-variable set.", "S", "set")
	fs.Var(defs, "D", "Define a global user variable: [set.]name[.member]=value (repeatable).")
	boolVar(&cfg.Build, "Build the project or workspace and exit.", "build")
	boolVar(&cfg.Rebuild, "Clean, build the project or workspace and exit.", "rebuild")
	boolVar(&cfg.Clean, "Clean the project or workspace and exit.", "clean")
	stringVar(&cfg.Target, "", "The target for the batch build. Use \"ask\" to choose one interactively.", "target")
	boolVar(&cfg.NoBatchWindowClose, "Do not close the batch build window when the build finishes.", "no-batch-window-close")
	boolVar(&cfg.BatchBuildNotify, "Show a message when the batch build finishes.", "batch-build-notify")
	stringVar(&cfg.Script, "", "Execute a script file and exit.", "script")
	stringVar(&cfg.File, "", "Open a file and optionally jump to a line (file[:line]).", "file")
	stringVar(&cfg.DbgAttach, "", "Process id or name the debugger attaches to.", "dbg-attach")
	stringVar(&cfg.DbgConfig, "", "Debugger plugin and configuration: plugin-name:config-name.", "dbg-config")
	stringVar(&cfg.LogFormat, "text", "Log output format. Options: 'text' or 'json'.", "log-format")
	stringVar(&cfg.LogLevel, "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.", "log-level")
	return fs
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	var (
		raw  app.Config
		help bool
		defs stringList
	)
	fs := newFlagSet(output, &raw, &help, &defs)

	known, unknown := splitUnknown(fs, args)
	docs, err := parseInterleaved(fs, known)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if help {
		fs.Usage()
		return nil, true, nil
	}
	slog.Debug("Arguments parsed successfully.", "documents", len(docs), "unknown", len(unknown))

	raw.UserVarDefs = defs
	raw.Documents = docs
	raw.UnknownOptions = unknown
	raw.Args = args

	cfg, err := app.NewConfig(raw)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("CLI parser finished successfully.")
	return cfg, false, nil
}

// ParseCommandLine parses a command line forwarded by another instance.
// Help requests yield an empty config.
func ParseCommandLine(cmdline string) (*app.Config, error) {
	args, err := ipc.SplitArgs(cmdline)
	if err != nil {
		return nil, err
	}
	cfg, shouldExit, err := Parse(args, io.Discard)
	if err != nil {
		return nil, err
	}
	if shouldExit {
		return app.NewConfig(app.Config{Args: args})
	}
	return cfg, nil
}

// splitUnknown moves options the flag set does not define out of args, so
// that a plugin's switch never aborts startup. Values of known non-boolean
// options are kept with their option.
func splitUnknown(fs *flag.FlagSet, args []string) (known, unknown []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return append(known, args[i:]...), unknown
		}
		if len(a) < 2 || a[0] != '-' {
			known = append(known, a)
			continue
		}

		name := strings.TrimLeft(a, "-")
		name, _, hasValue := strings.Cut(name, "=")
		f := fs.Lookup(name)
		if f == nil {
			unknown = append(unknown, a)
			continue
		}
		known = append(known, a)
		if bf, ok := f.Value.(boolFlag); ok && bf.IsBoolFlag() {
			continue
		}
		if !hasValue && i+1 < len(args) {
			i++
			known = append(known, args[i])
		}
	}
	return known, unknown
}

// parseInterleaved accepts options after positional parameters, the way
// users type them ("app file.c --file=x.c").
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var docs []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return docs, nil
		}
		// flag.Parse consumed a "--" terminator: everything left is positional.
		if len(args) > len(rest) && args[len(args)-len(rest)-1] == "--" {
			return append(docs, rest...), nil
		}
		docs = append(docs, rest[0])
		args = rest[1:]
	}
}
