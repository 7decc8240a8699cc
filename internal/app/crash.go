package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/specialistvlad/codehost/internal/fsutil"
	"github.com/specialistvlad/codehost/internal/ui"
)

const fatalMessage = "Something has gone wrong inside %s and it will terminate immediately.\n" +
	"We are sorry for the inconvenience..."

// recoverCrash turns a panic in the bootstrap into exit code 1. It must be
// deferred directly by Run.
func (a *App) recoverCrash(code *int, err *error) {
	r := recover()
	if r == nil {
		return
	}
	stack := debug.Stack()
	a.logger.Error("Fatal error.", "panic", r)

	if a.crashReport != "" {
		if path, werr := a.writeCrashReport(r, stack); werr != nil {
			a.logger.Error("Cannot write crash report.", "error", werr)
		} else {
			a.logger.Error("Crash report written.", "path", path)
		}
	}
	ui.MessageBox(a.deps.Terminal, ui.KindError, Name, fmt.Sprintf(fatalMessage, Name))

	*code = 1
	*err = fmt.Errorf("panic: %v", r)
}

// writeCrashReport stores the report in the user data folder, or the temp
// folder when that is not writable.
func (a *App) writeCrashReport(r any, stack []byte) (string, error) {
	dir := a.userDataDir
	if dir == "" || !fsutil.IsDirWritable(dir) {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, a.crashReport)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%s)\n", Name, Version, BuildTimestamp)
	fmt.Fprintf(&b, "panic: %v\n\n", r)
	b.Write(stack)

	if err := renameio.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return "", err
	}
	return path, nil
}
