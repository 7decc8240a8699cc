package app

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/specialistvlad/codehost/internal/workbench"
)

// Name is the application name used for files, sockets and messages.
const Name = "codehost"

// Set at link time with -ldflags "-X".
var (
	Version        = "1.0.0"
	BuildTimestamp = "unknown"
)

const (
	ProjectExt   = workbench.ProjectExt
	WorkspaceExt = workbench.WorkspaceExt

	// DataDirEnv overrides the shared data prefix.
	DataDirEnv = "CODEHOST_DATA_DIR"
	// dataSuffix is appended to the prefix to form the data path.
	dataSuffix = "/share/" + Name

	appLogFile   = Name + ".log"
	debugLogFile = Name + "-debug.log"
	startupFile  = "startup.script"
)

// DataPath resolves the shared data folder: the --prefix value, else
// $CODEHOST_DATA_DIR, else the executable's folder with a trailing /bin
// removed; then /share/codehost is appended and the result made absolute.
func DataPath(prefix string, getenv func(string) string, exePath string) string {
	data := prefix
	if data == "" {
		data = getenv(DataDirEnv)
	}
	if data == "" {
		data = filepath.Dir(exePath)
		if data == "" {
			data = "."
		}
		data = strings.TrimSuffix(filepath.ToSlash(data), "/bin")
	}
	data = filepath.FromSlash(data + dataSuffix)
	if abs, err := filepath.Abs(data); err == nil {
		data = abs
	}
	return data
}

// DefaultUserDataDir is the per-user settings folder used without
// --user-data-dir.
func DefaultUserDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, Name)
	}
	return filepath.Join(os.TempDir(), Name+"-config")
}

// SetUserDataFolder creates dir, failing when it cannot be used.
func SetUserDataFolder(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("user data folder %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("user data folder %q: %w", dir, err)
	}
	return abs, nil
}

// UserName identifies the user in per-user socket and lock names.
func UserName(getenv func(string) string) string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return sanitize(u.Username)
	}
	for _, k := range []string{"USER", "USERNAME"} {
		if v := getenv(k); v != "" {
			return sanitize(v)
		}
	}
	return "user"
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' || r == ' ' {
			return '_'
		}
		return r
	}, s)
}

// CrashReportName returns the report file name for a crash at t.
func CrashReportName(t time.Time) string {
	return fmt.Sprintf("%s_%s_%s.rpt", Name, t.Format("20060102_150405"), Version)
}
