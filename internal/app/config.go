package app

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds everything the command line decides for one run.
type Config struct {
	// Global switches, applied before the main window exists.
	SafeMode         bool
	NoIPC            bool
	NoSplash         bool
	MultipleInstance bool
	NoCrashHandler   bool
	Verbose          bool
	Prefix           string
	UserDataDir      string
	Personality      string

	// Logging.
	DebugLog       bool
	NoLog          bool
	LogToFile      bool
	DebugLogToFile bool
	LogFormat      string
	LogLevel       string

	// Global user variables.
	UserVarSet  string
	UserVarDefs []string

	// Batch build.
	Build              bool
	Rebuild            bool
	Clean              bool
	Target             string
	NoBatchWindowClose bool
	BatchBuildNotify   bool

	Script    string
	File      string
	DbgAttach string
	DbgConfig string

	// Documents holds the positional parameters: files, projects and
	// workspaces.
	Documents []string
	// UnknownOptions holds options nobody recognised. They do not stop
	// parsing.
	UnknownOptions []string
	// Args is the argument vector the config was parsed from, forwarded
	// verbatim to an already running instance.
	Args []string
}

// HasBatchOp reports whether a build, rebuild or clean was requested.
func (c *Config) HasBatchOp() bool {
	return c.Build || c.Rebuild || c.Clean
}

// NewConfig validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	for _, d := range cfg.UserVarDefs {
		if !strings.Contains(d, "=") {
			return nil, fmt.Errorf("invalid -D value %q: expected [set.]name[.member]=value", d)
		}
	}
	return &cfg, nil
}
