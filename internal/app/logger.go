package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// parseLevel maps the --log-level value to a slog level. Unknown values
// mean info.
func parseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newHandler creates a text or JSON handler writing to outW.
func newHandler(level slog.Level, formatStr string, outW io.Writer) slog.Handler {
	handlerOpts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.NewJSONHandler(outW, handlerOpts)
	}
	return slog.NewTextHandler(outW, handlerOpts)
}

// teeHandler sends every record to all of its handlers.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

// logSinks owns the application and debug loggers and their files.
type logSinks struct {
	app   *slog.Logger
	debug *slog.Logger
	files []*os.File
}

// newLogSinks builds the two loggers from cfg. The application log goes to
// outW unless --no-log; the debug log only exists with --debug-log. The
// *-to-file switches add a file in dir.
func newLogSinks(cfg *Config, outW io.Writer, dir string) (*logSinks, error) {
	s := &logSinks{}

	level := parseLevel(cfg.LogLevel)
	if cfg.Verbose || cfg.DebugLog {
		level = slog.LevelDebug
	}

	var appHandlers teeHandler
	if !cfg.NoLog {
		appHandlers = append(appHandlers, newHandler(level, cfg.LogFormat, outW))
	}
	if cfg.LogToFile {
		f, err := s.open(filepath.Join(dir, appLogFile))
		if err != nil {
			return nil, err
		}
		appHandlers = append(appHandlers, newHandler(level, cfg.LogFormat, f))
	}
	s.app = slog.New(appHandlers)

	var debugHandlers teeHandler
	if cfg.DebugLog {
		debugHandlers = append(debugHandlers, newHandler(slog.LevelDebug, cfg.LogFormat, outW))
	}
	if cfg.DebugLogToFile {
		f, err := s.open(filepath.Join(dir, debugLogFile))
		if err != nil {
			s.Close()
			return nil, err
		}
		debugHandlers = append(debugHandlers, newHandler(slog.LevelDebug, cfg.LogFormat, f))
	}
	s.debug = slog.New(debugHandlers)
	return s, nil
}

func (s *logSinks) open(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	s.files = append(s.files, f)
	return f, nil
}

// Close closes the log files.
func (s *logSinks) Close() {
	for _, f := range s.files {
		_ = f.Close()
	}
	s.files = nil
}
