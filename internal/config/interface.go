package config

import (
	"context"
)

// Loader reads every file format the bootstrap consumes.
type Loader interface {
	// LoadSettings reads a personality settings file. A missing file yields
	// DefaultSettings.
	LoadSettings(ctx context.Context, path string) (*Settings, error)

	// LoadProject reads a project file.
	LoadProject(ctx context.Context, path string) (*Project, error)

	// LoadWorkspace reads a workspace file. Project paths are resolved
	// against the workspace's directory.
	LoadWorkspace(ctx context.Context, path string) (*Workspace, error)

	// LoadScript parses a script without evaluating it.
	LoadScript(ctx context.Context, path string) (*Script, error)
}

// Saver persists settings.
type Saver interface {
	SaveSettings(ctx context.Context, path string, s *Settings) error
}
