// Package config defines the format-agnostic models the bootstrap works
// with (per-personality settings, projects, workspaces and scripts) along
// with the Loader and Saver interfaces that read and persist them.
//
// Concrete implementations live in separate packages; the HCL one is in
// internal/hcl.
package config
