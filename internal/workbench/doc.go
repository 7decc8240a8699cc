// Package workbench is the headless main window of the editor: a frame
// owning an editor manager (open files and their caret line) and a project
// manager (loaded projects and workspace). All methods are safe for
// concurrent use, but the bootstrap calls them from its event loop.
package workbench
