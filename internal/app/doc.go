// Package app contains the bootstrap of the editor host. It defines the
// App struct, its configuration and the startup sequence: personality and
// settings, single-instance negotiation over IPC, the main frame, and the
// batch build, script or interactive run that follows. It is decoupled
// from any specific entrypoint like a CLI.
package app
