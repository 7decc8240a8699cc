// Package plugin is the registry of compiled-in plugins.
//
// Plugin modules (see the modules/ tree) register their compilers and
// debuggers at startup. Safe mode keeps the registrations but hides them
// from every lookup, so the rest of the bootstrap behaves as if no plugin
// were installed.
package plugin
