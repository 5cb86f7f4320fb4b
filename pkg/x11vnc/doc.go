// Package x11vnc is a thread-safe lifecycle and configuration facade in
// front of a legacy, globally-stateful screen-sharing engine. The engine was
// written assuming it owns the whole process (global variables, a single
// entry point, signal-driven shutdown); this package lets a host application
// create, configure, start, introspect and stop it through an ordinary
// handle-based API.
//
// A handle moves through created, configured, running and stopped states. It
// can be started either from a raw argument vector or from a structured
// Config that is translated to the engine's command-line form. Creating a
// handle snapshots the process-wide engine state; closing it restores that
// snapshot, so handle lifecycles are non-destructive to pre-existing global
// state.
//
// Because the wrapped engine keeps process-wide state, running more than one
// handle in the same process at the same time is unsupported. The facade
// serializes operations on a single handle but does not arbitrate between
// handles.
//
// Event callbacks are dispatched synchronously, possibly while the handle's
// internal lock is held. A callback must never call back into the same
// handle.
package x11vnc
