// Package cli provides the interactive dblook command-line client.
//
// It wires configuration, persisted client state, the hydration gate, API
// services and an interactive REPL. Typical flow: restore the previous
// session from storage behind the hydration gate, verify it with the server
// (or keep it while offline), start a background connectivity watcher and
// execute user commands.
//
// Key features:
//   - Register / Login / Logout / whoami
//   - Session management: list, create, delete, connect, disconnect
//   - Table and collection selection inside the active session
//   - status (including the startup restore report) and reset
//
// The app is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
