// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI watches a single migration session: the [Model] polls the session
// store on a fixed interval and renders the persisted status with a
// charmbracelet/bubbles progress bar and spinner. Because all state flows
// through the store, the watcher can attach to a migration started by any
// process, not just its own.
//
// Polling stops once the session reaches a terminal status; the final state
// stays on screen until the user quits (q/esc/ctrl+c).
package ui
