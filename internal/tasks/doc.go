// Package tasks runs migration sessions through their staged pipeline with real-time progress reporting.
//
// # Core Operations
//
// The [MigrationEngine] interface defines two operations:
//
//  1. [MigrationEngine.Launch] : Background pipeline run
//     - Loads the session and rejects terminal or already-running ones
//     - Walks preparing → exporting → converting → completed, persisting
//     each stage with its progress value through the store's guarded
//     transition
//     - Pauses a configurable delay between stages
//
//  2. [MigrationEngine.Cancel] : Explicit cancellation
//     - Marks the session failed with [CancelReason], keeping its progress
//     - Stops the running goroutine through its registered cancel function
//
// # Progress Reporting
//
// All runs use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, the overall
// percentage, and the display message from [StatusMessage]. Updates use
// select with default to prevent blocking.
//
// # Implementation
//
// [PipelineEngine] implements [MigrationEngine] with dependencies on:
//   - [SessionStore] : persistence (repositories.MigrationRepository)
//   - [StageFunc] : optional per-stage work functions via [PipelineEngine.SetStage]
package tasks
