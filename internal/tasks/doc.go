// Package tasks runs multi-step playlist operations with real-time progress reporting.
//
// # Core Operations
//
//  1. [PlaylistEngine.Save] : Save the active draft to the provider
//     - Checks that the draft has a name and at least one track
//     - Creates the playlist and adds the draft's tracks in order
//     - Records the attempt (including partial failures) in the local history
//     - Resets the draft after a successful save
//
//  2. [PlaylistEngine.ExportDrafts] : Write several drafts to disk concurrently
//     - Worker pool with a bounded number of goroutines
//     - One file per draft plus an export_manifest.json summary
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default so a slow reader never blocks an operation.
//
// # Implementation
//
// [PlaylistEngine] depends on:
//   - [services.Service] : the provider API client
//   - [DraftStore] : draft persistence (repositories.DraftRepository)
//   - [HistoryStore] : save history (repositories.HistoryRepository)
package tasks
