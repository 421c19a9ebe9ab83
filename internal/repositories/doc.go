// Package repositories implements SQLite persistence for playlist drafts and save history.
//
// Key Implementations:
//   - [DraftRepository] : drafts and their ordered tracks, with a single active draft
//   - [HistoryRepository] : one record per save attempt, newest first
//
// Sequence numbers provide stable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
//
// NextSequence runs its own transaction, so callers obtain a sequence before
// opening theirs; an in-memory database is limited to one connection.
package repositories
