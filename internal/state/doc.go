// Package state manages the move journal.
//
// Route placement itself is never persisted: it is rediscovered from the
// filesystem on every run. Moves, however, have no rollback, so every move
// attempt is recorded with the relocations that completed. After an
// interrupted move the journal shows exactly which directories went where.
// The journal is persisted as JSON in the routemgr data root.
//
// Key concepts:
//   - Entry: One move attempt with its planned and completed relocations
//   - JournalStore: Interface for appending and listing entries
//   - FileJournalStore: JSON file implementation with atomic writes
package state
