package state

import "time"

// SchemaVersion is the current journal file format version.
const SchemaVersion = 1

// DefaultMaxEntries bounds how many entries the journal keeps.
const DefaultMaxEntries = 100

// Journal is the on-disk journal document.
type Journal struct {
	// Version is the schema version of the file
	Version int `json:"version"`

	// Entries are ordered oldest first
	Entries []Entry `json:"entries"`
}

// Entry records one move attempt.
type Entry struct {
	// ID uniquely identifies the attempt
	ID string `json:"id"`

	// Route is the route that was moved
	Route string `json:"route"`

	// From is the location the route started at ("active" or "archive")
	From string `json:"from"`

	// To is the requested destination
	To string `json:"to"`

	// StartedAt is when execution began
	StartedAt time.Time `json:"startedAt"`

	// FinishedAt is when execution stopped, successfully or not
	FinishedAt time.Time `json:"finishedAt"`

	// Planned is the number of relocations in the plan
	Planned int `json:"planned"`

	// Completed is the number of relocations that succeeded
	Completed int `json:"completed"`

	// Operations lists the relocations that succeeded, in order
	Operations []OperationRecord `json:"operations"`

	// Evicted lists active routes moved out to make room
	Evicted []string `json:"evicted,omitempty"`

	// Error is the failure message, empty on success
	Error string `json:"error,omitempty"`
}

// OperationRecord is one completed directory relocation.
type OperationRecord struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// Succeeded reports whether every planned relocation completed.
func (e Entry) Succeeded() bool {
	return e.Error == "" && e.Completed == e.Planned
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{
		Version: SchemaVersion,
		Entries: []Entry{},
	}
}
