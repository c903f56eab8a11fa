package engine

import (
	"github.com/danieljhkim/routemgr/internal/planner"
	"github.com/danieljhkim/routemgr/internal/route"
)

// Direction constrains where a move may go.
type Direction int

const (
	// Toggle moves the route to whichever location it is not at.
	Toggle Direction = iota

	// ToActive requires the route to currently be archived.
	ToActive

	// ToArchive requires the route to currently be active.
	ToArchive
)

// MoveRequest represents a request to move one route.
type MoveRequest struct {
	// Snapshot is the result of the latest Discover call
	Snapshot *route.Snapshot

	// Route is the name of the route to move (case-insensitive)
	Route string

	// Direction restricts the move; Toggle accepts either
	Direction Direction

	// DryRun performs planning only without moving anything
	DryRun bool
}

// MoveResult represents the result of a move.
type MoveResult struct {
	// Plan is the generated plan
	Plan *planner.MovePlan

	// Applied is the list of relocations that were executed (empty if DryRun)
	Applied []planner.Operation

	// Snapshot holds the updated placements after a successful move.
	// Compatibility is not recomputed; call Discover before the next move.
	Snapshot *route.Snapshot

	// JournalID identifies the journal entry for this attempt (empty if DryRun)
	JournalID string
}
