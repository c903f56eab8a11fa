package planner

import "github.com/danieljhkim/routemgr/internal/route"

// MovePlan represents a plan to move one route to the opposite location.
type MovePlan struct {
	// Route is the name of the route being moved
	Route string

	// From is the location the route currently occupies
	From route.Location

	// To is the destination location
	To route.Location

	// Operations is the ordered list of directory moves to execute
	Operations []Operation

	// Evicted lists active routes moved to the archive to make room
	Evicted []string

	// Conflicts is a list of detected conflicts (empty if no conflicts)
	Conflicts []Conflict
}

// Operation represents a single directory move.
type Operation struct {
	// Type is the operation type, always OpMoveDir today
	Type string `json:"type"`

	// Reason explains why the move is part of the plan
	Reason string `json:"reason"`

	// Route is the route whose directory is moved
	Route string `json:"route"`

	// Kind is the resource kind, empty for primary directories
	Kind string `json:"kind,omitempty"`

	// SourcePath is the directory to move (absolute)
	SourcePath string `json:"source"`

	// DestPath is the destination directory (absolute)
	DestPath string `json:"dest"`
}

// Conflict represents a conflict detected during planning.
type Conflict struct {
	// Path is the destination path where the conflict was detected
	Path string `json:"path"`

	// Reason is a human-readable explanation of the conflict
	Reason string `json:"reason"`
}

// Operation type constants
const (
	OpMoveDir = "move_dir"
)

// Operation reasons
const (
	ReasonArchivePrimary   = "archive-primary"
	ReasonArchiveResource  = "archive-resource"
	ReasonEvictPrimary     = "evict-primary"
	ReasonEvictResource    = "evict-resource"
	ReasonActivateResource = "activate-resource"
	ReasonActivatePrimary  = "activate-primary"
)

// NewMovePlan creates a new empty MovePlan.
func NewMovePlan(name string, from route.Location) *MovePlan {
	return &MovePlan{
		Route:      name,
		From:       from,
		To:         from.Opposite(),
		Operations: []Operation{},
		Evicted:    []string{},
		Conflicts:  []Conflict{},
	}
}

// HasConflicts returns true if the plan has any conflicts.
func (p *MovePlan) HasConflicts() bool {
	return len(p.Conflicts) > 0
}

// AddOperation adds an operation to the plan.
func (p *MovePlan) AddOperation(op Operation) {
	p.Operations = append(p.Operations, op)
}

// AddConflict adds a conflict to the plan.
func (p *MovePlan) AddConflict(conflict Conflict) {
	p.Conflicts = append(p.Conflicts, conflict)
}
