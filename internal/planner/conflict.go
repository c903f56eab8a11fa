package planner

import "fmt"

// ConflictChecker checks each planned directory move against the simulated
// view. Moves never overwrite, so an occupied destination or a missing
// source is a conflict.
type ConflictChecker struct {
	view DirChecker
}

// NewConflictChecker creates a ConflictChecker over view.
func NewConflictChecker(view DirChecker) *ConflictChecker {
	return &ConflictChecker{view: view}
}

// CheckMove returns a Conflict for moving src to dst, or nil if the move is
// safe. Errors are probe failures, not conflicts.
func (c *ConflictChecker) CheckMove(op Operation) (*Conflict, error) {
	present, err := c.view.DirExists(op.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check source %s: %w", op.SourcePath, err)
	}
	if !present {
		return &Conflict{
			Path:   op.SourcePath,
			Reason: fmt.Sprintf("source not found (%s of route %q)", op.Reason, op.Route),
		}, nil
	}

	occupied, err := c.view.DirExists(op.DestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to check destination %s: %w", op.DestPath, err)
	}
	if occupied {
		return &Conflict{
			Path:   op.DestPath,
			Reason: fmt.Sprintf("destination already exists (%s of route %q)", op.Reason, op.Route),
		}, nil
	}

	return nil, nil
}
