package engine

import (
	"errors"
	"fmt"

	"github.com/danieljhkim/routemgr/internal/planner"
)

var (
	// ErrInvalidState indicates the filesystem contradicts the configured catalog.
	ErrInvalidState = errors.New("invalid state")

	// ErrMoveFailed indicates a directory relocation failed mid-move.
	ErrMoveFailed = errors.New("move failed")

	// ErrAlreadyPlaced indicates the route already sits at the requested location.
	ErrAlreadyPlaced = errors.New("route already at requested location")
)

// InvalidStateError carries the first violated placement invariant.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: %s", e.Reason)
}

// Is matches ErrInvalidState.
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

func invalidState(format string, args ...any) error {
	return &InvalidStateError{Reason: fmt.Sprintf(format, args...)}
}

// MoveError reports an I/O failure during a move. Relocations before the
// failing one are not rolled back; rediscover before retrying.
type MoveError struct {
	// Route is the route being moved
	Route string

	// Completed is the number of relocations that succeeded
	Completed int

	// Planned is the total number of relocations in the plan
	Planned int

	// Op is the relocation that failed
	Op planner.Operation

	// Err is the underlying filesystem error
	Err error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("failed to move route %q: relocation %d of %d (%s -> %s) failed after %d succeeded: %v",
		e.Route, e.Completed+1, e.Planned, e.Op.SourcePath, e.Op.DestPath, e.Completed, e.Err)
}

// Is matches ErrMoveFailed.
func (e *MoveError) Is(target error) bool {
	return target == ErrMoveFailed
}

func (e *MoveError) Unwrap() error {
	return e.Err
}
