package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/danieljhkim/routemgr/internal/clock"
	"github.com/danieljhkim/routemgr/internal/logging"
	"github.com/danieljhkim/routemgr/internal/planner"
	"github.com/danieljhkim/routemgr/internal/route"
	"github.com/danieljhkim/routemgr/internal/state"
)

// Move relocates a route to the opposite location, evicting incompatible
// active routes when moving into the active location.
//
// On an I/O failure it returns a *MoveError together with a result listing
// the relocations that completed. Nothing is rolled back.
func (e *Engine) Move(ctx context.Context, req *MoveRequest) (*MoveResult, error) {
	if req == nil || req.Snapshot == nil {
		return nil, fmt.Errorf("move request requires a snapshot")
	}

	target := req.Snapshot.Find(req.Route)
	if target == nil {
		return nil, invalidState("route %q is not in the current snapshot", req.Route)
	}

	if (req.Direction == ToActive && target.Location == route.Active) ||
		(req.Direction == ToArchive && target.Location == route.Archive) {
		return nil, fmt.Errorf("%w: route %q is already in the %s location", ErrAlreadyPlaced, target.Name, target.Location)
	}

	plan, err := planner.BuildMovePlan(req.Snapshot, target, e.resolver, e.fs)
	if err != nil {
		return nil, fmt.Errorf("failed to plan move: %w", err)
	}

	result := &MoveResult{
		Plan:    plan,
		Applied: []planner.Operation{},
	}

	if plan.HasConflicts() {
		c := plan.Conflicts[0]
		return result, invalidState("cannot move route %q: %s: %s (%d conflicts)", target.Name, c.Path, c.Reason, len(plan.Conflicts))
	}

	if req.DryRun {
		return result, nil
	}

	return e.execute(ctx, req.Snapshot, target, result)
}

// Activate moves an archived route into the active location.
func (e *Engine) Activate(ctx context.Context, snapshot *route.Snapshot, name string) (*MoveResult, error) {
	return e.Move(ctx, &MoveRequest{Snapshot: snapshot, Route: name, Direction: ToActive})
}

// Archive moves an active route into the archive.
func (e *Engine) Archive(ctx context.Context, snapshot *route.Snapshot, name string) (*MoveResult, error) {
	return e.Move(ctx, &MoveRequest{Snapshot: snapshot, Route: name, Direction: ToArchive})
}

// Plan returns the move plan for a route without executing it.
func (e *Engine) Plan(ctx context.Context, snapshot *route.Snapshot, name string) (*planner.MovePlan, error) {
	result, err := e.Move(ctx, &MoveRequest{Snapshot: snapshot, Route: name, DryRun: true})
	if result != nil && result.Plan != nil {
		return result.Plan, err
	}
	return nil, err
}

func (e *Engine) execute(ctx context.Context, snapshot *route.Snapshot, target *route.PlacedRoute, result *MoveResult) (*MoveResult, error) {
	plan := result.Plan
	entry := state.Entry{
		ID:         e.newID(),
		Route:      target.Name,
		From:       plan.From.String(),
		To:         plan.To.String(),
		StartedAt:  e.clock.Now(),
		Planned:    len(plan.Operations),
		Operations: []state.OperationRecord{},
		Evicted:    plan.Evicted,
	}
	result.JournalID = entry.ID

	log := e.logger.With(logging.MoveID(entry.ID), logging.Route(target.Name))
	log.InfoContext(ctx, "move started",
		"from", plan.From.String(), "to", plan.To.String(), "evict", plan.Evicted)

	for i, op := range plan.Operations {
		if err := e.fs.MoveDir(op.SourcePath, op.DestPath); err != nil {
			moveErr := &MoveError{
				Route:     target.Name,
				Completed: i,
				Planned:   len(plan.Operations),
				Op:        op,
				Err:       err,
			}
			log.ErrorContext(ctx, "directory move failed",
				logging.Source(op.SourcePath), logging.Dest(op.DestPath),
				logging.Step(i, len(plan.Operations)), logging.Error(err))

			entry.Completed = i
			entry.Error = moveErr.Error()
			e.record(ctx, entry)
			return result, moveErr
		}

		result.Applied = append(result.Applied, op)
		entry.Operations = append(entry.Operations, state.OperationRecord{Source: op.SourcePath, Dest: op.DestPath})
		log.InfoContext(ctx, "directory moved",
			logging.Source(op.SourcePath), logging.Dest(op.DestPath),
			logging.Step(i+1, len(plan.Operations)))
	}

	target.Location = plan.To
	for _, name := range plan.Evicted {
		if r := snapshot.Find(name); r != nil && !strings.EqualFold(r.Name, target.Name) {
			r.Location = route.Archive
		}
	}
	result.Snapshot = route.NewSnapshot(snapshot.All())

	entry.Completed = len(plan.Operations)
	e.record(ctx, entry)
	log.InfoContext(ctx, "move finished", logging.Elapsed(clock.Since(e.clock, entry.StartedAt)))

	return result, nil
}

// record appends to the journal. Journal failures never mask the move outcome.
func (e *Engine) record(ctx context.Context, entry state.Entry) {
	if e.journal == nil {
		return
	}
	entry.FinishedAt = e.clock.Now()
	if err := e.journal.Append(entry); err != nil {
		e.logger.WarnContext(ctx, "failed to record move in journal",
			logging.MoveID(entry.ID), logging.Error(err))
	}
}
