package planner

import (
	"fmt"
	"strings"

	"github.com/danieljhkim/routemgr/internal/route"
)

// BuildMovePlan generates a deterministic plan to move target to the
// opposite location. target must belong to snapshot.
func BuildMovePlan(
	snapshot *route.Snapshot,
	target *route.PlacedRoute,
	resolver *route.Resolver,
	fs DirChecker,
) (*MovePlan, error) {
	if snapshot == nil || target == nil {
		return nil, fmt.Errorf("snapshot and target are required")
	}

	view := NewView(fs)
	b := &builder{
		plan:     NewMovePlan(target.Name, target.Location),
		snapshot: snapshot,
		resolver: resolver,
		view:     view,
		checker:  NewConflictChecker(view),
	}

	var err error
	if target.Location == route.Active {
		err = b.archive(target)
	} else {
		err = b.activate(target)
	}
	if err != nil {
		return nil, err
	}
	return b.plan, nil
}

type builder struct {
	plan     *MovePlan
	snapshot *route.Snapshot
	resolver *route.Resolver
	view     *View
	checker  *ConflictChecker
}

// archive plans moving an active route out. Resources no other active route
// binds follow it, otherwise they would be orphaned in the active slots.
func (b *builder) archive(target *route.PlacedRoute) error {
	others := activeExcept(b.snapshot, target.Name)

	if err := b.add(ReasonArchivePrimary, target.Name, "",
		b.resolver.PrimaryPath(target.Name, route.Active),
		b.resolver.PrimaryPath(target.Name, route.Archive)); err != nil {
		return err
	}

	for _, res := range target.Resources {
		if anyBindsKind(others, res.Kind) {
			continue
		}
		if err := b.add(ReasonArchiveResource, target.Name, res.Kind,
			b.resolver.ResourcePath(res.Kind, res.Instance, route.Active),
			b.resolver.ResourcePath(res.Kind, res.Instance, route.Archive)); err != nil {
			return err
		}
	}
	return nil
}

// activate plans moving an archived route in, evicting every active route
// that conflicts with it first.
func (b *builder) activate(target *route.PlacedRoute) error {
	var incompatible, survivors []*route.PlacedRoute
	for _, r := range b.snapshot.Active {
		if route.IsCompatible(target.Definition, r.Definition) {
			survivors = append(survivors, r)
		} else {
			incompatible = append(incompatible, r)
		}
	}

	for _, r := range incompatible {
		b.plan.Evicted = append(b.plan.Evicted, r.Name)

		if err := b.add(ReasonEvictPrimary, r.Name, "",
			b.resolver.PrimaryPath(r.Name, route.Active),
			b.resolver.PrimaryPath(r.Name, route.Archive)); err != nil {
			return err
		}

		for _, res := range r.Resources {
			if stillNeeded(res, target, survivors) {
				continue
			}
			src := b.resolver.ResourcePath(res.Kind, res.Instance, route.Active)
			present, err := b.view.DirExists(src)
			if err != nil {
				return fmt.Errorf("failed to check %s of route %q: %w", res.Kind, r.Name, err)
			}
			if !present {
				continue
			}
			if err := b.add(ReasonEvictResource, r.Name, res.Kind, src,
				b.resolver.ResourcePath(res.Kind, res.Instance, route.Archive)); err != nil {
				return err
			}
		}
	}

	for _, res := range target.Resources {
		src := b.resolver.ResourcePath(res.Kind, res.Instance, route.Archive)
		present, err := b.view.DirExists(src)
		if err != nil {
			return fmt.Errorf("failed to check %s of route %q: %w", res.Kind, target.Name, err)
		}
		if !present {
			// already bound in the active slot by a compatible route
			continue
		}
		if err := b.add(ReasonActivateResource, target.Name, res.Kind, src,
			b.resolver.ResourcePath(res.Kind, res.Instance, route.Active)); err != nil {
			return err
		}
	}

	return b.add(ReasonActivatePrimary, target.Name, "",
		b.resolver.PrimaryPath(target.Name, route.Archive),
		b.resolver.PrimaryPath(target.Name, route.Active))
}

// add appends a move, recording a conflict if it cannot be made safely.
func (b *builder) add(reason, name, kind, src, dst string) error {
	op := Operation{
		Type:       OpMoveDir,
		Reason:     reason,
		Route:      name,
		Kind:       kind,
		SourcePath: src,
		DestPath:   dst,
	}

	conflict, err := b.checker.CheckMove(op)
	if err != nil {
		return err
	}
	if conflict != nil {
		b.plan.AddConflict(*conflict)
	}

	b.plan.AddOperation(op)
	b.view.Move(src, dst)
	return nil
}

func activeExcept(s *route.Snapshot, name string) []*route.PlacedRoute {
	var out []*route.PlacedRoute
	for _, r := range s.Active {
		if !strings.EqualFold(r.Name, name) {
			out = append(out, r)
		}
	}
	return out
}

func anyBindsKind(routes []*route.PlacedRoute, kind string) bool {
	for _, r := range routes {
		if _, ok := r.Instance(kind); ok {
			return true
		}
	}
	return false
}

// stillNeeded reports whether an evicted route's resource must stay in its
// active slot: the incoming route binds the same instance, or a surviving
// active route still binds the kind.
func stillNeeded(res route.Resource, target *route.PlacedRoute, survivors []*route.PlacedRoute) bool {
	if inst, ok := target.Instance(res.Kind); ok && strings.EqualFold(inst, res.Instance) {
		return true
	}
	return anyBindsKind(survivors, res.Kind)
}
