package engine

import (
	"context"
	"strings"

	"github.com/danieljhkim/routemgr/internal/logging"
	"github.com/danieljhkim/routemgr/internal/route"
)

// Discover scans both locations for every configured route and returns the
// placement snapshot. It fails with an *InvalidStateError on the first
// violated invariant.
func (e *Engine) Discover(ctx context.Context) (*route.Snapshot, error) {
	snapshot, err := e.discover(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "discovery failed", logging.Error(err))
		return nil, err
	}
	e.logger.DebugContext(ctx, "discovery complete",
		"active", len(snapshot.Active), "archived", len(snapshot.Archived))
	return snapshot, nil
}

func (e *Engine) discover(ctx context.Context) (*route.Snapshot, error) {
	placed := make([]*route.PlacedRoute, 0, len(e.routes))

	// locate every primary directory
	for _, def := range e.routes {
		inActive, err := e.dirExists(e.resolver.PrimaryPath(def.Name, route.Active))
		if err != nil {
			return nil, err
		}
		inArchive, err := e.dirExists(e.resolver.PrimaryPath(def.Name, route.Archive))
		if err != nil {
			return nil, err
		}

		var loc route.Location
		switch {
		case inActive && inArchive:
			return nil, invalidState("route %q exists in both the active and archive locations", def.Name)
		case inActive:
			loc = route.Active
		case inArchive:
			loc = route.Archive
		default:
			return nil, invalidState("route %q not found", def.Name)
		}

		e.logger.DebugContext(ctx, "route located", logging.Route(def.Name), logging.Location(loc.String()))
		placed = append(placed, &route.PlacedRoute{Definition: def, Location: loc})
	}

	var active, archived []*route.PlacedRoute
	for _, p := range placed {
		if p.Location == route.Active {
			active = append(active, p)
		} else {
			archived = append(archived, p)
		}
	}

	// active routes own their resource slots and agree with each other
	for _, r := range active {
		if err := e.checkActive(r, active); err != nil {
			return nil, err
		}
		r.Compatibility = route.Full
	}

	activeDefs := make([]route.Definition, 0, len(active))
	for _, r := range active {
		activeDefs = append(activeDefs, r.Definition)
	}

	// archived resources must be resolvable before classification
	for _, r := range archived {
		if err := e.checkArchived(r, active); err != nil {
			return nil, err
		}
		r.Compatibility = route.Classify(r.Definition, activeDefs)
	}

	return route.NewSnapshot(placed), nil
}

func (e *Engine) checkActive(r *route.PlacedRoute, active []*route.PlacedRoute) error {
	for _, res := range r.Resources {
		present, err := e.dirExists(e.resolver.ResourcePath(res.Kind, res.Instance, route.Active))
		if err != nil {
			return err
		}
		if !present {
			return invalidState("%s of route %q not found in the active location", res.Kind, r.Name)
		}

		archived, err := e.dirExists(e.resolver.ResourcePath(res.Kind, res.Instance, route.Archive))
		if err != nil {
			return err
		}
		if archived {
			return invalidState("route %q is active but its %s (%s) is in the archive", r.Name, res.Kind, res.Instance)
		}

		for _, other := range active {
			if other == r {
				continue
			}
			inst, ok := other.Instance(res.Kind)
			if ok && !strings.EqualFold(inst, res.Instance) {
				return invalidState("route %q binds %s to %q but active route %q binds it to %q",
					r.Name, res.Kind, res.Instance, other.Name, inst)
			}
		}
	}
	return nil
}

func (e *Engine) checkArchived(r *route.PlacedRoute, active []*route.PlacedRoute) error {
	for _, res := range r.Resources {
		present, err := e.dirExists(e.resolver.ResourcePath(res.Kind, res.Instance, route.Archive))
		if err != nil {
			return err
		}
		if present || boundByActive(active, res) {
			continue
		}
		return invalidState("%s (%s) of route %q not found", res.Kind, res.Instance, r.Name)
	}
	return nil
}

// boundByActive reports whether an active route binds res.Kind to res.Instance.
func boundByActive(active []*route.PlacedRoute, res route.Resource) bool {
	for _, a := range active {
		if inst, ok := a.Instance(res.Kind); ok && strings.EqualFold(inst, res.Instance) {
			return true
		}
	}
	return false
}
