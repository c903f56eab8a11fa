// Package route holds the route catalog model shared by discovery and moves.
//
// A route is one primary directory plus one or more resource directories
// (e.g. "Global", "Sound"). Routes live at exactly one of two locations:
// the active location, which binds a single instance per resource kind, and
// the archive location, which keeps every resource instance under its own name.
package route

import (
	"fmt"
	"strings"
)

// Resource binds a resource kind to a concrete instance name.
type Resource struct {
	// Kind is the resource category (e.g. "Global")
	Kind string `json:"kind"`

	// Instance is the named directory satisfying the kind (e.g. "GlobalA")
	Instance string `json:"instance"`
}

// Definition is the immutable, configured description of a route.
type Definition struct {
	// Name is the unique route name (case-insensitive)
	Name string

	// Resources is the ordered list of resource bindings
	Resources []Resource
}

// NewDefinition creates a Definition from a name and ordered resource bindings.
func NewDefinition(name string, resources ...Resource) Definition {
	return Definition{
		Name:      name,
		Resources: append([]Resource(nil), resources...),
	}
}

// Instance returns the instance bound to kind, matching kinds case-insensitively.
func (d Definition) Instance(kind string) (string, bool) {
	for _, r := range d.Resources {
		if strings.EqualFold(r.Kind, kind) {
			return r.Instance, true
		}
	}
	return "", false
}

// Location is where a route currently sits.
type Location int

const (
	// Active is the location the simulator reads from.
	Active Location = iota

	// Archive is the external storage location.
	Archive
)

// String returns the lowercase location name.
func (l Location) String() string {
	switch l {
	case Active:
		return "active"
	case Archive:
		return "archive"
	default:
		return fmt.Sprintf("Location(%d)", int(l))
	}
}

// Opposite returns the other location.
func (l Location) Opposite() Location {
	mustBeValid(l)
	if l == Active {
		return Archive
	}
	return Active
}

// ParseLocation parses "active" or "archive" (case-insensitive).
func ParseLocation(s string) (Location, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return Active, nil
	case "archive":
		return Archive, nil
	default:
		return 0, fmt.Errorf("invalid location %q: must be active or archive", s)
	}
}

func mustBeValid(l Location) {
	if l != Active && l != Archive {
		panic(fmt.Sprintf("route: invalid location %d", int(l)))
	}
}

// Compatibility classifies an archived route against the active set.
type Compatibility int

const (
	// Unknown means there is nothing active to compare against.
	Unknown Compatibility = iota

	// Full means the route can join the active set without evictions.
	Full

	// Partial means the route agrees with part of the active set.
	Partial

	// None means the route conflicts with every active route.
	None
)

// String returns the lowercase compatibility name.
func (c Compatibility) String() string {
	switch c {
	case Unknown:
		return "unknown"
	case Full:
		return "full"
	case Partial:
		return "partial"
	case None:
		return "none"
	default:
		return fmt.Sprintf("Compatibility(%d)", int(c))
	}
}

// PlacedRoute is a route definition with its discovered placement.
// It is rebuilt on every discovery pass and never persisted.
type PlacedRoute struct {
	Definition

	// Location is where the primary directory was found
	Location Location

	// Compatibility is relative to the active set at discovery time
	Compatibility Compatibility
}
