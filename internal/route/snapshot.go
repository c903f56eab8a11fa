package route

import (
	"sort"
	"strings"
)

// Snapshot is the placement of every configured route after one discovery pass.
type Snapshot struct {
	Active   []*PlacedRoute
	Archived []*PlacedRoute
}

// NewSnapshot splits placed routes by location and sorts both lists by name.
func NewSnapshot(placed []*PlacedRoute) *Snapshot {
	s := &Snapshot{
		Active:   []*PlacedRoute{},
		Archived: []*PlacedRoute{},
	}
	for _, p := range placed {
		if p.Location == Active {
			s.Active = append(s.Active, p)
		} else {
			s.Archived = append(s.Archived, p)
		}
	}
	SortByName(s.Active)
	SortByName(s.Archived)
	return s
}

// SortByName sorts routes by name, case-insensitively with a byte-order tiebreak.
func SortByName(routes []*PlacedRoute) {
	sort.SliceStable(routes, func(i, j int) bool {
		a, b := strings.ToLower(routes[i].Name), strings.ToLower(routes[j].Name)
		if a != b {
			return a < b
		}
		return routes[i].Name < routes[j].Name
	})
}

// All returns active routes followed by archived routes.
func (s *Snapshot) All() []*PlacedRoute {
	all := make([]*PlacedRoute, 0, len(s.Active)+len(s.Archived))
	all = append(all, s.Active...)
	return append(all, s.Archived...)
}

// Find returns the route with the given name (case-insensitive), or nil.
func (s *Snapshot) Find(name string) *PlacedRoute {
	for _, p := range s.All() {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// ActiveDefinitions returns the definitions of every active route.
func (s *Snapshot) ActiveDefinitions() []Definition {
	defs := make([]Definition, 0, len(s.Active))
	for _, p := range s.Active {
		defs = append(defs, p.Definition)
	}
	return defs
}
