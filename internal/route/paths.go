package route

import "path/filepath"

// DefaultRoutesDir is the subfolder holding primary route directories.
const DefaultRoutesDir = "Routes"

// Resolver computes route directory paths at either location.
type Resolver struct {
	ActiveRoot  string
	ArchiveRoot string

	// RoutesDir defaults to DefaultRoutesDir when empty
	RoutesDir string
}

// NewResolver creates a Resolver for the two location roots.
func NewResolver(activeRoot, archiveRoot, routesDir string) *Resolver {
	if routesDir == "" {
		routesDir = DefaultRoutesDir
	}
	return &Resolver{
		ActiveRoot:  activeRoot,
		ArchiveRoot: archiveRoot,
		RoutesDir:   routesDir,
	}
}

// Root returns the root directory of a location.
func (r *Resolver) Root(loc Location) string {
	mustBeValid(loc)
	if loc == Active {
		return r.ActiveRoot
	}
	return r.ArchiveRoot
}

// RoutesRoot returns the directory holding primary route directories at loc.
func (r *Resolver) RoutesRoot(loc Location) string {
	dir := r.RoutesDir
	if dir == "" {
		dir = DefaultRoutesDir
	}
	return filepath.Join(r.Root(loc), dir)
}

// PrimaryPath returns the primary directory of the named route at loc.
func (r *Resolver) PrimaryPath(name string, loc Location) string {
	return filepath.Join(r.RoutesRoot(loc), name)
}

// ResourcePath returns the directory of a resource at loc. The active
// location has one slot per kind; the archive keeps one slot per instance.
func (r *Resolver) ResourcePath(kind, instance string, loc Location) string {
	if loc == Active {
		return filepath.Join(r.ActiveRoot, kind)
	}
	mustBeValid(loc)
	return filepath.Join(r.ArchiveRoot, instance)
}
