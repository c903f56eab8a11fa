package planner

import (
	"path/filepath"

	"github.com/danieljhkim/routemgr/internal/fsops"
)

// DirChecker is the slice of fsops.FS the planner needs.
type DirChecker interface {
	DirExists(path string) (bool, error)
}

var _ DirChecker = (fsops.FS)(nil)

// View layers planned moves over the real filesystem so later planning
// steps see the effect of earlier ones.
type View struct {
	base    DirChecker
	planned map[string]bool
}

// NewView creates a View over base.
func NewView(base DirChecker) *View {
	return &View{
		base:    base,
		planned: make(map[string]bool),
	}
}

// DirExists reports whether path will exist once the planned moves so far
// have run.
func (v *View) DirExists(path string) (bool, error) {
	if exists, ok := v.planned[filepath.Clean(path)]; ok {
		return exists, nil
	}
	return v.base.DirExists(path)
}

// Move records a planned move of src to dst.
func (v *View) Move(src, dst string) {
	v.planned[filepath.Clean(src)] = false
	v.planned[filepath.Clean(dst)] = true
}
