package integration

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/danieljhkim/routemgr/internal/clock"
	"github.com/danieljhkim/routemgr/internal/config"
	"github.com/danieljhkim/routemgr/internal/engine"
	"github.com/danieljhkim/routemgr/internal/fsops"
	"github.com/danieljhkim/routemgr/internal/route"
	"github.com/danieljhkim/routemgr/internal/state"
)

// testFS is a filesystem implementation that tracks directories and files in
// memory for testing.
type testFS struct {
	files map[string][]byte
	dirs  map[string]bool
	moves int
}

var _ fsops.FS = (*testFS)(nil)

func newTestFS() *testFS {
	return &testFS{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true},
	}
}

func (fs *testFS) DirExists(path string) (bool, error) {
	return fs.dirs[filepath.Clean(path)], nil
}

func (fs *testFS) Exists(path string) (bool, error) {
	path = filepath.Clean(path)
	_, hasFile := fs.files[path]
	return hasFile || fs.dirs[path], nil
}

// MoveDir renames src and everything beneath it, refusing to overwrite dst.
func (fs *testFS) MoveDir(src, dst string) error {
	src, dst = filepath.Clean(src), filepath.Clean(dst)
	if !fs.dirs[src] {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: os.ErrNotExist}
	}
	if exists, _ := fs.Exists(dst); exists {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: os.ErrExist}
	}
	if !fs.dirs[filepath.Dir(dst)] {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: os.ErrNotExist}
	}

	prefix := src + string(filepath.Separator)
	for dir := range fs.dirs {
		if dir == src || strings.HasPrefix(dir, prefix) {
			delete(fs.dirs, dir)
			fs.dirs[dst+strings.TrimPrefix(dir, src)] = true
		}
	}
	for file, data := range fs.files {
		if strings.HasPrefix(file, prefix) {
			delete(fs.files, file)
			fs.files[dst+strings.TrimPrefix(file, src)] = data
		}
	}
	fs.moves++
	return nil
}

func (fs *testFS) MkdirAll(path string, perm os.FileMode) error {
	for p := filepath.Clean(path); !fs.dirs[p]; p = filepath.Dir(p) {
		fs.dirs[p] = true
	}
	return nil
}

func (fs *testFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	fs.files[filepath.Clean(path)] = append([]byte(nil), data...)
	return nil
}

func (fs *testFS) ReadFile(path string) ([]byte, error) {
	data, ok := fs.files[filepath.Clean(path)]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (fs *testFS) ValidateIdentifier(id string) error {
	return fsops.ValidateIdentifier(id)
}

// tree lists every directory, sorted, for before/after comparisons.
func (fs *testFS) tree() []string {
	out := make([]string, 0, len(fs.dirs))
	for dir := range fs.dirs {
		out = append(out, dir)
	}
	sort.Strings(out)
	return out
}

const (
	activeRoot  = "/sim"
	archiveRoot = "/store"
	journalPath = "/data/journal.json"
)

type testEnv struct {
	fs       *testFS
	cfg      *config.Config
	resolver *route.Resolver
	journal  *state.FileJournalStore
	clock    *clock.FakeClock
	engine   *engine.Engine
}

// setupTestEngine parses catalog and wires an engine over an in-memory tree
// with both location roots and their routes folders present.
func setupTestEngine(t *testing.T, catalog string) *testEnv {
	t.Helper()

	cfg, err := config.Parse([]byte("active_path: " + activeRoot + "\narchive_path: " + archiveRoot + "\n" + catalog))
	if err != nil {
		t.Fatalf("failed to parse catalog: %v", err)
	}

	fs := newTestFS()
	resolver := cfg.Resolver()
	_ = fs.MkdirAll(resolver.RoutesRoot(route.Active), 0755)
	_ = fs.MkdirAll(resolver.RoutesRoot(route.Archive), 0755)
	_ = fs.MkdirAll(filepath.Dir(journalPath), 0755)

	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	journal := state.NewFileJournalStore(fs, journalPath)

	return &testEnv{
		fs:       fs,
		cfg:      cfg,
		resolver: resolver,
		journal:  journal,
		clock:    clk,
		engine:   engine.New(fs, resolver, cfg.Definitions(), journal, clk, nil),
	}
}

// place creates a route's primary directory at loc.
func (e *testEnv) place(name string, loc route.Location) {
	_ = e.fs.MkdirAll(e.resolver.PrimaryPath(name, loc), 0755)
}

// activeSlot fills the active slot of kind, tagging it with the instance.
func (e *testEnv) activeSlot(kind, instance string) {
	dir := e.resolver.ResourcePath(kind, instance, route.Active)
	_ = e.fs.MkdirAll(dir, 0755)
	e.fs.files[filepath.Join(dir, "instance")] = []byte(instance)
}

// archived stores an instance in the archive.
func (e *testEnv) archived(instance string) {
	dir := e.resolver.ResourcePath("", instance, route.Archive)
	_ = e.fs.MkdirAll(dir, 0755)
	e.fs.files[filepath.Join(dir, "instance")] = []byte(instance)
}

// boundInstance reports which instance fills an active slot.
func (e *testEnv) boundInstance(kind string) string {
	return string(e.fs.files[filepath.Join(e.resolver.ResourcePath(kind, "", route.Active), "instance")])
}

// assertConsistent checks the placement invariants of a discovered snapshot.
func assertConsistent(t *testing.T, env *testEnv, snap *route.Snapshot) {
	t.Helper()

	seen := make(map[string]int)
	for _, p := range snap.All() {
		seen[strings.ToLower(p.Name)]++
	}
	for _, def := range env.cfg.Definitions() {
		if seen[strings.ToLower(def.Name)] != 1 {
			t.Errorf("route %s appears %d times", def.Name, seen[strings.ToLower(def.Name)])
		}
	}

	for i, a := range snap.Active {
		if a.Compatibility != route.Full {
			t.Errorf("active route %s classified %s", a.Name, a.Compatibility)
		}
		for _, b := range snap.Active[i+1:] {
			if !route.IsCompatible(a.Definition, b.Definition) {
				t.Errorf("active routes %s and %s are incompatible", a.Name, b.Name)
			}
		}
		for _, res := range a.Resources {
			if got := env.boundInstance(res.Kind); !strings.EqualFold(got, res.Instance) {
				t.Errorf("active slot %s holds %q, route %s needs %q", res.Kind, got, a.Name, res.Instance)
			}
		}
	}
}
