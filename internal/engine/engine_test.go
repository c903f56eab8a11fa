package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/routemgr/internal/clock"
	"github.com/danieljhkim/routemgr/internal/fsops"
	"github.com/danieljhkim/routemgr/internal/route"
	"github.com/danieljhkim/routemgr/internal/state"
)

// fixture is a pair of location roots in a temp directory.
type fixture struct {
	t        *testing.T
	active   string
	archive  string
	resolver *route.Resolver
	fs       fsops.FS
	journal  *state.FileJournalStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		t:       t,
		active:  filepath.Join(root, "sim"),
		archive: filepath.Join(root, "store"),
		fs:      fsops.NewRealFS(),
	}
	f.resolver = route.NewResolver(f.active, f.archive, "")
	f.journal = state.NewFileJournalStore(f.fs, filepath.Join(root, "journal.json"))
	f.mkdir(f.resolver.RoutesRoot(route.Active))
	f.mkdir(f.resolver.RoutesRoot(route.Archive))
	return f
}

func (f *fixture) mkdir(path string) {
	f.t.Helper()
	require.NoError(f.t, os.MkdirAll(path, 0755))
}

// place creates the primary directory of def at loc.
func (f *fixture) place(def route.Definition, loc route.Location) {
	f.mkdir(f.resolver.PrimaryPath(def.Name, loc))
}

// activeSlot creates the active slot for kind, tagged with the bound instance.
func (f *fixture) activeSlot(kind, instance string) {
	f.t.Helper()
	dir := f.resolver.ResourcePath(kind, instance, route.Active)
	f.mkdir(dir)
	require.NoError(f.t, os.WriteFile(filepath.Join(dir, "instance"), []byte(instance), 0644))
}

// archived creates the archive slot for an instance.
func (f *fixture) archived(instance string) {
	f.t.Helper()
	dir := f.resolver.ResourcePath("", instance, route.Archive)
	f.mkdir(dir)
	require.NoError(f.t, os.WriteFile(filepath.Join(dir, "instance"), []byte(instance), 0644))
}

func (f *fixture) exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// boundInstance reads which instance currently fills an active slot.
func (f *fixture) boundInstance(kind string) string {
	f.t.Helper()
	data, err := os.ReadFile(filepath.Join(f.resolver.ResourcePath(kind, "", route.Active), "instance"))
	require.NoError(f.t, err)
	return string(data)
}

func (f *fixture) engine(defs ...route.Definition) *Engine {
	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	return New(f.fs, f.resolver, defs, f.journal, clk, nil)
}

func def(name string, pairs ...string) route.Definition {
	var res []route.Resource
	for i := 0; i+1 < len(pairs); i += 2 {
		res = append(res, route.Resource{Kind: pairs[i], Instance: pairs[i+1]})
	}
	return route.NewDefinition(name, res...)
}

type placement struct {
	Location      string
	Compatibility string
}

func placements(s *route.Snapshot) map[string]placement {
	out := make(map[string]placement)
	for _, p := range s.All() {
		out[p.Name] = placement{p.Location.String(), p.Compatibility.String()}
	}
	return out
}

// sharedScenario: R1{G1,S1} active, R2{G1,S2} archived with S2 in the archive.
func sharedScenario(t *testing.T) (*fixture, *Engine) {
	f := newFixture(t)
	r1 := def("R1", "Global", "G1", "Sound", "S1")
	r2 := def("R2", "Global", "G1", "Sound", "S2")
	f.place(r1, route.Active)
	f.activeSlot("Global", "G1")
	f.activeSlot("Sound", "S1")
	f.place(r2, route.Archive)
	f.archived("S2")
	return f, f.engine(r1, r2)
}

func TestDiscover_SharedResourceScenario(t *testing.T) {
	_, eng := sharedScenario(t)

	snap, err := eng.Discover(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Active, 1)
	require.Len(t, snap.Archived, 1)
	assert.Equal(t, "R1", snap.Active[0].Name)
	assert.Equal(t, route.Full, snap.Active[0].Compatibility)
	assert.Equal(t, "R2", snap.Archived[0].Name)
	assert.Equal(t, route.Partial, snap.Archived[0].Compatibility)
}

func TestDiscover_EveryRouteAppearsOnce(t *testing.T) {
	f := newFixture(t)
	defs := []route.Definition{
		def("Charlie", "Global", "G1"),
		def("alpha", "Global", "G1", "Sound", "S1"),
		def("Bravo", "Global", "G2"),
		def("delta", "Sound", "S3"),
	}
	f.place(defs[0], route.Active)
	f.place(defs[1], route.Active)
	f.activeSlot("Global", "G1")
	f.activeSlot("Sound", "S1")
	f.place(defs[2], route.Archive)
	f.archived("G2")
	f.place(defs[3], route.Archive)
	f.archived("S3")

	snap, err := f.engine(defs...).Discover(context.Background())
	require.NoError(t, err)

	seen := map[string]int{}
	for _, p := range snap.All() {
		seen[p.Name]++
	}
	for _, d := range defs {
		assert.Equal(t, 1, seen[d.Name], "route %s", d.Name)
	}

	assert.Equal(t, []string{"alpha", "Charlie"}, names(snap.Active))
	assert.Equal(t, []string{"Bravo", "delta"}, names(snap.Archived))
	assert.Equal(t, route.None, snap.Find("Bravo").Compatibility)
	// delta binds nothing Charlie binds, so it is compatible with one active route
	assert.Equal(t, route.Partial, snap.Find("delta").Compatibility)
}

func names(routes []*route.PlacedRoute) []string {
	out := make([]string, 0, len(routes))
	for _, r := range routes {
		out = append(out, r.Name)
	}
	return out
}

func TestDiscover_Idempotent(t *testing.T) {
	_, eng := sharedScenario(t)
	ctx := context.Background()

	first, err := eng.Discover(ctx)
	require.NoError(t, err)
	second, err := eng.Discover(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(placements(first), placements(second)); diff != "" {
		t.Errorf("discover not idempotent (-first +second):\n%s", diff)
	}
}

func TestDiscover_AllArchivedIsUnknown(t *testing.T) {
	f := newFixture(t)
	r1 := def("R1", "Global", "G1")
	f.place(r1, route.Archive)
	f.archived("G1")

	snap, err := f.engine(r1).Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Archived, 1)
	assert.Equal(t, route.Unknown, snap.Archived[0].Compatibility)
	assert.Empty(t, snap.Active)
}

func TestDiscover_InvalidStates(t *testing.T) {
	r1 := def("R1", "Global", "G1", "Sound", "S1")
	r2 := def("R2", "Global", "G2")

	tests := []struct {
		name    string
		defs    []route.Definition
		setup   func(f *fixture)
		wantMsg string
	}{
		{
			name:    "route missing at both locations",
			defs:    []route.Definition{r1},
			setup:   func(f *fixture) {},
			wantMsg: `route "R1" not found`,
		},
		{
			name: "route present at both locations",
			defs: []route.Definition{r1},
			setup: func(f *fixture) {
				f.place(r1, route.Active)
				f.place(r1, route.Archive)
			},
			wantMsg: "both the active and archive",
		},
		{
			name: "active route missing a resource",
			defs: []route.Definition{r1},
			setup: func(f *fixture) {
				f.place(r1, route.Active)
				f.activeSlot("Global", "G1")
			},
			wantMsg: `Sound of route "R1" not found`,
		},
		{
			name: "active resource duplicated in archive",
			defs: []route.Definition{r1},
			setup: func(f *fixture) {
				f.place(r1, route.Active)
				f.activeSlot("Global", "G1")
				f.activeSlot("Sound", "S1")
				f.archived("S1")
			},
			wantMsg: "is in the archive",
		},
		{
			name: "active routes disagree on a kind",
			defs: []route.Definition{r1, r2},
			setup: func(f *fixture) {
				f.place(r1, route.Active)
				f.place(r2, route.Active)
				f.activeSlot("Global", "G1")
				f.activeSlot("Sound", "S1")
			},
			wantMsg: "binds Global",
		},
		{
			name: "archived resource unresolvable",
			defs: []route.Definition{r1, r2},
			setup: func(f *fixture) {
				f.place(r1, route.Active)
				f.activeSlot("Global", "G1")
				f.activeSlot("Sound", "S1")
				f.place(r2, route.Archive)
			},
			wantMsg: `Global (G2) of route "R2" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			snap, err := f.engine(tt.defs...).Discover(context.Background())
			assert.Nil(t, snap)
			require.ErrorIs(t, err, ErrInvalidState)

			var ise *InvalidStateError
			require.ErrorAs(t, err, &ise)
			assert.Contains(t, ise.Reason, tt.wantMsg)
		})
	}
}

func TestDiscover_ArchivedResourceBoundByActiveRoute(t *testing.T) {
	f := newFixture(t)
	r1 := def("R1", "Global", "G1", "Sound", "S1")
	r3 := def("R3", "Global", "g1")
	f.place(r1, route.Active)
	f.activeSlot("Global", "G1")
	f.activeSlot("Sound", "S1")
	f.place(r3, route.Archive)

	snap, err := f.engine(r1, r3).Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, route.Full, snap.Find("R3").Compatibility)
}

func TestMove_ActivateEvictsIncompatible(t *testing.T) {
	f, eng := sharedScenario(t)
	ctx := context.Background()

	snap, err := eng.Discover(ctx)
	require.NoError(t, err)

	result, err := eng.Move(ctx, &MoveRequest{Snapshot: snap, Route: "r2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"R1"}, result.Plan.Evicted)
	assert.Len(t, result.Applied, 4)
	assert.Equal(t, route.Active, result.Snapshot.Find("R2").Location)
	assert.Equal(t, route.Archive, result.Snapshot.Find("R1").Location)

	// R1's exclusive Sound went to the archive, S2 is bound, Global untouched.
	assert.True(t, f.exists(f.resolver.ResourcePath("Sound", "S1", route.Archive)))
	assert.False(t, f.exists(f.resolver.ResourcePath("Sound", "S2", route.Archive)))
	assert.Equal(t, "S2", f.boundInstance("Sound"))
	assert.Equal(t, "G1", f.boundInstance("Global"))
	assert.False(t, f.exists(f.resolver.ResourcePath("Global", "G1", route.Archive)))

	after, err := eng.Discover(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"R2"}, names(after.Active))
	assert.Equal(t, []string{"R1"}, names(after.Archived))
	assert.Equal(t, route.Partial, after.Find("R1").Compatibility)
}

func TestMove_EvictsAllIncompatibleRoutes(t *testing.T) {
	f := newFixture(t)
	a := def("A", "Global", "G1")
	b := def("B", "Global", "G1", "Sound", "S1")
	c := def("C", "Trees", "T1")
	target := def("T", "Global", "G2", "Sound", "S2")
	f.place(a, route.Active)
	f.place(b, route.Active)
	f.place(c, route.Active)
	f.activeSlot("Global", "G1")
	f.activeSlot("Sound", "S1")
	f.activeSlot("Trees", "T1")
	f.place(target, route.Archive)
	f.archived("G2")
	f.archived("S2")

	eng := f.engine(a, b, c, target)
	ctx := context.Background()

	snap, err := eng.Discover(ctx)
	require.NoError(t, err)
	assert.Equal(t, route.Partial, snap.Find("T").Compatibility)

	result, err := eng.Move(ctx, &MoveRequest{Snapshot: snap, Route: "T", Direction: ToActive})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B"}, result.Plan.Evicted)

	after, err := eng.Discover(ctx)
	require.NoError(t, err)
	for _, evicted := range []string{"A", "B"} {
		assert.Equal(t, route.Archive, after.Find(evicted).Location, evicted)
	}
	assert.Equal(t, route.Active, after.Find("C").Location)
	assert.Equal(t, route.Active, after.Find("T").Location)
	for _, res := range target.Resources {
		assert.True(t, f.exists(f.resolver.ResourcePath(res.Kind, res.Instance, route.Active)), res.Kind)
	}
	assert.Equal(t, "G2", f.boundInstance("Global"))
	assert.Equal(t, "S2", f.boundInstance("Sound"))
	assert.Equal(t, "T1", f.boundInstance("Trees"))
}

func TestMove_ArchiveOnlyActiveRoute(t *testing.T) {
	f := newFixture(t)
	r1 := def("R1", "Global", "G1", "Sound", "S1")
	f.place(r1, route.Active)
	f.activeSlot("Global", "G1")
	f.activeSlot("Sound", "S1")

	eng := f.engine(r1)
	ctx := context.Background()
	snap, err := eng.Discover(ctx)
	require.NoError(t, err)

	result, err := eng.Move(ctx, &MoveRequest{Snapshot: snap, Route: "R1", Direction: ToArchive})
	require.NoError(t, err)
	assert.Len(t, result.Applied, 3)

	assert.False(t, f.exists(f.resolver.PrimaryPath("R1", route.Active)))
	assert.False(t, f.exists(f.resolver.ResourcePath("Global", "G1", route.Active)))
	assert.False(t, f.exists(f.resolver.ResourcePath("Sound", "S1", route.Active)))
	assert.True(t, f.exists(f.resolver.PrimaryPath("R1", route.Archive)))
	assert.True(t, f.exists(f.resolver.ResourcePath("Global", "G1", route.Archive)))
	assert.True(t, f.exists(f.resolver.ResourcePath("Sound", "S1", route.Archive)))
}

func TestMove_RoundTrip(t *testing.T) {
	_, eng := sharedScenario(t)
	ctx := context.Background()

	before, err := eng.Discover(ctx)
	require.NoError(t, err)
	original := placements(before)

	first, err := eng.Move(ctx, &MoveRequest{Snapshot: before, Route: "R1"})
	require.NoError(t, err)
	assert.Equal(t, route.Archive, first.Snapshot.Find("R1").Location)

	second, err := eng.Move(ctx, &MoveRequest{Snapshot: first.Snapshot, Route: "R1"})
	require.NoError(t, err)
	assert.Equal(t, route.Active, second.Snapshot.Find("R1").Location)

	after, err := eng.Discover(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(original, placements(after)); diff != "" {
		t.Errorf("round trip changed placements (-before +after):\n%s", diff)
	}
}

func TestMove_DryRunDoesNotTouchFilesystem(t *testing.T) {
	f, eng := sharedScenario(t)
	ctx := context.Background()
	snap, err := eng.Discover(ctx)
	require.NoError(t, err)

	result, err := eng.Move(ctx, &MoveRequest{Snapshot: snap, Route: "R2", DryRun: true})
	require.NoError(t, err)
	assert.Len(t, result.Plan.Operations, 4)
	assert.Empty(t, result.Applied)
	assert.Nil(t, result.Snapshot)
	assert.Equal(t, "S1", f.boundInstance("Sound"))

	entries, err := f.journal.List(0)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry runs are not journaled")

	plan, err := eng.Plan(ctx, snap, "R2")
	require.NoError(t, err)
	assert.Equal(t, result.Plan, plan)
}

func TestMove_Errors(t *testing.T) {
	_, eng := sharedScenario(t)
	ctx := context.Background()
	snap, err := eng.Discover(ctx)
	require.NoError(t, err)

	_, err = eng.Move(ctx, &MoveRequest{Snapshot: snap, Route: "Nowhere"})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = eng.Move(ctx, &MoveRequest{Snapshot: snap, Route: "R1", Direction: ToActive})
	assert.ErrorIs(t, err, ErrAlreadyPlaced)

	_, err = eng.Move(ctx, &MoveRequest{Snapshot: snap, Route: "R2", Direction: ToArchive})
	assert.ErrorIs(t, err, ErrAlreadyPlaced)

	_, err = eng.Move(ctx, &MoveRequest{Route: "R1"})
	assert.Error(t, err)
}

func TestMove_ConflictRefusesToStart(t *testing.T) {
	f := newFixture(t)
	target := def("T", "Sound", "S2")
	f.place(target, route.Archive)
	f.archived("S2")
	// orphaned active slot left by an interrupted move
	f.activeSlot("Sound", "S1")

	eng := f.engine(target)
	ctx := context.Background()
	snap, err := eng.Discover(ctx)
	require.NoError(t, err)

	result, err := eng.Move(ctx, &MoveRequest{Snapshot: snap, Route: "T"})
	require.ErrorIs(t, err, ErrInvalidState)
	require.NotNil(t, result)
	assert.True(t, result.Plan.HasConflicts())
	assert.Empty(t, result.Applied)
	assert.True(t, f.exists(f.resolver.PrimaryPath("T", route.Archive)))
}

// failingFS fails the nth MoveDir call (1-based).
type failingFS struct {
	fsops.FS
	failAt int
	calls  int
	err    error
}

func (f *failingFS) MoveDir(src, dst string) error {
	f.calls++
	if f.calls == f.failAt {
		return f.err
	}
	return f.FS.MoveDir(src, dst)
}

func TestMove_PartialFailureReportsProgress(t *testing.T) {
	f, _ := sharedScenario(t)
	boom := errors.New("device busy")
	ffs := &failingFS{FS: f.fs, failAt: 3, err: boom}

	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	eng := New(ffs, f.resolver, []route.Definition{
		def("R1", "Global", "G1", "Sound", "S1"),
		def("R2", "Global", "G1", "Sound", "S2"),
	}, f.journal, clk, nil)
	eng.newID = func() string { return "move-1" }

	ctx := context.Background()
	snap, err := eng.Discover(ctx)
	require.NoError(t, err)

	result, err := eng.Move(ctx, &MoveRequest{Snapshot: snap, Route: "R2"})
	require.ErrorIs(t, err, ErrMoveFailed)
	require.ErrorIs(t, err, boom)

	var moveErr *MoveError
	require.ErrorAs(t, err, &moveErr)
	assert.Equal(t, 2, moveErr.Completed)
	assert.Equal(t, 4, moveErr.Planned)
	assert.Len(t, result.Applied, 2)
	assert.Nil(t, result.Snapshot)

	entries, err := f.journal.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "move-1", entries[0].ID)
	assert.Equal(t, 2, entries[0].Completed)
	assert.False(t, entries[0].Succeeded())
	assert.Len(t, entries[0].Operations, 2)

	// R1 is half-evicted: the next discovery reports the damage
	_, err = eng.Discover(ctx)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestMove_JournalsSuccess(t *testing.T) {
	f, eng := sharedScenario(t)
	ctx := context.Background()
	snap, err := eng.Discover(ctx)
	require.NoError(t, err)

	result, err := eng.Move(ctx, &MoveRequest{Snapshot: snap, Route: "R2"})
	require.NoError(t, err)

	entries, err := f.journal.List(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, result.JournalID, entries[0].ID)
	assert.Equal(t, "archive", entries[0].From)
	assert.Equal(t, "active", entries[0].To)
	assert.True(t, entries[0].Succeeded())
	assert.Equal(t, []string{"R1"}, entries[0].Evicted)
}

func TestNew_WithoutJournalOrLogger(t *testing.T) {
	f := newFixture(t)
	r1 := def("R1", "Global", "G1")
	f.place(r1, route.Archive)
	f.archived("G1")

	eng := New(f.fs, f.resolver, []route.Definition{r1}, nil, nil, nil)
	ctx := context.Background()
	snap, err := eng.Discover(ctx)
	require.NoError(t, err)

	result, err := eng.Move(ctx, &MoveRequest{Snapshot: snap, Route: "R1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.JournalID)
	assert.Equal(t, "G1", f.boundInstance("Global"))
}
