// Package engine provides the core business logic for routemgr operations.
//
// The engine package acts as the orchestration layer between CLI commands and
// lower-level operations. It discovers where every configured route sits,
// classifies archived routes against the active set, and executes move plans.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Discover: Builds a placement snapshot and validates consistency
//   - Move: Plans and executes relocations, evicting conflicting routes
//
// The engine holds no placement state between calls; every Move works on the
// snapshot returned by the preceding Discover.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/danieljhkim/routemgr/internal/clock"
	"github.com/danieljhkim/routemgr/internal/fsops"
	"github.com/danieljhkim/routemgr/internal/logging"
	"github.com/danieljhkim/routemgr/internal/route"
	"github.com/danieljhkim/routemgr/internal/state"
)

// Engine orchestrates all routemgr operations.
// It is the main API surface called by the CLI.
type Engine struct {
	fs       fsops.FS
	resolver *route.Resolver
	routes   []route.Definition
	journal  state.JournalStore
	clock    clock.Clock
	logger   *slog.Logger
	newID    func() string
}

// New creates a new Engine with the given dependencies.
// journal and logger may be nil.
func New(
	fs fsops.FS,
	resolver *route.Resolver,
	routes []route.Definition,
	journal state.JournalStore,
	clk clock.Clock,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	if clk == nil {
		clk = &clock.RealClock{}
	}
	return &Engine{
		fs:       fs,
		resolver: resolver,
		routes:   append([]route.Definition(nil), routes...),
		journal:  journal,
		clock:    clk,
		logger:   logger,
		newID:    func() string { return uuid.NewString() },
	}
}

// Resolver returns the path resolver the engine uses.
func (e *Engine) Resolver() *route.Resolver {
	return e.resolver
}

// Routes returns the configured route definitions.
func (e *Engine) Routes() []route.Definition {
	return append([]route.Definition(nil), e.routes...)
}

// Journal returns the move journal, or nil if none is configured.
func (e *Engine) Journal() state.JournalStore {
	return e.journal
}

func (e *Engine) dirExists(path string) (bool, error) {
	exists, err := e.fs.DirExists(path)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
	return exists, nil
}
