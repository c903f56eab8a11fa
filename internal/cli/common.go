package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/routemgr/internal/clock"
	"github.com/danieljhkim/routemgr/internal/config"
	"github.com/danieljhkim/routemgr/internal/engine"
	"github.com/danieljhkim/routemgr/internal/fsops"
	"github.com/danieljhkim/routemgr/internal/logging"
	"github.com/danieljhkim/routemgr/internal/state"
)

// app bundles everything a command needs.
type app struct {
	paths  *config.Paths
	cfg    *config.Config
	engine *engine.Engine
	logger *slog.Logger
	closer io.Closer
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// resolvePaths returns the data paths with the --config override applied.
func resolvePaths() (*config.Paths, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}
	return paths.WithConfig(configPath), nil
}

// newApp loads and validates the config and creates an engine with real
// implementations of all dependencies.
func newApp(cmd *cobra.Command) (*app, error) {
	paths, err := resolvePaths()
	if err != nil {
		return nil, err
	}

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clk := &clock.RealClock{}
	opts := logging.Options{
		Dir:   paths.Logs,
		Level: slog.LevelInfo,
		Clock: clk,
	}
	if verbose {
		opts.Level = slog.LevelDebug
		opts.Stderr = cmd.ErrOrStderr()
	}
	logger, closer, err := logging.Setup(opts)
	if err != nil {
		return nil, err
	}

	fs := fsops.NewRealFS()
	journal := state.NewFileJournalStore(fs, paths.Journal)
	eng := engine.New(fs, cfg.Resolver(), cfg.Definitions(), journal, clk, logger)

	return &app{
		paths:  paths,
		cfg:    cfg,
		engine: eng,
		logger: logger,
		closer: closer,
	}, nil
}

// formatJSON formats a value as JSON.
func formatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatError formats an error for display.
func formatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON writes a value as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
