// Package logging configures slog for routemgr.
//
// Every directory relocation is logged. Logs go to a dated file under the
// data root (one file per day, the newest few kept) and, with --verbose,
// also to stderr.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danieljhkim/routemgr/internal/clock"
)

const (
	filePrefix = "routemgr-"
	fileSuffix = ".log"

	// DefaultRetain is the number of daily log files kept.
	DefaultRetain = 3
)

// Options configures Setup.
type Options struct {
	// Dir is the log directory; empty disables the file sink
	Dir string

	// Level is the minimum level written to the file sink
	Level slog.Level

	// Stderr, when non-nil, also receives records at Level and above
	Stderr io.Writer

	// Retain is the number of daily files to keep (DefaultRetain when zero)
	Retain int

	// Clock picks the file date (real clock when nil)
	Clock clock.Clock
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Setup builds a logger from opts. The returned closer releases the log file.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	clk := opts.Clock
	if clk == nil {
		clk = &clock.RealClock{}
	}
	retain := opts.Retain
	if retain <= 0 {
		retain = DefaultRetain
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var handlers []slog.Handler
	var closer io.Closer = nopCloser{}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		path := FilePath(opts.Dir, clk)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		closer = f
		handlers = append(handlers, slog.NewTextHandler(f, handlerOpts))

		if err := Prune(opts.Dir, retain); err != nil {
			_ = f.Close()
			return nil, nil, err
		}
	}

	if opts.Stderr != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Stderr, handlerOpts))
	}

	switch len(handlers) {
	case 0:
		return Discard(), closer, nil
	case 1:
		return slog.New(handlers[0]), closer, nil
	default:
		return slog.New(teeHandler(handlers)), closer, nil
	}
}

// FilePath returns today's log file path in dir.
func FilePath(dir string, clk clock.Clock) string {
	return filepath.Join(dir, filePrefix+clk.Now().Format("2006-01-02")+fileSuffix)
}

// Prune removes all but the newest retain log files in dir.
func Prune(dir string, retain int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), filePrefix) && strings.HasSuffix(e.Name(), fileSuffix) {
			names = append(names, e.Name())
		}
	}
	// dated names sort chronologically
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	var errs []error
	for i := retain; i < len(names); i++ {
		if err := os.Remove(filepath.Join(dir, names[i])); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to prune log files: %w", errors.Join(errs...))
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// teeHandler fans records out to several handlers.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
