package logging

import (
	"log/slog"
	"time"
)

// Canonical log field names shared by the engine and CLI.
const (
	KeyRoute    = "route"
	KeySource   = "source"
	KeyDest     = "dest"
	KeyLocation = "location"
	KeyStep     = "step"
	KeyMoveID   = "move_id"
	KeyError    = "error"
	KeyElapsed  = "elapsed"
)

func Route(name string) slog.Attr   { return slog.String(KeyRoute, name) }
func Source(path string) slog.Attr  { return slog.String(KeySource, path) }
func Dest(path string) slog.Attr    { return slog.String(KeyDest, path) }
func Location(loc string) slog.Attr { return slog.String(KeyLocation, loc) }
func Step(done, total int) slog.Attr {
	return slog.Group(KeyStep, slog.Int("done", done), slog.Int("total", total))
}
func MoveID(id string) slog.Attr { return slog.String(KeyMoveID, id) }
func Elapsed(d time.Duration) slog.Attr {
	return slog.Duration(KeyElapsed, d)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
