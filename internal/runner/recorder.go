package runner

import (
	"log/slog"
	"sync"

	"autohide/internal/outcome"
	"autohide/internal/util/logger/sl"
)

// LogRecorder writes one log line per outcome.
type LogRecorder struct {
	log *slog.Logger
}

func NewLogRecorder(log *slog.Logger) *LogRecorder {
	return &LogRecorder{log: log}
}

func (r *LogRecorder) Record(o outcome.Outcome) {
	path := slog.String("path", o.Path)
	kind := slog.String("kind", o.Kind.String())

	switch o.Action {
	case outcome.ActionHidden:
		r.log.Info("hidden", path, kind, slog.String("target", o.Target))
	case outcome.ActionAlreadyHidden:
		r.log.Debug("already hidden", path, kind)
	case outcome.ActionSkipped:
		if o.DryRun() {
			r.log.Info("would hide", path, kind)
			return
		}
		r.log.Debug("skipped", path, kind, sl.Err(o.Err))
	case outcome.ActionFailed:
		r.log.Warn("failed to hide", path, kind, sl.Err(o.Err))
	}
}

// tally counts outcomes as they are recorded.
type tally struct {
	mu      sync.Mutex
	summary outcome.Summary
}

func (t *tally) Record(o outcome.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.summary.Add(o)
}

func (t *tally) Summary() outcome.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary
}
