// Package runner drives a hide run in one of the three modes.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"autohide/internal/hider"
	"autohide/internal/outcome"
	"autohide/internal/rules"
	"autohide/internal/sweeper"
	"autohide/internal/util/logger/sl"
	"autohide/internal/watcher"
)

// Deps are the collaborators of a run.
type Deps struct {
	Hider hider.Hider
	// Recorder receives every outcome in addition to the run summary. It
	// may be nil.
	Recorder outcome.Recorder
	Logger   *slog.Logger
	Sweep    sweeper.Config
	Watch    watcher.Config
}

// Run executes mode over cfg. Immediate runs return when the sweep is done;
// watching runs block until ctx is cancelled. The error is non-nil only for
// failures that prevent the run as a whole.
func Run(ctx context.Context, deps Deps, cfg *rules.HideConfig, mode Mode) (outcome.Summary, error) {
	if !mode.sweeps() && !mode.watches() {
		return outcome.Summary{}, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Hider == nil {
		deps.Hider = hider.New()
	}

	log := deps.Logger.With(slog.String("mode", mode.String()))
	if deps.Sweep.Logger == nil {
		deps.Sweep.Logger = deps.Logger
	}
	if deps.Watch.Logger == nil {
		deps.Watch.Logger = deps.Logger
	}

	var counts tally
	rec := outcome.Tee(&counts, deps.Recorder)
	start := time.Now()

	summary := func() outcome.Summary {
		s := counts.Summary()
		s.Elapsed = time.Since(start)
		return s
	}

	if cfg.DryRun() {
		log.Info("dry run enabled, nothing will be hidden")
	}

	var fw *watcher.FileWatcher
	if mode.watches() {
		fw = watcher.NewFileWatcher(cfg, deps.Hider, rec, deps.Watch)
		// Watching starts paused so that changes made during the sweep are
		// queued rather than missed.
		if err := fw.Start(); err != nil {
			return summary(), fmt.Errorf("start watcher: %w", err)
		}
	}

	if mode.sweeps() {
		log.Info("sweeping",
			slog.Any("roots", cfg.Roots()),
			slog.Bool("recursive", cfg.Recursive()),
			slog.Bool("case_sensitive", cfg.CaseSensitive()),
		)
		outcomes := sweeper.New(deps.Hider, rec, deps.Sweep).Run(ctx, cfg)

		if fw != nil {
			fw.Absorb(outcomes...)
		}
	}

	if fw == nil {
		return summary(), nil
	}

	fw.Resume()
	log.Info("watching for changes", slog.Any("roots", cfg.Roots()), slog.Bool("recursive", cfg.Recursive()))

	<-ctx.Done()

	if err := fw.Stop(); err != nil {
		log.Warn("failed to stop watcher", sl.Err(err))
	}
	log.Debug("watcher stopped", slog.Any("stats", fw.Stats()))

	return summary(), nil
}
