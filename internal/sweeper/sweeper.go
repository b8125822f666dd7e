// Package sweeper performs one complete hide pass over the configured roots.
package sweeper

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"autohide/internal/hider"
	"autohide/internal/outcome"
	"autohide/internal/rules"
)

const DefaultWorkers = 4

// Config holds the sweeper settings that are not part of the hide rules.
type Config struct {
	// Workers bounds how many roots are swept concurrently.
	Workers int
	Logger  *slog.Logger
}

type Sweeper struct {
	hider    hider.Hider
	recorder outcome.Recorder
	workers  int
	log      *slog.Logger
}

// New returns a sweeper that hides with h and streams every outcome to rec.
// rec may be nil.
func New(h hider.Hider, rec outcome.Recorder, config Config) *Sweeper {
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if rec == nil {
		rec = outcome.RecorderFunc(func(outcome.Outcome) {})
	}

	return &Sweeper{
		hider:    h,
		recorder: rec,
		workers:  config.Workers,
		log:      config.Logger.With(slog.String("component", "sweeper")),
	}
}

// Run sweeps every root of cfg and returns the outcomes grouped by root, in
// root order. Roots are swept concurrently; a cancelled ctx stops the walk
// and returns what was gathered so far.
func (s *Sweeper) Run(ctx context.Context, cfg *rules.HideConfig) []outcome.Outcome {
	roots := cfg.Roots()
	results := make([][]outcome.Outcome, len(roots))
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			w := &walk{sweeper: s, cfg: cfg}
			w.children(ctx, root)
			results[i] = w.outcomes

			s.log.Debug("root swept",
				slog.String("root", root),
				slog.Int("outcomes", len(w.outcomes)),
			)
			return nil
		})
	}
	_ = g.Wait()

	var all []outcome.Outcome
	for _, r := range results {
		all = append(all, r...)
	}

	s.log.Debug("sweep finished",
		slog.Int("roots", len(roots)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return all
}

// walk is the state of one root's traversal. It is used by one goroutine.
type walk struct {
	sweeper  *Sweeper
	cfg      *rules.HideConfig
	outcomes []outcome.Outcome
}

// children visits the entries of dir. Subdirectories are descended into
// before they are themselves hidden, so renaming a directory never cuts
// its walk short.
func (w *walk) children(ctx context.Context, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.emit(outcome.Failed(dir, rules.KindDirectory, err))
	}

	for _, d := range entries {
		if ctx.Err() != nil {
			return
		}

		path := filepath.Join(dir, d.Name())
		kind := rules.KindFile
		if d.IsDir() {
			kind = rules.KindDirectory
			if w.cfg.Recursive() {
				w.children(ctx, path)
			}
		}

		w.visit(rules.NewEntry(path, kind))
	}
}

func (w *walk) visit(e rules.Entry) {
	if !rules.Matches(e, w.cfg) {
		return
	}
	if w.cfg.DryRun() {
		w.emit(outcome.Skipped(e.Path, e.Kind, outcome.ErrDryRun))
		return
	}

	res, err := w.sweeper.hider.Hide(e.Path)
	w.emit(outcome.FromHide(e, res, err))
}

func (w *walk) emit(o outcome.Outcome) {
	w.outcomes = append(w.outcomes, o)
	w.sweeper.recorder.Record(o)
}
