package watcher

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"autohide/internal/hider"
	"autohide/internal/outcome"
	"autohide/internal/rules"
	"autohide/internal/util/logger/sl"
)

type state uint8

const (
	stateIdle state = iota
	stateWatching
	stateStopped
)

// FileWatcher hides entries as they appear under the configured roots.
//
// A pump goroutine normalizes fsnotify events into a bounded queue. A single
// event loop owns the set of watched directories, feeds the debouncer and
// hides the paths it hands back.
type FileWatcher struct {
	cfg       *rules.HideConfig
	hider     hider.Hider
	recorder  outcome.Recorder
	config    Config
	logger    *slog.Logger
	metrics   *WatcherMetrics
	debouncer *Debouncer

	watcher *fsnotify.Watcher
	queue   chan ChangeEvent
	ready   chan ChangeEvent

	// watched is only touched by Start before the loop runs and by the loop.
	watched map[string]struct{}

	// suppressMu guards suppressed and moves.
	suppressMu  sync.Mutex
	suppressed  map[string]time.Time
	moves       map[string]move
	suppressTTL time.Duration

	resumeOnce sync.Once
	resumeChan chan struct{}
	stopChan   chan struct{}
	wg         sync.WaitGroup

	mu    sync.Mutex
	state state
}

// move records a directory renamed by a hide, for events still addressed to
// paths below its old name.
type move struct {
	target string
	until  time.Time
}

// NewFileWatcher returns an idle watcher for the roots of cfg. rec may be nil.
func NewFileWatcher(cfg *rules.HideConfig, h hider.Hider, rec outcome.Recorder, config Config) *FileWatcher {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if rec == nil {
		rec = outcome.RecorderFunc(func(outcome.Outcome) {})
	}

	ttl := 4 * config.Debounce
	if ttl < minSuppressTTL {
		ttl = minSuppressTTL
	}

	ready := make(chan ChangeEvent, config.QueueSize)

	return &FileWatcher{
		cfg:         cfg,
		hider:       h,
		recorder:    rec,
		config:      config,
		logger:      config.Logger.With(slog.String("component", "watcher")),
		metrics:     NewWatcherMetrics(),
		debouncer:   NewDebouncer(config.Debounce, ready),
		queue:       make(chan ChangeEvent, config.QueueSize),
		ready:       ready,
		watched:     make(map[string]struct{}),
		suppressed:  make(map[string]time.Time),
		moves:       make(map[string]move),
		suppressTTL: ttl,
		resumeChan:  make(chan struct{}),
		stopChan:    make(chan struct{}),
	}
}

// Start subscribes to every root, and to every existing subdirectory when
// recursive, then starts the pump and the event loop. The watcher starts
// paused: changes are collected but nothing is hidden until Resume.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	switch fw.state {
	case stateWatching:
		return ErrAlreadyStarted
	case stateStopped:
		return ErrWatcherClosed
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	fw.watcher = w

	subscribed := 0
	for _, root := range fw.cfg.Roots() {
		if err := fw.register(root, false); err != nil {
			fw.logger.Debug("root not watched", slog.String("root", root), sl.Err(err))
			continue
		}
		subscribed++
	}

	if subscribed == 0 {
		fw.state = stateStopped
		fw.debouncer.Stop()
		_ = w.Close()
		return ErrNoSubscriptions
	}

	fw.state = stateWatching
	fw.wg.Add(2)
	go fw.pump()
	go fw.run()

	fw.logger.Debug("watching",
		slog.Int("roots", subscribed),
		slog.Int64("dirs", fw.metrics.Stats().DirsWatched),
	)
	return nil
}

// Resume arms the debouncer. Changes collected while paused are processed
// once their quiet period has passed.
func (fw *FileWatcher) Resume() {
	fw.resumeOnce.Do(func() {
		close(fw.resumeChan)
	})
}

// Absorb takes note of hides that already happened so the notifications
// they cause are not acted on again. The targets of Hidden outcomes are
// suppressed. For a directory that was renamed, suppressions and pending
// events below its old path follow it to the new one. Outcomes must be given
// in the order they were produced.
func (fw *FileWatcher) Absorb(outcomes ...outcome.Outcome) {
	until := time.Now().Add(fw.suppressTTL)

	fw.suppressMu.Lock()
	var moved []outcome.Outcome
	for _, o := range outcomes {
		if o.Action != outcome.ActionHidden || o.Target == "" {
			continue
		}
		fw.suppressed[o.Target] = until
		if o.Kind != rules.KindDirectory || o.Target == o.Path {
			continue
		}

		fw.moves[o.Path] = move{target: o.Target, until: until}
		prefix := o.Path + string(filepath.Separator)
		for path, t := range fw.suppressed {
			if rest, ok := strings.CutPrefix(path, prefix); ok {
				fw.suppressed[filepath.Join(o.Target, rest)] = t
			}
		}
		moved = append(moved, o)
	}
	fw.suppressMu.Unlock()

	for _, o := range moved {
		if n := fw.debouncer.Rebase(o.Path, o.Target); n > 0 {
			fw.logger.Debug("pending events moved",
				slog.String("from", o.Path),
				slog.String("to", o.Target),
				slog.Int("events", n),
			)
		}
	}
}

// Stop ends the session: the loop finishes its current item, goroutines are
// joined and every watch is released. Stop is idempotent.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	prev := fw.state
	fw.state = stateStopped

	switch prev {
	case stateStopped:
		return nil
	case stateIdle:
		fw.debouncer.Stop()
		return nil
	}

	close(fw.stopChan)
	fw.wg.Wait()
	fw.debouncer.Stop()

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (fw *FileWatcher) Stats() Stats {
	return fw.metrics.Stats()
}

// pump moves fsnotify notifications into the queue.
func (fw *FileWatcher) pump() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.stopChan:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			ev, ok := normalize(event)
			if !ok {
				continue
			}
			select {
			case fw.queue <- ev:
			case <-fw.stopChan:
				return
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.handleError(err)
		}
	}
}

func (fw *FileWatcher) run() {
	defer fw.wg.Done()

	resume := fw.resumeChan
	for {
		select {
		case <-fw.stopChan:
			return
		case <-resume:
			resume = nil
			fw.debouncer.Arm()
			fw.logger.Debug("resumed", slog.Int("pending", fw.debouncer.Pending()))
		case ev := <-fw.queue:
			fw.receive(ev)
		case ev := <-fw.ready:
			fw.process(ev)
		}
	}
}

// normalize maps an fsnotify event to a ChangeEvent. Chmod-only events are
// dropped.
func normalize(event fsnotify.Event) (ChangeEvent, bool) {
	if event.Op&watchedOps == 0 {
		return ChangeEvent{}, false
	}

	ev := ChangeEvent{Path: filepath.Clean(event.Name), Timestamp: time.Now()}
	switch {
	case event.Has(fsnotify.Create):
		ev.Kind = EventCreated
	case event.Has(fsnotify.Write):
		ev.Kind = EventOther
	case event.Has(fsnotify.Rename):
		ev.Kind = EventRenamed
	default:
		ev.Kind = EventRemoved
	}
	return ev, true
}

// receive handles a fresh event on the loop: it keeps the watched set in
// step with the tree and hands in-scope events to the debouncer.
func (fw *FileWatcher) receive(ev ChangeEvent) {
	fw.metrics.RecordEvent(ev)
	if path, ok := fw.relocate(ev.Path); ok {
		ev.Path = path
	}

	switch ev.Kind {
	case EventRemoved:
		fw.unregister(ev.Path)
		fw.metrics.RecordDropped()
		return
	case EventRenamed:
		if _, err := os.Lstat(ev.Path); err != nil {
			fw.unregister(ev.Path)
		}
	}

	if !fw.shouldProcessEvent(ev) {
		fw.metrics.RecordDropped()
		return
	}

	if ev.Kind == EventCreated && fw.cfg.Recursive() && !fw.isWatched(ev.Path) {
		if info, err := os.Lstat(ev.Path); err == nil && info.IsDir() {
			// Entries created before the watch was in place produce no
			// events of their own.
			if err := fw.register(ev.Path, true); err != nil {
				fw.logger.Debug("new directory not watched", slog.String("path", ev.Path), sl.Err(err))
			}
		}
	}

	fw.debouncer.Debounce(ev)
}

func (fw *FileWatcher) shouldProcessEvent(ev ChangeEvent) bool {
	for _, pattern := range fw.config.IgnorePatterns {
		if pattern != "" && strings.Contains(ev.Path, pattern) {
			fw.logger.Debug("ignoring event",
				slog.String("path", ev.Path),
				slog.String("pattern", pattern),
			)
			return false
		}
	}

	// Only children of watched directories are in scope.
	return fw.isWatched(filepath.Dir(ev.Path))
}

// process runs on the loop for every event whose quiet period has passed.
func (fw *FileWatcher) process(ev ChangeEvent) {
	if fw.isSuppressed(ev.Path) {
		fw.metrics.RecordDropped()
		return
	}

	info, err := os.Lstat(ev.Path)
	if err != nil {
		// Events that fired before their directory was hidden still carry
		// the old path.
		if path, ok := fw.relocate(ev.Path); ok {
			if fw.isSuppressed(path) {
				fw.metrics.RecordDropped()
				return
			}
			ev.Path = path
			info, err = os.Lstat(path)
		}
	}
	if err != nil {
		if ev.Kind == EventRenamed {
			// The new name arrives as its own Create.
			fw.metrics.RecordDropped()
			return
		}
		kind := rules.KindFile
		if fw.isWatched(ev.Path) {
			kind = rules.KindDirectory
		}
		fw.metrics.RecordProcessed()
		fw.emit(outcome.Skipped(ev.Path, kind, outcome.ErrVanished))
		return
	}

	fw.metrics.RecordProcessed()

	kind := rules.KindFile
	if info.IsDir() {
		kind = rules.KindDirectory
	}
	e := rules.NewEntry(ev.Path, kind)
	if !rules.Matches(e, fw.cfg) {
		return
	}

	if fw.cfg.DryRun() {
		fw.emit(outcome.Skipped(e.Path, e.Kind, outcome.ErrDryRun))
		return
	}

	res, err := fw.hider.Hide(e.Path)
	o := outcome.FromHide(e, res, err)
	fw.emit(o)

	if o.Action != outcome.ActionHidden || o.Target == o.Path {
		return
	}
	fw.Absorb(o)

	if kind == rules.KindDirectory && fw.isWatched(e.Path) {
		fw.unregister(e.Path)
		if err := fw.register(o.Target, false); err != nil {
			fw.logger.Warn("failed to follow hidden directory",
				slog.String("path", o.Target),
				sl.Err(err),
			)
		}
	}
}

func (fw *FileWatcher) emit(o outcome.Outcome) {
	fw.metrics.RecordOutcome(o)
	fw.recorder.Record(o)
}

// register watches dir and, when recursive, every directory below it. With
// scan set, every entry found below dir is fed to the debouncer as Created.
// It fails only when dir itself cannot be watched; failures further down
// become Failed outcomes.
func (fw *FileWatcher) register(dir string, scan bool) error {
	if err := fw.watcher.Add(dir); err != nil {
		fw.emit(outcome.Failed(dir, rules.KindDirectory, err))
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	fw.watched[dir] = struct{}{}
	fw.metrics.RecordDirectoryAdded()

	if !fw.cfg.Recursive() && !scan {
		return nil
	}

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if path == dir {
			if err != nil {
				fw.emit(outcome.Failed(dir, rules.KindDirectory, err))
			}
			return nil
		}
		if err != nil {
			fw.emit(outcome.Failed(path, rules.KindDirectory, err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if scan {
			fw.debouncer.Debounce(ChangeEvent{Path: path, Kind: EventCreated, Timestamp: time.Now()})
		}

		if !d.IsDir() {
			return nil
		}
		if !fw.cfg.Recursive() || fw.isWatched(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.emit(outcome.Failed(path, rules.KindDirectory, err))
			return filepath.SkipDir
		}
		fw.watched[path] = struct{}{}
		fw.metrics.RecordDirectoryAdded()
		return nil
	})

	return nil
}

// unregister drops the watches for dir and every watched directory below it.
func (fw *FileWatcher) unregister(dir string) {
	prefix := dir + string(filepath.Separator)
	for path := range fw.watched {
		if path != dir && !strings.HasPrefix(path, prefix) {
			continue
		}
		// fsnotify already forgot watches whose directory was removed or moved.
		if err := fw.watcher.Remove(path); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
			fw.logger.Debug("failed to remove watch", slog.String("path", path), sl.Err(err))
		}
		delete(fw.watched, path)
		fw.metrics.RecordDirectoryRemoved()
		fw.logger.Debug("stopped watching", slog.String("path", path))
	}
}

func (fw *FileWatcher) isWatched(path string) bool {
	_, ok := fw.watched[path]
	return ok
}

// relocate translates a path below a directory that was renamed by a hide
// into its current location.
func (fw *FileWatcher) relocate(path string) (string, bool) {
	fw.suppressMu.Lock()
	defer fw.suppressMu.Unlock()

	now := time.Now()
	for dir, m := range fw.moves {
		if now.After(m.until) {
			delete(fw.moves, dir)
		}
	}

	moved := false
	// Directories are hidden children first, so the deepest move applies
	// first and each pass climbs one level.
	for i := 0; i <= len(fw.moves); i++ {
		from, to := "", ""
		for dir, m := range fw.moves {
			if len(dir) > len(from) && strings.HasPrefix(path, dir+string(filepath.Separator)) {
				from, to = dir, m.target
			}
		}
		if from == "" {
			break
		}
		path, moved = filepath.Join(to, strings.TrimPrefix(path, from+string(filepath.Separator))), true
	}
	return path, moved
}

func (fw *FileWatcher) isSuppressed(path string) bool {
	fw.suppressMu.Lock()
	defer fw.suppressMu.Unlock()

	until, ok := fw.suppressed[path]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(fw.suppressed, path)
		return false
	}
	return true
}

func (fw *FileWatcher) handleError(err error) {
	fw.metrics.RecordError()
	fw.logger.Warn("watch error", sl.Err(err))
}
