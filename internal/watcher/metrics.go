package watcher

import (
	"log/slog"
	"sync/atomic"
	"time"

	"autohide/internal/outcome"
)

// Stats is a snapshot of the watcher counters.
type Stats struct {
	EventsReceived  int64
	EventsDropped   int64
	EventsProcessed int64
	Hidden          int64
	Failed          int64
	Errors          int64
	DirsWatched     int64
	LastEvent       time.Time
}

// LogValue renders the snapshot as a log group.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("events_received", s.EventsReceived),
		slog.Int64("events_dropped", s.EventsDropped),
		slog.Int64("events_processed", s.EventsProcessed),
		slog.Int64("hidden", s.Hidden),
		slog.Int64("failed", s.Failed),
		slog.Int64("errors", s.Errors),
		slog.Int64("dirs_watched", s.DirsWatched),
	)
}

type WatcherMetrics struct {
	eventsReceived  atomic.Int64
	eventsDropped   atomic.Int64
	eventsProcessed atomic.Int64
	hidden          atomic.Int64
	failed          atomic.Int64
	errors          atomic.Int64
	dirsWatched     atomic.Int64
	lastEventTime   atomic.Int64
}

func NewWatcherMetrics() *WatcherMetrics {
	return &WatcherMetrics{}
}

func (m *WatcherMetrics) RecordEvent(ev ChangeEvent) {
	m.eventsReceived.Add(1)
	m.lastEventTime.Store(ev.Timestamp.UnixNano())
}

func (m *WatcherMetrics) RecordDropped() {
	m.eventsDropped.Add(1)
}

func (m *WatcherMetrics) RecordOutcome(o outcome.Outcome) {
	switch o.Action {
	case outcome.ActionHidden:
		m.hidden.Add(1)
	case outcome.ActionFailed:
		m.failed.Add(1)
	}
}

func (m *WatcherMetrics) RecordProcessed() {
	m.eventsProcessed.Add(1)
}

func (m *WatcherMetrics) RecordError() {
	m.errors.Add(1)
}

func (m *WatcherMetrics) RecordDirectoryAdded() {
	m.dirsWatched.Add(1)
}

func (m *WatcherMetrics) RecordDirectoryRemoved() {
	m.dirsWatched.Add(-1)
}

func (m *WatcherMetrics) Stats() Stats {
	s := Stats{
		EventsReceived:  m.eventsReceived.Load(),
		EventsDropped:   m.eventsDropped.Load(),
		EventsProcessed: m.eventsProcessed.Load(),
		Hidden:          m.hidden.Load(),
		Failed:          m.failed.Load(),
		Errors:          m.errors.Load(),
		DirsWatched:     m.dirsWatched.Load(),
	}
	if ns := m.lastEventTime.Load(); ns != 0 {
		s.LastEvent = time.Unix(0, ns)
	}
	return s
}
