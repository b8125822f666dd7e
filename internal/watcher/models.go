package watcher

import (
	"fmt"
	"log/slog"
	"time"
)

// EventKind is the normalized kind of a filesystem change.
type EventKind uint8

const (
	EventRenamed EventKind = iota + 1
	EventOther
	EventCreated
	// EventRemoved only carries subscription loss to the event loop. It is
	// never debounced or matched.
	EventRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventRenamed:
		return "renamed"
	case EventOther:
		return "other"
	case EventRemoved:
		return "removed"
	default:
		return fmt.Sprintf("event(%d)", uint8(k))
	}
}

// stronger reports whether k outranks other when two events for the same
// path are merged: Created > Other > Renamed.
func (k EventKind) stronger(other EventKind) bool {
	return k > other
}

// ChangeEvent is one normalized filesystem notification.
type ChangeEvent struct {
	Path      string
	Kind      EventKind
	Timestamp time.Time
}

// merge folds later into e, keeping the strongest kind and the latest time.
func (e ChangeEvent) merge(later ChangeEvent) ChangeEvent {
	if later.Kind.stronger(e.Kind) {
		e.Kind = later.Kind
	}
	if later.Timestamp.After(e.Timestamp) {
		e.Timestamp = later.Timestamp
	}
	return e
}

// Config holds the FileWatcher settings that are not part of the hide rules.
type Config struct {
	// Debounce is the quiet period after the last event for a path before
	// the path is processed.
	Debounce time.Duration
	// QueueSize bounds the channel between the notification pump and the
	// event loop.
	QueueSize int
	// IgnorePatterns drops events whose path contains any of the substrings.
	IgnorePatterns []string
	Logger         *slog.Logger
}
