// Package outcome describes what happened to each entry the engine looked at.
package outcome

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"autohide/internal/hider"
	"autohide/internal/rules"
)

// Action is what happened to one entry.
type Action uint8

const (
	ActionHidden Action = iota + 1
	ActionAlreadyHidden
	ActionSkipped
	ActionFailed
)

func (a Action) String() string {
	switch a {
	case ActionHidden:
		return "hidden"
	case ActionAlreadyHidden:
		return "already_hidden"
	case ActionSkipped:
		return "skipped"
	case ActionFailed:
		return "failed"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

var (
	// ErrDryRun is the reason attached to outcomes of a dry run.
	ErrDryRun = errors.New("dry run")
	// ErrVanished is the reason attached when a path disappeared before it
	// could be examined.
	ErrVanished = errors.New("path vanished")
)

// Outcome is the result of attempting to hide one entry.
type Outcome struct {
	Path   string
	Target string
	Kind   rules.Kind
	Action Action
	Err    error
	Time   time.Time
}

// FromHide converts a hider result into an outcome.
func FromHide(e rules.Entry, res hider.Result, err error) Outcome {
	if err != nil {
		return Failed(e.Path, e.Kind, err)
	}
	o := Outcome{
		Path:   e.Path,
		Target: res.Path,
		Kind:   e.Kind,
		Action: ActionHidden,
		Time:   time.Now(),
	}
	if res.Status == hider.AlreadyHidden {
		o.Action = ActionAlreadyHidden
	}
	return o
}

// Skipped builds a Skipped outcome; reason is ErrDryRun or ErrVanished.
func Skipped(path string, kind rules.Kind, reason error) Outcome {
	return Outcome{Path: path, Target: path, Kind: kind, Action: ActionSkipped, Err: reason, Time: time.Now()}
}

func Failed(path string, kind rules.Kind, err error) Outcome {
	return Outcome{Path: path, Kind: kind, Action: ActionFailed, Err: err, Time: time.Now()}
}

// DryRun reports whether o stands in for a hide that was not performed.
func (o Outcome) DryRun() bool {
	return o.Action == ActionSkipped && errors.Is(o.Err, ErrDryRun)
}

// Recorder receives outcomes as they are produced. Implementations must be
// safe for concurrent use.
type Recorder interface {
	Record(o Outcome)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(o Outcome)

func (f RecorderFunc) Record(o Outcome) { f(o) }

// Tee fans outcomes out to several recorders in order.
func Tee(recorders ...Recorder) Recorder {
	return RecorderFunc(func(o Outcome) {
		for _, r := range recorders {
			if r != nil {
				r.Record(o)
			}
		}
	})
}

// Collector keeps every recorded outcome in memory.
type Collector struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (c *Collector) Record(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
}

// Outcomes returns a copy of everything recorded so far.
func (c *Collector) Outcomes() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Outcome(nil), c.outcomes...)
}
