package watcher

import (
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Debouncer coalesces bursts of events per path. Each path gets a
// trailing-edge timer; when it fires, the merged event is sent to out. While
// the debouncer is not armed, events are merged but no timer runs.
type Debouncer struct {
	duration time.Duration
	out      chan<- ChangeEvent
	done     chan struct{}

	mu      sync.Mutex
	pending map[string]*pendingEvent
	armed   bool
	stopped bool
}

type pendingEvent struct {
	event ChangeEvent
	timer *time.Timer
	gen   uint64
}

func NewDebouncer(duration time.Duration, out chan<- ChangeEvent) *Debouncer {
	return &Debouncer{
		duration: duration,
		out:      out,
		done:     make(chan struct{}),
		pending:  make(map[string]*pendingEvent),
	}
}

// Debounce records ev and restarts the timer for its path.
func (d *Debouncer) Debounce(ev ChangeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	p, exists := d.pending[ev.Path]
	if exists {
		p.event = p.event.merge(ev)
	} else {
		p = &pendingEvent{event: ev}
		d.pending[ev.Path] = p
	}

	if d.armed {
		d.schedule(ev.Path, p)
	}
}

// Arm starts the timers for everything merged so far and for every later
// event.
func (d *Debouncer) Arm() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.armed || d.stopped {
		return
	}
	d.armed = true
	for key, p := range d.pending {
		d.schedule(key, p)
	}
}

// Pending reports how many paths are waiting for their timer.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Rebase moves every pending event below oldDir to the same relative path
// below newDir, merging with an event already pending there. It returns the
// number of events moved.
func (d *Debouncer) Rebase(oldDir, newDir string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return 0
	}

	prefix := oldDir + string(filepath.Separator)
	var keys []string
	for key := range d.pending {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	for _, key := range keys {
		p := d.pending[key]
		delete(d.pending, key)
		if p.timer != nil {
			p.timer.Stop()
		}

		ev := p.event
		ev.Path = filepath.Join(newDir, strings.TrimPrefix(key, prefix))
		if q, ok := d.pending[ev.Path]; ok {
			q.event = q.event.merge(ev)
			p = q
		} else {
			p = &pendingEvent{event: ev}
			d.pending[ev.Path] = p
		}
		if d.armed {
			d.schedule(ev.Path, p)
		}
	}
	return len(keys)
}

// Stop cancels every timer and drops pending events. Timers that already
// fired give up their delivery.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	close(d.done)
	for key, p := range d.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(d.pending, key)
	}
}

// schedule must be called with d.mu held.
func (d *Debouncer) schedule(key string, p *pendingEvent) {
	if p.timer != nil {
		p.timer.Stop()
	}
	p.gen++
	gen := p.gen
	p.timer = time.AfterFunc(d.duration, func() {
		d.fire(key, p, gen)
	})
}

func (d *Debouncer) fire(key string, p *pendingEvent, gen uint64) {
	d.mu.Lock()
	if d.pending[key] != p || p.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	ev := p.event
	d.mu.Unlock()

	select {
	case d.out <- ev:
	case <-d.done:
	}
}
