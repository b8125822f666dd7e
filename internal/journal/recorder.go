package journal

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"autohide/internal/outcome"
	"autohide/internal/util/logger/sl"
)

const (
	flushSize     = 256
	flushInterval = time.Second
)

// RunRecorder appends the outcomes of one run to the journal. Outcomes are
// written in batches; an outcome arriving after a quiet second is written
// at once.
type RunRecorder struct {
	journal *Journal
	run     Run

	mu        sync.Mutex
	buf       []Record
	lastFlush time.Time
	finished  bool
	failed    int
}

func newRunRecorder(j *Journal, run Run) *RunRecorder {
	return &RunRecorder{journal: j, run: run}
}

func (r *RunRecorder) ID() uuid.UUID {
	return r.run.ID
}

func (r *RunRecorder) Record(o outcome.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return
	}
	r.buf = append(r.buf, newRecord(o))
	if len(r.buf) >= flushSize || time.Since(r.lastFlush) >= flushInterval {
		r.flush()
	}
}

// Finish writes what is buffered and marks the run finished with s.
func (r *RunRecorder) Finish(s outcome.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return ErrRunFinished
	}
	r.finished = true
	r.flush()

	r.run.Finished = time.Now()
	r.run.Summary = s
	if err := r.journal.putRun(r.run); err != nil {
		return fmt.Errorf("finish run %s: %w", r.run.ID, err)
	}
	if r.failed > 0 {
		return fmt.Errorf("journal lost %d outcomes of run %s", r.failed, r.run.ID)
	}
	return nil
}

// flush must be called with r.mu held.
func (r *RunRecorder) flush() {
	r.lastFlush = time.Now()
	if len(r.buf) == 0 {
		return
	}

	if err := r.journal.appendRecords(r.run.ID, r.buf); err != nil {
		r.failed += len(r.buf)
		r.journal.log.Warn("failed to write outcomes",
			slog.String("run", r.run.ID.String()),
			slog.Int("count", len(r.buf)),
			sl.Err(err),
		)
	}
	r.buf = r.buf[:0]
}
