package journal

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/google/uuid"

	"autohide/internal/outcome"
)

// Run is one invocation of the tool as stored in the journal.
type Run struct {
	ID       uuid.UUID
	Mode     string
	Roots    []string
	DryRun   bool
	Started  time.Time
	Finished time.Time
	Summary  outcome.Summary
}

// Done reports whether the run was finished cleanly.
func (r Run) Done() bool {
	return !r.Finished.IsZero()
}

// Record is a stored outcome.
type Record struct {
	Path   string
	Target string
	Kind   string
	Action string
	Error  string
	Time   time.Time
}

func newRecord(o outcome.Outcome) Record {
	r := Record{
		Path:   o.Path,
		Target: o.Target,
		Kind:   o.Kind.String(),
		Action: o.Action.String(),
		Time:   o.Time,
	}
	if o.Err != nil {
		r.Error = o.Err.Error()
	}
	return r
}

// Serializer encodes values stored in the journal.
type Serializer interface {
	Serialize(v interface{}) ([]byte, error)
	Deserialize(data []byte, v interface{}) error
}

// GobSerializer implements Serializer with encoding/gob.
type GobSerializer struct{}

func (s *GobSerializer) Serialize(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *GobSerializer) Deserialize(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
