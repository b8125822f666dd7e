// Package journal keeps a persistent log of runs and the outcomes they
// produced.
package journal

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	RunsBucket     = "runs"
	OutcomesBucket = "outcomes"

	defaultOpenTimeout = time.Second
)

type Journal struct {
	db         *bbolt.DB
	mu         sync.RWMutex
	serializer Serializer
	log        *slog.Logger
}

type Config struct {
	Path       string
	FileMode   os.FileMode
	Options    *bbolt.Options
	Serializer Serializer
	Logger     *slog.Logger
}

// DefaultPath is the journal location used when none is configured.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(dir, "autohide", "journal.db"), nil
}

// Open opens or creates the journal at cfg.Path.
func Open(cfg Config) (*Journal, error) {
	if cfg.Serializer == nil {
		cfg.Serializer = &GobSerializer{}
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0600
	}
	if cfg.Options == nil {
		// Another process holding the journal must not hang this one.
		cfg.Options = &bbolt.Options{Timeout: defaultOpenTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := bbolt.Open(cfg.Path, cfg.FileMode, cfg.Options)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", cfg.Path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{RunsBucket, OutcomesBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal: %w", err)
	}

	return &Journal{
		db:         db,
		serializer: cfg.Serializer,
		log:        cfg.Logger.With(slog.String("component", "journal")),
	}, nil
}

func (j *Journal) Close() error {
	if j.db == nil {
		return ErrNilDB
	}
	return j.db.Close()
}

// BeginRun stores a new unfinished run and returns the recorder that
// appends its outcomes.
func (j *Journal) BeginRun(mode string, roots []string, dryRun bool) (*RunRecorder, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}

	run := Run{
		ID:      id,
		Mode:    mode,
		Roots:   append([]string(nil), roots...),
		DryRun:  dryRun,
		Started: time.Now(),
	}
	if err := j.putRun(run); err != nil {
		return nil, err
	}

	return newRunRecorder(j, run), nil
}

// Runs returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (j *Journal) Runs(limit int) ([]Run, error) {
	var runs []Run

	j.mu.RLock()
	defer j.mu.RUnlock()

	err := j.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(RunsBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}

		c := bucket.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(runs) >= limit {
				break
			}
			var run Run
			if err := j.serializer.Deserialize(v, &run); err != nil {
				return fmt.Errorf("decode run %x: %w", k, err)
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// Run loads a single run by id.
func (j *Journal) Run(id uuid.UUID) (Run, error) {
	var run Run

	j.mu.RLock()
	defer j.mu.RUnlock()

	err := j.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(RunsBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}

		data := bucket.Get(id[:])
		if data == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return j.serializer.Deserialize(data, &run)
	})
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// Outcomes returns the stored outcomes of a run in the order they were
// recorded. A limit of zero or less returns all of them.
func (j *Journal) Outcomes(id uuid.UUID, limit int) ([]Record, error) {
	var records []Record

	j.mu.RLock()
	defer j.mu.RUnlock()

	err := j.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(RunsBucket)).Get(id[:]) == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}

		bucket := tx.Bucket([]byte(OutcomesBucket)).Bucket(id[:])
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(_, v []byte) error {
			if limit > 0 && len(records) >= limit {
				return nil
			}
			var r Record
			if err := j.serializer.Deserialize(v, &r); err != nil {
				return err
			}
			records = append(records, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteRun removes a run and its outcomes.
func (j *Journal) DeleteRun(id uuid.UUID) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.db.Update(func(tx *bbolt.Tx) error {
		runs := tx.Bucket([]byte(RunsBucket))
		if runs.Get(id[:]) == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		if err := runs.Delete(id[:]); err != nil {
			return err
		}
		outcomes := tx.Bucket([]byte(OutcomesBucket))
		if outcomes.Bucket(id[:]) == nil {
			return nil
		}
		return outcomes.DeleteBucket(id[:])
	})
}

func (j *Journal) putRun(run Run) error {
	data, err := j.serializer.Serialize(run)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	return j.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(RunsBucket))
		if err != nil {
			return err
		}
		return bucket.Put(run.ID[:], data)
	})
}

// appendRecords stores records under the run in one transaction.
func (j *Journal) appendRecords(id uuid.UUID, records []Record) error {
	encoded := make([][]byte, 0, len(records))
	for _, r := range records {
		data, err := j.serializer.Serialize(r)
		if err != nil {
			return fmt.Errorf("encode outcome: %w", err)
		}
		encoded = append(encoded, data)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	return j.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.Bucket([]byte(OutcomesBucket)).CreateBucketIfNotExists(id[:])
		if err != nil {
			return err
		}
		for _, data := range encoded {
			seq, err := bucket.NextSequence()
			if err != nil {
				return err
			}
			if err := bucket.Put(itob(seq), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// itob encodes a sequence number as a sortable key.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
