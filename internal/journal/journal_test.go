package journal

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autohide/internal/outcome"
	"autohide/internal/rules"
)

type testHelper struct {
	journal *Journal
	dir     string
}

func setupTest(t *testing.T) *testHelper {
	t.Helper()

	dir := t.TempDir()
	cfg := Config{
		Path:       filepath.Join(dir, "nested", "journal.db"),
		FileMode:   0600,
		Serializer: &GobSerializer{},
	}

	j, err := Open(cfg)
	require.NoError(t, err)
	require.NotNil(t, j)

	t.Cleanup(func() {
		j.Close()
	})

	return &testHelper{
		journal: j,
		dir:     dir,
	}
}

func hiddenOutcome(name string) outcome.Outcome {
	e := rules.NewEntry("/d/"+name, rules.KindFile)
	return outcome.Outcome{
		Path:   e.Path,
		Target: "/d/." + name,
		Kind:   e.Kind,
		Action: outcome.ActionHidden,
		Time:   time.Now(),
	}
}

func TestJournal_RunLifecycle(t *testing.T) {
	h := setupTest(t)

	rec, err := h.journal.BeginRun("immediate", []string{"/d"}, false)
	require.NoError(t, err)

	run, err := h.journal.Run(rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "immediate", run.Mode)
	assert.Equal(t, []string{"/d"}, run.Roots)
	assert.False(t, run.Done())

	rec.Record(hiddenOutcome("a.txt"))
	rec.Record(outcome.Failed("/d/b.txt", rules.KindFile, errors.New("boom")))

	summary := outcome.Summary{Hidden: 1, Failed: 1, Elapsed: time.Second}
	require.NoError(t, rec.Finish(summary))
	assert.ErrorIs(t, rec.Finish(summary), ErrRunFinished)

	run, err = h.journal.Run(rec.ID())
	require.NoError(t, err)
	assert.True(t, run.Done())
	assert.Equal(t, summary, run.Summary)

	records, err := h.journal.Outcomes(rec.ID(), 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "/d/a.txt", records[0].Path)
	assert.Equal(t, "/d/.a.txt", records[0].Target)
	assert.Equal(t, "hidden", records[0].Action)
	assert.Equal(t, "file", records[0].Kind)
	assert.Equal(t, "failed", records[1].Action)
	assert.Equal(t, "boom", records[1].Error)
}

func TestJournal_RunsNewestFirst(t *testing.T) {
	h := setupTest(t)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		rec, err := h.journal.BeginRun(fmt.Sprintf("run-%d", i), nil, false)
		require.NoError(t, err)
		ids = append(ids, rec.ID())
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := h.journal.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)

	limited, err := h.journal.Runs(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "run-2", limited[0].Mode)
}

func TestJournal_ManyOutcomesAreBatched(t *testing.T) {
	h := setupTest(t)

	rec, err := h.journal.BeginRun("immediate", nil, false)
	require.NoError(t, err)

	total := flushSize*2 + 10
	for i := 0; i < total; i++ {
		rec.Record(hiddenOutcome(fmt.Sprintf("f%d", i)))
	}
	require.NoError(t, rec.Finish(outcome.Summary{Hidden: total}))

	records, err := h.journal.Outcomes(rec.ID(), 0)
	require.NoError(t, err)
	require.Len(t, records, total)
	assert.Equal(t, "/d/f0", records[0].Path)
	assert.Equal(t, fmt.Sprintf("/d/f%d", total-1), records[total-1].Path)

	limited, err := h.journal.Outcomes(rec.ID(), 5)
	require.NoError(t, err)
	assert.Len(t, limited, 5)
}

func TestJournal_UnknownRun(t *testing.T) {
	h := setupTest(t)

	_, err := h.journal.Run(uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = h.journal.Outcomes(uuid.New(), 0)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestJournal_DeleteRun(t *testing.T) {
	h := setupTest(t)

	rec, err := h.journal.BeginRun("watch", nil, false)
	require.NoError(t, err)
	rec.Record(hiddenOutcome("a.txt"))
	require.NoError(t, rec.Finish(outcome.Summary{Hidden: 1}))

	require.NoError(t, h.journal.DeleteRun(rec.ID()))

	_, err = h.journal.Run(rec.ID())
	assert.ErrorIs(t, err, ErrRunNotFound)
	runs, err := h.journal.Runs(0)
	require.NoError(t, err)
	assert.Empty(t, runs)

	assert.ErrorIs(t, h.journal.DeleteRun(rec.ID()), ErrRunNotFound)
}

func TestJournal_Reopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	j, err := Open(Config{Path: path})
	require.NoError(t, err)
	rec, err := j.BeginRun("immediate", []string{"/d"}, true)
	require.NoError(t, err)
	require.NoError(t, rec.Finish(outcome.Summary{Skipped: 3}))
	require.NoError(t, j.Close())

	j, err = Open(Config{Path: path})
	require.NoError(t, err)
	defer j.Close()

	run, err := j.Run(rec.ID())
	require.NoError(t, err)
	assert.True(t, run.DryRun)
	assert.Equal(t, 3, run.Summary.Skipped)
}
