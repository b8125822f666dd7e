package outcome

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"autohide/internal/hider"
	"autohide/internal/rules"
)

func TestFromHide(t *testing.T) {
	e := rules.NewEntry("/d/a.txt", rules.KindFile)

	tests := []struct {
		name     string
		res      hider.Result
		err      error
		expected Action
		target   string
	}{
		{"Hidden", hider.Result{Status: hider.Hidden, Path: "/d/.a.txt"}, nil, ActionHidden, "/d/.a.txt"},
		{"Already hidden", hider.Result{Status: hider.AlreadyHidden, Path: "/d/a.txt"}, nil, ActionAlreadyHidden, "/d/a.txt"},
		{"Failed", hider.Result{}, hider.ErrNameCollision, ActionFailed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := FromHide(e, tt.res, tt.err)
			assert.Equal(t, tt.expected, o.Action)
			assert.Equal(t, "/d/a.txt", o.Path)
			assert.Equal(t, tt.target, o.Target)
			assert.Equal(t, rules.KindFile, o.Kind)
			assert.ErrorIs(t, o.Err, tt.err)
			assert.False(t, o.Time.IsZero())
		})
	}
}

func TestSkipped(t *testing.T) {
	dry := Skipped("/d/a", rules.KindFile, ErrDryRun)
	assert.True(t, dry.DryRun())
	assert.Equal(t, "/d/a", dry.Target)

	gone := Skipped("/d/a", rules.KindFile, ErrVanished)
	assert.False(t, gone.DryRun())
}

func TestSummarize(t *testing.T) {
	outcomes := []Outcome{
		{Action: ActionHidden},
		{Action: ActionHidden},
		{Action: ActionAlreadyHidden},
		{Action: ActionSkipped},
		{Action: ActionFailed, Err: errors.New("boom")},
	}

	s := Summarize(outcomes, 1500*time.Millisecond)
	assert.Equal(t, 2, s.Hidden)
	assert.Equal(t, 1, s.AlreadyHidden)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 5, s.Total())
	assert.Equal(t, "2 hidden, 1 already hidden, 1 skipped, 1 failed in 1.5s", s.String())

	big := Summary{Hidden: 1002, Elapsed: time.Second}
	assert.Contains(t, big.String(), "1,002 hidden")
}

func TestTeeAndCollector(t *testing.T) {
	var a, b Collector
	rec := Tee(&a, nil, &b)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Record(Outcome{Action: ActionHidden})
		}()
	}
	wg.Wait()

	assert.Len(t, a.Outcomes(), 10)
	assert.Len(t, b.Outcomes(), 10)
}
