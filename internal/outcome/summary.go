package outcome

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Summary aggregates the outcomes of a run.
type Summary struct {
	Hidden        int
	AlreadyHidden int
	Skipped       int
	Failed        int
	Elapsed       time.Duration
}

// Summarize counts outcomes per action.
func Summarize(outcomes []Outcome, elapsed time.Duration) Summary {
	s := Summary{Elapsed: elapsed}
	for _, o := range outcomes {
		s.Add(o)
	}
	return s
}

func (s *Summary) Add(o Outcome) {
	switch o.Action {
	case ActionHidden:
		s.Hidden++
	case ActionAlreadyHidden:
		s.AlreadyHidden++
	case ActionSkipped:
		s.Skipped++
	case ActionFailed:
		s.Failed++
	}
}

func (s Summary) Total() int {
	return s.Hidden + s.AlreadyHidden + s.Skipped + s.Failed
}

func (s Summary) String() string {
	parts := []string{
		humanize.Comma(int64(s.Hidden)) + " hidden",
		humanize.Comma(int64(s.AlreadyHidden)) + " already hidden",
		humanize.Comma(int64(s.Skipped)) + " skipped",
		humanize.Comma(int64(s.Failed)) + " failed",
	}
	return fmt.Sprintf("%s in %s", strings.Join(parts, ", "), s.Elapsed.Round(time.Millisecond))
}
