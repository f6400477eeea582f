package classification

import (
	"sort"
	"time"

	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
)

// Gap is the outcome of scanning a group's runs for the first inactivity gap.
// It is either GapAt or NoGap.
type Gap interface {
	// Anchor returns the end time of the last run before the gap, in epoch seconds
	Anchor() float64
}

// GapAt reports that the run at Index started more than the response limit after LastTimeOK
type GapAt struct {
	Index      int
	LastTimeOK float64
}

// Anchor implements Gap
func (g GapAt) Anchor() float64 { return g.LastTimeOK }

// NoGap reports that all runs form one continuous chain ending at LastTimeOK
type NoGap struct {
	LastTimeOK float64
}

// Anchor implements Gap
func (g NoGap) Anchor() float64 { return g.LastTimeOK }

// SortByStart sorts runs in place by start time, keeping arrival order for equal starts
func SortByStart(runs []*domain.JobRun) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartTime < runs[j].StartTime
	})
}

// FindFirstGap walks runs, which must be sorted by start time, and follows the chain of
// retriggers that started within responseLimit of the previous run's end. It returns nil
// for an empty slice.
func FindFirstGap(runs []*domain.JobRun, responseLimit time.Duration) Gap {
	if len(runs) == 0 {
		return nil
	}

	limit := responseLimit.Seconds()
	lastTimeOK := runs[0].EndTime
	for i := 1; i < len(runs); i++ {
		if runs[i].StartTime-lastTimeOK > limit {
			return GapAt{Index: i, LastTimeOK: lastTimeOK}
		}
		lastTimeOK = runs[i].EndTime
	}

	return NoGap{LastTimeOK: lastTimeOK}
}
