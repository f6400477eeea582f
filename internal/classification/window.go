package classification

import (
	"time"

	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
)

// WithinStartWindow returns the runs that started at most startDelayMax after their push,
// sorted by start time. Runs without a push time are dropped. The input slice is not modified.
func WithinStartWindow(runs []*domain.JobRun, startDelayMax time.Duration) []*domain.JobRun {
	limit := startDelayMax.Seconds()

	var kept []*domain.JobRun
	for _, run := range runs {
		if run.PushTime == nil {
			continue
		}
		if run.StartTime-*run.PushTime > limit {
			continue
		}
		kept = append(kept, run)
	}

	SortByStart(kept)
	return kept
}
