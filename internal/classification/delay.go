package classification

import (
	"math"
	"time"

	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
)

// DelayCeiling bounds out reclassifications where the first classification was deleted and
// replaced much later
const DelayCeiling = 24 * time.Hour

// EarliestClassification returns the first recorded classification time of run
func EarliestClassification(run *domain.JobRun) (float64, bool) {
	if len(run.ClassificationTimes) == 0 {
		return 0, false
	}
	earliest := run.ClassificationTimes[0]
	for _, t := range run.ClassificationTimes[1:] {
		if t < earliest {
			earliest = t
		}
	}
	return earliest, true
}

// ClassificationDelay returns the seconds between anchor and the run's first classification,
// clamped at zero
func ClassificationDelay(run *domain.JobRun, anchor float64) (float64, bool) {
	classified, ok := EarliestClassification(run)
	if !ok {
		return 0, false
	}
	return math.Max(0, math.Floor(classified)-anchor), true
}

// ExtractDelays returns one delay per run, skipping runs without a classification time and
// delays not below ceiling
func ExtractDelays(runs []*domain.JobRun, anchor float64, ceiling time.Duration) []float64 {
	var delays []float64
	for _, run := range runs {
		delay, ok := ClassificationDelay(run, anchor)
		if !ok || delay >= ceiling.Seconds() {
			continue
		}
		delays = append(delays, delay)
	}
	return delays
}
