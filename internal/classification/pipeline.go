package classification

import (
	"sort"
	"time"

	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/ci-classification-metrics/internal/errors"
)

const (
	DefaultResponseLimit = 15 * time.Minute
	DefaultStartDelayMax = 4 * time.Hour
	DefaultPercent       = 95
)

// Params configures one pipeline run
type Params struct {
	// ResponseLimit is the longest pause between runs of a group that still counts as
	// active retriggering
	ResponseLimit time.Duration
	// StartDelayMax is the latest a run may start after its push to be measured
	StartDelayMax time.Duration
	// Percent is the share of the fastest delays to average, 0..100
	Percent int
}

// DefaultParams returns the thresholds used when nothing is configured
func DefaultParams() Params {
	return Params{
		ResponseLimit: DefaultResponseLimit,
		StartDelayMax: DefaultStartDelayMax,
		Percent:       DefaultPercent,
	}
}

// Validate checks the parameter ranges
func (p Params) Validate() error {
	if p.Percent < 0 || p.Percent > 100 {
		return apperrors.NewBadRequestError("percent must be between 0 and 100")
	}
	if p.ResponseLimit < 0 {
		return apperrors.NewBadRequestError("response limit must not be negative")
	}
	if p.StartDelayMax < 0 {
		return apperrors.NewBadRequestError("start delay must not be negative")
	}
	return nil
}

// Result is the outcome of Compute
type Result struct {
	GroupCount         int
	ExcludedGroupCount int
	// Delays is sorted ascending
	Delays  []float64
	Trimmed *Trimmed
}

// Compute runs the full pipeline over runs, which must keep the arrival order of the source.
// Runs of retained groups are re-sorted by start time in place. When no delay survives the
// filters, the partial Result is returned together with a NO_DATA error.
func Compute(runs []*domain.JobRun, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	groups := GroupRuns(runs)
	retained := ExcludeGroups(groups, FixedByCommit)

	result := &Result{
		GroupCount:         len(groups),
		ExcludedGroupCount: len(groups) - len(retained),
		Delays:             []float64{},
	}

	for _, group := range retained {
		// The anchor comes from every run of the group while the delays only come from runs
		// inside the start window.
		SortByStart(group.Runs)
		gap := FindFirstGap(group.Runs, params.ResponseLimit)
		if gap == nil {
			continue
		}
		inWindow := WithinStartWindow(group.Runs, params.StartDelayMax)
		result.Delays = append(result.Delays, ExtractDelays(inWindow, gap.Anchor(), DelayCeiling)...)
	}
	sort.Float64s(result.Delays)

	trimmed, err := Trim(result.Delays, params.Percent)
	if err != nil {
		return result, err
	}
	result.Trimmed = trimmed
	return result, nil
}
