package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
)

func TestEarliestClassification(t *testing.T) {
	testCases := []struct {
		name       string
		run        *domain.JobRun
		expected   float64
		expectedOK bool
	}{
		{
			name: "no classification",
			run:  newRun("1", "1", "a", 0, 1),
		},
		{
			name:       "single classification",
			run:        newRun("1", "1", "a", 0, 1, classified("intermittent", 300.5)),
			expected:   300.5,
			expectedOK: true,
		},
		{
			name:       "reclassified run uses the first classification",
			run:        newRun("1", "1", "a", 0, 1, classified("intermittent", 900), classified("infra", 250), classified("intermittent", 600)),
			expected:   250,
			expectedOK: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, ok := EarliestClassification(tc.run)
			assert.Equal(t, tc.expectedOK, ok)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestExtractDelays(t *testing.T) {
	const anchor = 1000.0
	testCases := []struct {
		name     string
		runs     []*domain.JobRun
		expected []float64
	}{
		{
			name: "fractional classification time is floored",
			runs: []*domain.JobRun{
				newRun("1", "1", "a", 0, 1, classified("intermittent", 1100.9)),
			},
			expected: []float64{100},
		},
		{
			name: "classification before the anchor counts as zero",
			runs: []*domain.JobRun{
				newRun("1", "1", "a", 0, 1, classified("intermittent", 400)),
			},
			expected: []float64{0},
		},
		{
			name: "delay beyond a day is dropped",
			runs: []*domain.JobRun{
				newRun("1", "1", "a", 0, 1, classified("intermittent", anchor+90000)),
				newRun("1", "1", "a", 0, 1, classified("intermittent", anchor+60)),
			},
			expected: []float64{60},
		},
		{
			name: "delay of exactly a day is dropped",
			runs: []*domain.JobRun{
				newRun("1", "1", "a", 0, 1, classified("intermittent", anchor+86400)),
				newRun("1", "1", "a", 0, 1, classified("intermittent", anchor+86399)),
			},
			expected: []float64{86399},
		},
		{
			name: "unclassified run is skipped",
			runs: []*domain.JobRun{
				newRun("1", "1", "a", 0, 1),
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := ExtractDelays(tc.runs, anchor, DelayCeiling)
			assert.Equal(t, tc.expected, actual)
			for _, d := range actual {
				assert.GreaterOrEqual(t, d, 0.0)
				assert.Less(t, d, DelayCeiling.Seconds())
			}
		})
	}
}
