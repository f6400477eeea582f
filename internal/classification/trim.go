package classification

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	apperrors "github.com/kurihiro0119/ci-classification-metrics/internal/errors"
)

// Trimmed holds the statistics over the fastest share of the delays
type Trimmed struct {
	Count  int
	Used   int
	Mean   float64
	Limit  float64
	Median float64
}

// UsedSamples returns how many of n sorted samples fall into the fastest percent.
// At least one sample is used whenever n > 0.
func UsedSamples(n, percent int) int {
	k := int(math.RoundToEven(float64(percent) / 100 * float64(n)))
	if n > 0 && k == 0 {
		k = 1
	}
	if k > n {
		k = n
	}
	return k
}

// Trim sorts a copy of delays and averages the fastest percent of them. The limit is the
// slowest delay that was averaged. An empty input yields a NO_DATA error.
func Trim(delays []float64, percent int) (*Trimmed, error) {
	if len(delays) == 0 {
		return nil, apperrors.NewNoDataError("no classification delays retained")
	}

	sorted := make([]float64, len(delays))
	copy(sorted, delays)
	sort.Float64s(sorted)

	k := UsedSamples(len(sorted), percent)
	used := stats.Float64Data(sorted[:k])

	mean, err := stats.Mean(used)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to calculate mean", err)
	}
	median, err := stats.Median(used)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to calculate median", err)
	}

	return &Trimmed{
		Count:  len(sorted),
		Used:   k,
		Mean:   mean,
		Limit:  sorted[k-1],
		Median: median,
	}, nil
}

func (t *Trimmed) String() string {
	return fmt.Sprintf("count=%d used=%d mean=%.1fs limit=%.0fs", t.Count, t.Used, t.Mean, t.Limit)
}
