package aggregator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/ci-classification-metrics/internal/classification"
	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/ci-classification-metrics/internal/errors"
	"github.com/kurihiro0119/ci-classification-metrics/internal/source"
)

// Options selects what a report carries besides the statistics
type Options struct {
	// IncludeDelays adds every retained delay to the report
	IncludeDelays bool
}

// Aggregator defines the interface for computing classification time reports
type Aggregator interface {
	// ClassificationTime fetches the job run table and computes the report for params
	ClassificationTime(ctx context.Context, params classification.Params, opts Options) (*domain.ClassificationReport, error)

	// AggregateRuns computes the report for runs that were already fetched
	AggregateRuns(runs []*domain.JobRun, params classification.Params, opts Options) (*domain.ClassificationReport, error)
}

// aggregator implements the Aggregator interface
type aggregator struct {
	source source.Source
	logger *logrus.Entry
	now    func() time.Time
}

// NewAggregator creates a new aggregator
func NewAggregator(src source.Source, logger *logrus.Entry) Aggregator {
	return &aggregator{
		source: src,
		logger: logger,
		now:    time.Now,
	}
}

// ClassificationTime fetches the job run table and computes the report
func (a *aggregator) ClassificationTime(ctx context.Context, params classification.Params, opts Options) (*domain.ClassificationReport, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	runs, err := a.source.FetchRuns(ctx)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.NewUpstreamError("failed to fetch job runs", err)
	}
	a.logger.WithField("runs", len(runs)).Info("Fetched job runs")

	return a.AggregateRuns(runs, params, opts)
}

// AggregateRuns computes the report for runs
func (a *aggregator) AggregateRuns(runs []*domain.JobRun, params classification.Params, opts Options) (*domain.ClassificationReport, error) {
	result, err := classification.Compute(runs, params)
	if result != nil {
		a.logger.WithFields(logrus.Fields{
			"groups":   result.GroupCount,
			"excluded": result.ExcludedGroupCount,
			"delays":   len(result.Delays),
		}).Debug("Grouped job runs")
	}
	if err != nil {
		return nil, err
	}
	a.logger.WithField("result", result.Trimmed.String()).Debug("Trimmed classification delays")

	report := &domain.ClassificationReport{
		ID:          uuid.New().String(),
		GeneratedAt: a.now(),
		Params: domain.ReportParams{
			ResponseLimit: params.ResponseLimit,
			StartDelayMax: params.StartDelayMax,
			Percent:       params.Percent,
		},
		GroupCount:         result.GroupCount,
		ExcludedGroupCount: result.ExcludedGroupCount,
		Count:              result.Trimmed.Count,
		UsedCount:          result.Trimmed.Used,
		MeanSeconds:        result.Trimmed.Mean,
		LimitSeconds:       result.Trimmed.Limit,
		MedianSeconds:      result.Trimmed.Median,
	}
	if opts.IncludeDelays {
		report.Delays = result.Delays
	}

	return report, nil
}
