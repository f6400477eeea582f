package classification

import (
	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
)

func epoch(v float64) *float64 {
	return &v
}

type runOption func(*domain.JobRun)

func pushedAt(t float64) runOption {
	return func(r *domain.JobRun) { r.PushTime = epoch(t) }
}

func classified(name string, at float64) runOption {
	return func(r *domain.JobRun) {
		r.Classifications = append(r.Classifications, name)
		r.ClassificationTimes = append(r.ClassificationTimes, at)
	}
}

func newRun(repo, push, job string, start, end float64, opts ...runOption) *domain.JobRun {
	r := &domain.JobRun{
		RepositoryID:   repo,
		RepositoryName: "repo-" + repo,
		PushID:         push,
		PushRevision:   "rev-" + push,
		JobTypeName:    job,
		StartTime:      start,
		EndTime:        end,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
