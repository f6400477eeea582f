package classification

import (
	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
)

// FixedByCommit is the classification of failures resolved by a code change
const FixedByCommit = "fixed by commit"

// GroupRuns partitions runs into job groups. A group ends whenever the next run has a
// different key or the input ends, so a key that shows up again later starts a new group.
func GroupRuns(runs []*domain.JobRun) []*domain.JobGroup {
	var groups []*domain.JobGroup
	var current *domain.JobGroup

	for _, run := range runs {
		if current == nil || current.Key != run.Key() {
			current = &domain.JobGroup{
				Key:            run.Key(),
				RepositoryName: run.RepositoryName,
				PushRevision:   run.PushRevision,
			}
			groups = append(groups, current)
		}
		current.Runs = append(current.Runs, run)
	}

	return groups
}

// ExcludeGroups drops every group with at least one run classified as label.
// The relative order of the remaining groups is kept.
func ExcludeGroups(groups []*domain.JobGroup, label string) []*domain.JobGroup {
	kept := make([]*domain.JobGroup, 0, len(groups))
	for _, group := range groups {
		if !groupHasClassification(group, label) {
			kept = append(kept, group)
		}
	}
	return kept
}

func groupHasClassification(group *domain.JobGroup, label string) bool {
	for _, run := range group.Runs {
		if run.HasClassification(label) {
			return true
		}
	}
	return false
}
