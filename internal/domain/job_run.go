package domain

// GroupKey identifies the job group a run belongs to
type GroupKey struct {
	RepositoryID string
	PushID       string
	JobTypeName  string
}

// JobRun represents one CI task run joined with its push and failure classification metadata.
// All times are epoch seconds.
type JobRun struct {
	RepositoryID   string
	RepositoryName string
	PushID         string
	PushRevision   string
	JobTypeName    string

	// PushTime is nil when the push has no creation time recorded
	PushTime *float64

	// Classifications and ClassificationTimes are paired by position. A run that was
	// reclassified carries more than one entry.
	Classifications     []string
	ClassificationTimes []float64

	StartTime float64
	EndTime   float64
}

// Key returns the group key of the run
func (r *JobRun) Key() GroupKey {
	return GroupKey{
		RepositoryID: r.RepositoryID,
		PushID:       r.PushID,
		JobTypeName:  r.JobTypeName,
	}
}

// HasClassification reports whether any of the run's classifications equals name
func (r *JobRun) HasClassification(name string) bool {
	for _, c := range r.Classifications {
		if c == name {
			return true
		}
	}
	return false
}

// JobGroup represents all adjacent runs sharing a push, repository and job type
type JobGroup struct {
	Key            GroupKey
	RepositoryName string
	PushRevision   string
	Runs           []*JobRun
}
