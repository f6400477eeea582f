package source

import (
	"database/sql"
	"fmt"

	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
)

// SelectJobRuns reads the job run table in arrival order
const SelectJobRuns = `
	SELECT repository_id, repository_name, push_id, push_revision, job_type_name,
		push_time, classification_name, classification_timestamp, job_start_time, job_end_time
	FROM job_runs
	ORDER BY row_order
`

// ScanJobRuns converts the rows of SelectJobRuns. Classification columns may hold a bare value
// or a JSON array.
func ScanJobRuns(rows *sql.Rows) ([]*domain.JobRun, error) {
	var records []Record
	for rows.Next() {
		var (
			rec             Record
			repositoryID    string
			pushID          string
			pushTime        sql.NullString
			classifications sql.NullString
			classifiedAt    sql.NullString
		)
		if err := rows.Scan(
			&repositoryID,
			&rec.RepositoryName,
			&pushID,
			&rec.PushRevision,
			&rec.JobTypeName,
			&pushTime,
			&classifications,
			&classifiedAt,
			&rec.JobStartTime,
			&rec.JobEndTime,
		); err != nil {
			return nil, err
		}
		rec.RepositoryID = FlexString(repositoryID)
		rec.PushID = FlexString(pushID)
		if pushTime.Valid {
			rec.PushTime = &pushTime.String
		}

		var err error
		if rec.ClassificationName, err = ParseOneOrMany(classifications.String); err != nil {
			return nil, fmt.Errorf("row %d: classification_name: %w", len(records), err)
		}
		if rec.ClassificationTimestamp, err = ParseOneOrMany(classifiedAt.String); err != nil {
			return nil, fmt.Errorf("row %d: classification_timestamp: %w", len(records), err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ToJobRuns(records)
}
