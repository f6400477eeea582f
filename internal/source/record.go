package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
)

// TimestampLayout is the layout of every timestamp column. Fractional seconds are optional.
const TimestampLayout = "2006-01-02T15:04:05"

// Record is one row of the job run table as exported by the query
type Record struct {
	RepositoryID            FlexString `json:"repository_id"`
	RepositoryName          string     `json:"repository_name"`
	PushID                  FlexString `json:"push_id"`
	PushRevision            string     `json:"push_revision"`
	JobTypeName             string     `json:"job_type_name"`
	PushTime                *string    `json:"push_time"`
	ClassificationName      OneOrMany  `json:"classification_name"`
	ClassificationTimestamp OneOrMany  `json:"classification_timestamp"`
	JobStartTime            string     `json:"job_start_time"`
	JobEndTime              string     `json:"job_end_time"`
}

// ToJobRun converts the record, parsing all timestamps to epoch seconds
func (r *Record) ToJobRun() (*domain.JobRun, error) {
	run := &domain.JobRun{
		RepositoryID:    string(r.RepositoryID),
		RepositoryName:  r.RepositoryName,
		PushID:          string(r.PushID),
		PushRevision:    r.PushRevision,
		JobTypeName:     r.JobTypeName,
		Classifications: []string(r.ClassificationName),
	}

	if r.PushTime != nil && *r.PushTime != "" {
		pushTime, err := ParseTimestamp(*r.PushTime)
		if err != nil {
			return nil, fmt.Errorf("push_time: %w", err)
		}
		run.PushTime = &pushTime
	}

	for _, raw := range r.ClassificationTimestamp {
		t, err := ParseTimestamp(raw)
		if err != nil {
			return nil, fmt.Errorf("classification_timestamp: %w", err)
		}
		run.ClassificationTimes = append(run.ClassificationTimes, t)
	}

	var err error
	if run.StartTime, err = ParseTimestamp(r.JobStartTime); err != nil {
		return nil, fmt.Errorf("job_start_time: %w", err)
	}
	if run.EndTime, err = ParseTimestamp(r.JobEndTime); err != nil {
		return nil, fmt.Errorf("job_end_time: %w", err)
	}

	return run, nil
}

// ToJobRuns converts records in order. The index of the first bad record is part of the error.
func ToJobRuns(records []Record) ([]*domain.JobRun, error) {
	runs := make([]*domain.JobRun, 0, len(records))
	for i := range records {
		run, err := records[i].ToJobRun()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// ParseTimestamp parses a UTC timestamp into epoch seconds
func ParseTimestamp(value string) (float64, error) {
	t, err := time.ParseInLocation(TimestampLayout, value, time.UTC)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
	}
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9, nil
}

// FlexString decodes a JSON string or number into its textual form
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

// OneOrMany holds a column that carries a single value for runs classified once and a list
// for reclassified runs
type OneOrMany []string

// UnmarshalJSON implements json.Unmarshaler
func (o *OneOrMany) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*o = nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		var values []string
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return err
		}
		*o = values
	default:
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*o = OneOrMany{value}
	}
	return nil
}

// ParseOneOrMany reads a text column holding either a bare value or a JSON array
func ParseOneOrMany(text string) (OneOrMany, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var o OneOrMany
		if err := json.Unmarshal([]byte(trimmed), &o); err != nil {
			return nil, err
		}
		return o, nil
	}
	return OneOrMany{trimmed}, nil
}
