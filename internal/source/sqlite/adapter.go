package sqlite

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
	"github.com/kurihiro0119/ci-classification-metrics/internal/source"
)

// Schema creates the job run table read by this source
const Schema = `
	CREATE TABLE IF NOT EXISTS job_runs (
		row_order INTEGER PRIMARY KEY,
		repository_id TEXT NOT NULL,
		repository_name TEXT NOT NULL DEFAULT '',
		push_id TEXT NOT NULL,
		push_revision TEXT NOT NULL DEFAULT '',
		job_type_name TEXT NOT NULL,
		push_time TEXT,
		classification_name TEXT,
		classification_timestamp TEXT,
		job_start_time TEXT NOT NULL,
		job_end_time TEXT NOT NULL
	);
`

// sqliteSource reads job runs from a SQLite export
type sqliteSource struct {
	db *sql.DB
}

// NewSQLiteSource opens the database at dbPath read-only
func NewSQLiteSource(dbPath string) (source.Source, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteSource{db: db}, nil
}

// FetchRuns reads the job_runs table in row order
func (s *sqliteSource) FetchRuns(ctx context.Context) ([]*domain.JobRun, error) {
	rows, err := s.db.QueryContext(ctx, source.SelectJobRuns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return source.ScanJobRuns(rows)
}

// Close closes the database
func (s *sqliteSource) Close() error {
	return s.db.Close()
}
