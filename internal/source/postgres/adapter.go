package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
	"github.com/kurihiro0119/ci-classification-metrics/internal/source"
)

// postgresSource reads job runs from a PostgreSQL table
type postgresSource struct {
	db *sql.DB
}

// NewPostgresSource connects to connStr. The connection is only used for reads.
func NewPostgresSource(connStr string) (source.Source, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &postgresSource{db: db}, nil
}

// FetchRuns reads the job_runs table in row order inside a read-only transaction
func (s *postgresSource) FetchRuns(ctx context.Context) ([]*domain.JobRun, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, source.SelectJobRuns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return source.ScanJobRuns(rows)
}

// Close closes the connection pool
func (s *postgresSource) Close() error {
	return s.db.Close()
}
