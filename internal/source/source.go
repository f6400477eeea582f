package source

import (
	"context"

	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
)

// Type names a kind of job run source
type Type string

const (
	TypeRedash   Type = "redash"
	TypeFile     Type = "file"
	TypeSQLite   Type = "sqlite"
	TypePostgres Type = "postgres"
)

// Source is the abstract interface for reading the job run table.
// Runs are returned in the order the table delivers them; runs of one job group are adjacent.
type Source interface {
	// FetchRuns reads the whole table
	FetchRuns(ctx context.Context) ([]*domain.JobRun, error)

	// Close releases the underlying connection
	Close() error
}
