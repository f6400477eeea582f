package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
)

// QueryResult is the query results document served by Redash and written by its JSON export
type QueryResult struct {
	QueryResult struct {
		Data struct {
			Rows []Record `json:"rows"`
		} `json:"data"`
	} `json:"query_result"`
}

// DecodeQueryResult reads a query results document and converts its rows
func DecodeQueryResult(r io.Reader) ([]*domain.JobRun, error) {
	var result QueryResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode query result: %w", err)
	}
	return ToJobRuns(result.QueryResult.Data.Rows)
}

// fileSource reads a query results document saved on disk
type fileSource struct {
	path string
}

// NewFileSource creates a source reading the JSON export at path
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

// FetchRuns reads and decodes the file
func (s *fileSource) FetchRuns(ctx context.Context) ([]*domain.JobRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	return DecodeQueryResult(f)
}

// Close implements Source
func (s *fileSource) Close() error {
	return nil
}
