package redash

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/ci-classification-metrics/internal/errors"
	"github.com/kurihiro0119/ci-classification-metrics/internal/source"
)

const (
	DefaultBaseURL = "https://sql.telemetry.mozilla.org"
	DefaultQueryID = 78112
	DefaultTimeout = 60 * time.Second
)

// redashSource reads the cached results of a saved Redash query
type redashSource struct {
	baseURL    string
	queryID    int
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewRedashSource creates a source for the saved query queryID on baseURL
func NewRedashSource(baseURL string, queryID int, apiKey string, timeout time.Duration, logger *logrus.Entry) source.Source {
	return &redashSource{
		baseURL: baseURL,
		queryID: queryID,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ResultsURL returns the query results endpoint including the API key
func ResultsURL(baseURL string, queryID int, apiKey string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	u = u.JoinPath("api", "queries", strconv.Itoa(queryID), "results.json")
	u.RawQuery = url.Values{"api_key": []string{apiKey}}.Encode()
	return u.String(), nil
}

// FetchRuns downloads and decodes the query result
func (s *redashSource) FetchRuns(ctx context.Context) ([]*domain.JobRun, error) {
	resultsURL, err := ResultsURL(s.baseURL, s.queryID, s.apiKey)
	if err != nil {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("invalid redash url %q", s.baseURL))
	}

	s.logger.WithField("query_id", s.queryID).Debug("Fetching query results")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultsURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamError("failed to fetch query results", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.NewUnauthorizedError(fmt.Sprintf("redash rejected the api key: %s", resp.Status))
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("query %d", s.queryID))
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, apperrors.NewUpstreamError(fmt.Sprintf("redash error: %s - %s", resp.Status, string(body)), nil)
	}

	runs, err := source.DecodeQueryResult(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamError("invalid query result", err)
	}

	s.logger.WithField("rows", len(runs)).Debug("Fetched query results")
	return runs, nil
}

// Close implements source.Source
func (s *redashSource) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}
