package redash

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kurihiro0119/ci-classification-metrics/internal/errors"
)

const body = `{"query_result":{"data":{"rows":[
	{"repository_id":1,"push_id":2,"job_type_name":"build","push_time":"2024-03-01T10:00:00",
	 "classification_name":"intermittent","classification_timestamp":"2024-03-01T10:30:00.000000",
	 "job_start_time":"2024-03-01T10:05:00","job_end_time":"2024-03-01T10:20:00"}
]}}}`

func TestResultsURL(t *testing.T) {
	actual, err := ResultsURL("https://sql.example.org", 78112, "s3cr3t")
	require.NoError(t, err)
	assert.Equal(t, "https://sql.example.org/api/queries/78112/results.json?api_key=s3cr3t", actual)
}

func TestFetchRuns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/queries/42/results.json" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("api_key") != "good" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	logger := logrus.NewEntry(logrus.New())

	t.Run("valid key", func(t *testing.T) {
		src := NewRedashSource(server.URL, 42, "good", time.Second, logger)
		defer src.Close()

		runs, err := src.FetchRuns(context.Background())
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, "1", runs[0].RepositoryID)
		assert.Equal(t, "2", runs[0].PushID)
	})

	t.Run("rejected key", func(t *testing.T) {
		src := NewRedashSource(server.URL, 42, "bad", time.Second, logger)
		_, err := src.FetchRuns(context.Background())
		assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
	})

	t.Run("unknown query", func(t *testing.T) {
		src := NewRedashSource(server.URL, 7, "good", time.Second, logger)
		_, err := src.FetchRuns(context.Background())
		assert.True(t, apperrors.IsNotFound(err), "expected NOT_FOUND, got %v", err)
	})
}

func TestFetchRunsUpstreamErrors(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "query timed out", http.StatusBadGateway)
			},
		},
		{
			name: "malformed document",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"query_result":`))
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			src := NewRedashSource(server.URL, 1, "key", time.Second, logrus.NewEntry(logrus.New()))
			_, err := src.FetchRuns(context.Background())
			assert.Equal(t, apperrors.ErrCodeUpstream, apperrors.CodeOf(err))
		})
	}
}
