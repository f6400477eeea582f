package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClassificationTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/classification-time", r.URL.Path)
		assert.Equal(t, "67", r.URL.Query().Get("percent"))
		assert.Equal(t, "600", r.URL.Query().Get("response_limit"))
		assert.Equal(t, "", r.URL.Query().Get("start_delay"))
		assert.Equal(t, "true", r.URL.Query().Get("delays"))
		_, _ = w.Write([]byte(`{"data":{"ID":"r1","Count":3,"UsedCount":2,"MeanSeconds":75,"LimitSeconds":100,"Delays":[50,100,9000]}}`))
	}))
	defer server.Close()

	percent := 67
	report, err := NewClient(server.URL).GetClassificationTime(context.Background(), ReportQuery{
		ResponseLimit: 10 * time.Minute,
		Percent:       &percent,
		IncludeDelays: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", report.ID)
	assert.Equal(t, 3, report.Count)
	assert.Equal(t, 75.0, report.MeanSeconds)
	assert.Equal(t, []float64{50, 100, 9000}, report.Delays)
}

func TestGetClassificationTimeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NO_DATA","message":"no classification delays retained"}}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).GetClassificationTime(context.Background(), ReportQuery{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NO_DATA", apiErr.Code)
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	assert.NoError(t, NewClient(server.URL).HealthCheck(context.Background()))
}
