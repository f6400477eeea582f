package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/ci-classification-metrics/internal/aggregator"
	"github.com/kurihiro0119/ci-classification-metrics/internal/classification"
	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/ci-classification-metrics/internal/errors"
)

type fakeAggregator struct {
	report     *domain.ClassificationReport
	err        error
	lastParams classification.Params
	lastOpts   aggregator.Options
}

func (f *fakeAggregator) ClassificationTime(ctx context.Context, params classification.Params, opts aggregator.Options) (*domain.ClassificationReport, error) {
	f.lastParams = params
	f.lastOpts = opts
	return f.report, f.err
}

func (f *fakeAggregator) AggregateRuns(runs []*domain.JobRun, params classification.Params, opts aggregator.Options) (*domain.ClassificationReport, error) {
	return f.report, f.err
}

func newTestRouter(agg aggregator.Aggregator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return SetupRoutes(NewHandler(agg, classification.DefaultParams()), logrus.NewEntry(logger))
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&fakeAggregator{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetClassificationTime(t *testing.T) {
	report := &domain.ClassificationReport{ID: "report-1", Count: 3, UsedCount: 2, MeanSeconds: 75, LimitSeconds: 100}

	testCases := []struct {
		name           string
		query          string
		expectedParams classification.Params
		expectedOpts   aggregator.Options
	}{
		{
			name:           "defaults",
			expectedParams: classification.DefaultParams(),
		},
		{
			name:  "overrides",
			query: "?percent=67&response_limit=600&start_delay=3600&delays=true",
			expectedParams: classification.Params{
				ResponseLimit: 10 * time.Minute,
				StartDelayMax: time.Hour,
				Percent:       67,
			},
			expectedOpts: aggregator.Options{IncludeDelays: true},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			agg := &fakeAggregator{report: report}
			router := newTestRouter(agg)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/classification-time"+tc.query, nil))

			require.Equal(t, http.StatusOK, w.Code)
			var body struct {
				Data *domain.ClassificationReport `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, report, body.Data)
			assert.Equal(t, tc.expectedParams, agg.lastParams)
			assert.Equal(t, tc.expectedOpts, agg.lastOpts)
		})
	}
}

func TestGetClassificationTimeErrors(t *testing.T) {
	testCases := []struct {
		name           string
		query          string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "non numeric percent",
			query:          "?percent=most",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name:           "percent out of range",
			query:          "?percent=101",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name:           "no data",
			err:            apperrors.NewNoDataError("no classification delays retained"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NO_DATA",
		},
		{
			name:           "upstream failure",
			err:            apperrors.NewUpstreamError("failed to fetch query results", nil),
			expectedStatus: http.StatusBadGateway,
			expectedCode:   "UPSTREAM_ERROR",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&fakeAggregator{err: tc.err})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/classification-time"+tc.query, nil))

			assert.Equal(t, tc.expectedStatus, w.Code)
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.expectedCode, body.Error.Code)
		})
	}
}
