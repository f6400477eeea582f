package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/ci-classification-metrics/internal/aggregator"
	"github.com/kurihiro0119/ci-classification-metrics/internal/classification"
	apperrors "github.com/kurihiro0119/ci-classification-metrics/internal/errors"
)

// Handler handles API requests
type Handler struct {
	aggregator aggregator.Aggregator
	defaults   classification.Params
}

// NewHandler creates a new API handler. defaults are used for parameters missing from a request.
func NewHandler(agg aggregator.Aggregator, defaults classification.Params) *Handler {
	return &Handler{
		aggregator: agg,
		defaults:   defaults,
	}
}

// GetClassificationTime returns the classification time report
// GET /api/v1/classification-time
func (h *Handler) GetClassificationTime(c *gin.Context) {
	params, err := h.parseParams(c)
	if err != nil {
		respondError(c, err)
		return
	}
	opts := aggregator.Options{
		IncludeDelays: c.Query("delays") == "true",
	}

	report, err := h.aggregator.ClassificationTime(c.Request.Context(), params, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": report,
	})
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// parseParams reads the thresholds from the query, falling back to the handler defaults
func (h *Handler) parseParams(c *gin.Context) (classification.Params, error) {
	params := h.defaults

	percent, err := parseIntQuery(c, "percent", params.Percent)
	if err != nil {
		return params, err
	}
	params.Percent = percent

	responseLimit, err := parseIntQuery(c, "response_limit", int(params.ResponseLimit/time.Second))
	if err != nil {
		return params, err
	}
	params.ResponseLimit = time.Duration(responseLimit) * time.Second

	startDelay, err := parseIntQuery(c, "start_delay", int(params.StartDelayMax/time.Second))
	if err != nil {
		return params, err
	}
	params.StartDelayMax = time.Duration(startDelay) * time.Second

	return params, params.Validate()
}

// parseIntQuery parses an integer query parameter with a default value
func parseIntQuery(c *gin.Context, key string, defaultValue int) (int, error) {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, apperrors.NewBadRequestError(key + " must be an integer")
	}
	return value, nil
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := apperrors.CodeOf(err)
	switch code {
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeNoData:
		status = http.StatusNotFound
	case apperrors.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrCodeBadRequest:
		status = http.StatusBadRequest
	case apperrors.ErrCodeUpstream:
		status = http.StatusBadGateway
	}

	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
