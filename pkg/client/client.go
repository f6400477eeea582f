package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
)

// Client is the API client for ci-classification-metrics
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// ReportQuery holds the optional overrides of a report request. Zero values use the server defaults.
type ReportQuery struct {
	ResponseLimit time.Duration
	StartDelayMax time.Duration
	Percent       *int
	IncludeDelays bool
}

// APIError is returned for non-200 responses
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d %s - %s", e.StatusCode, e.Code, e.Message)
}

// GetClassificationTime retrieves the classification time report
func (c *Client) GetClassificationTime(ctx context.Context, query ReportQuery) (*domain.ClassificationReport, error) {
	params := url.Values{}
	if query.Percent != nil {
		params.Set("percent", strconv.Itoa(*query.Percent))
	}
	if query.ResponseLimit > 0 {
		params.Set("response_limit", strconv.Itoa(int(query.ResponseLimit/time.Second)))
	}
	if query.StartDelayMax > 0 {
		params.Set("start_delay", strconv.Itoa(int(query.StartDelayMax/time.Second)))
	}
	if query.IncludeDelays {
		params.Set("delays", "true")
	}

	var response struct {
		Data *domain.ClassificationReport `json:"data"`
	}
	if err := c.get(ctx, "/api/v1/classification-time", params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck(ctx context.Context) error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(body)}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Code != "" {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
