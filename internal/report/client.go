// ABOUTME: Reporting API client executing summary and comparison report calls
// ABOUTME: Bearer auth with one re-auth retry, typed errors for the recovery ladder
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ecosense/aqroute/internal/config"
	"github.com/ecosense/aqroute/internal/models"
)

const (
	summaryPath    = "/get_summary_report"
	comparisonPath = "/get_comparison_report"
)

// APIError carries the HTTP status so the recovery ladder can tell
// client mistakes from server failures.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reporting api: status %d: %s", e.StatusCode, e.Message)
}

// apiResponse is the reporting API's reply shape
type apiResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Msg     string          `json:"msg"`
}

// requestBody is the wire form of a report call
type requestBody struct {
	AreaType     int        `json:"AreaType"`
	StationCode  []string   `json:"StationCode"`
	TimeType     int        `json:"TimeType"`
	TimePoint    [2]string  `json:"TimePoint"`
	DataSource   int        `json:"DataSource"`
	ContrastTime *[2]string `json:"ContrastTime,omitempty"`
}

// Client calls the external reporting API
type Client struct {
	http    *http.Client
	baseURL string
	tokens  *TokenSource
}

// NewClient builds a reporting client from the service configuration
func NewClient(cfg *config.Config) *Client {
	httpClient := &http.Client{Timeout: cfg.ReportTimeout}
	return &Client{
		http:    httpClient,
		baseURL: cfg.ReportBaseURL,
		tokens: NewTokenSource(httpClient, cfg.ReportTokenURL,
			cfg.ReportUser, cfg.ReportPassword, cfg.TokenRefreshGap),
	}
}

// Execute runs a converted report request and returns the raw result rows
func (c *Client) Execute(ctx context.Context, req *models.ReportRequest) (json.RawMessage, error) {
	path := summaryPath
	if req.Kind == models.ReportComparison {
		path = comparisonPath
	}

	body := requestBody{
		AreaType:    req.AreaType,
		StationCode: req.StationCodes,
		TimeType:    int(req.TimeType),
		TimePoint:   req.TimePoint,
		DataSource:  int(req.DataSource),
	}
	if req.Kind == models.ReportComparison {
		ct := req.ContrastTime
		body.ContrastTime = &ct
	}

	result, err := c.post(ctx, path, body)
	if err == nil {
		return result, nil
	}

	// A 401 usually means the cached token expired server-side
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
		return c.post(ctx, path, body)
	}
	// The API rejects period types it cannot aggregate over the given
	// span; retry once with the arbitrary-range type
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest &&
		req.TimeType != models.TimeTypeArbitrary {
		body.TimeType = int(models.TimeTypeArbitrary)
		return c.post(ctx, path, body)
	}
	return nil, err
}

func (c *Client) post(ctx context.Context, path string, body requestBody) (json.RawMessage, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("report auth: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("report response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: truncate(string(raw), 200)}
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("report response after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	if !parsed.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: parsed.Msg}
	}
	return parsed.Result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
