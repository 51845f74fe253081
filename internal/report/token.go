// ABOUTME: Bearer token cache for the reporting API with early refresh
// ABOUTME: Fetches with retry and backoff, refreshes ahead of expiry
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ecosense/aqroute/internal/util"
)

// tokenTTL is assumed when the token endpoint does not report one
const tokenTTL = 30 * time.Minute

// tokenResponse is the token endpoint's reply shape
type tokenResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
	Msg     string `json:"msg"`
}

// TokenSource caches a bearer token and refreshes it before expiry
type TokenSource struct {
	client     *http.Client
	endpoint   string
	user       string
	password   string
	refreshGap time.Duration
	maxRetries int
	retryDelay time.Duration

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewTokenSource builds a token source over the given endpoint
func NewTokenSource(client *http.Client, endpoint, user, password string, refreshGap time.Duration) *TokenSource {
	return &TokenSource{
		client:     client,
		endpoint:   endpoint,
		user:       user,
		password:   password,
		refreshGap: refreshGap,
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

// Token returns a valid bearer token, fetching a fresh one when the
// cached token is missing or inside the refresh window.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Now().Before(t.expires.Add(-t.refreshGap)) {
		return t.token, nil
	}

	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(t.retryDelay, attempt))
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		token, err := t.fetch(ctx)
		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		t.token = token
		t.expires = time.Now().Add(tokenTTL)
		return token, nil
	}
	return "", fmt.Errorf("fetch token after %d attempts: %w", t.maxRetries+1, lastErr)
}

// Invalidate drops the cached token so the next call fetches a new one
func (t *TokenSource) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = ""
	t.expires = time.Time{}
}

func (t *TokenSource) fetch(ctx context.Context) (string, error) {
	u, err := url.Parse(t.endpoint)
	if err != nil {
		return "", fmt.Errorf("token endpoint: %w", err)
	}
	q := u.Query()
	q.Set("UserName", t.user)
	q.Set("Pwd", t.password)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if !tr.Success || tr.Result == "" {
		return "", fmt.Errorf("token endpoint rejected credentials: %s", tr.Msg)
	}
	return tr.Result, nil
}
