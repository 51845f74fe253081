// ABOUTME: Client for the general query-synthesis backend
// ABOUTME: Terminal path; always produces an answer, degraded if unreachable
package general

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/ecosense/aqroute/internal/config"
	"github.com/ecosense/aqroute/internal/models"
)

// degradedAnswer is returned when the backend cannot be reached.
// The caller still gets a response, never an error page.
const degradedAnswer = "当前无法完成该查询,请稍后重试或换一种问法。"

// Client talks to the query-synthesis backend
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient builds a general query client from the service configuration
func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.GeneralQueryTimeout},
		baseURL: cfg.GeneralQueryURL,
	}
}

type generalRequest struct {
	Question string               `json:"question"`
	History  []models.HistoryTurn `json:"history,omitempty"`
}

type generalResponse struct {
	Success bool   `json:"success"`
	Answer  string `json:"answer"`
	Msg     string `json:"msg"`
}

// Ask sends the question to the backend and returns its answer text.
// Failures degrade to a canned message so the query still resolves.
func (c *Client) Ask(ctx context.Context, question string, history []models.HistoryTurn) string {
	answer, err := c.ask(ctx, question, history)
	if err != nil {
		log.Printf("[general] backend unavailable: %v", err)
		return degradedAnswer
	}
	return answer
}

func (c *Client) ask(ctx context.Context, question string, history []models.HistoryTurn) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("no backend configured")
	}

	payload, err := json.Marshal(generalRequest{Question: question, History: history})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("backend status %d after %s", resp.StatusCode, time.Since(start).Round(time.Millisecond))
	}

	var parsed generalResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse backend response: %w", err)
	}
	if !parsed.Success || parsed.Answer == "" {
		return "", fmt.Errorf("backend rejected question: %s", parsed.Msg)
	}
	return parsed.Answer, nil
}
