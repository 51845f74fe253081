// ABOUTME: OpenAI client for model-assisted fallback recovery
// ABOUTME: Retries with backoff and demands the shared JSON response envelope
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ecosense/aqroute/internal/models"
	"github.com/ecosense/aqroute/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultChatModel is the default model for chat completions
const DefaultChatModel = "gpt-4o-mini"

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	chatModel := os.Getenv("AQROUTE_OPENAI_MODEL")
	if chatModel == "" {
		chatModel = DefaultChatModel
	}

	return &ClientConfig{
		APIKey:     apiKey,
		ChatModel:  chatModel,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second * 2,
	}
}

// Client is the interface the fallback manager consumes
type Client interface {
	CompleteEnvelope(ctx context.Context, systemPrompt, userPrompt string) (*models.FallbackEnvelope, error)
}

// Disabled stands in when no API key is configured. Every call fails,
// so recovery stages decline and the ladder degrades deterministically.
type Disabled struct{}

func (Disabled) CompleteEnvelope(context.Context, string, string) (*models.FallbackEnvelope, error) {
	return nil, fmt.Errorf("model assistance disabled: no API key configured")
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client     *openai.Client
	chatModel  string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAIClient creates a client with the given API key and defaults
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientConfig),
		chatModel:  config.ChatModel,
		timeout:    timeout,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
	}, nil
}

// CompleteEnvelope sends the prompts and parses the response envelope.
// Responses that are not valid envelopes count as failed attempts.
func (c *OpenAIClient) CompleteEnvelope(ctx context.Context, systemPrompt, userPrompt string) (*models.FallbackEnvelope, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)

		resp, err := c.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt,
				},
			},
			Temperature: 0.1, // Low temperature for deterministic recovery output
		})

		if err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Choices) == 0 {
			cancel()
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}

		envelope, err := ParseEnvelope(resp.Choices[0].Message.Content)
		if err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		cancel()
		return envelope, nil
	}

	return nil, fmt.Errorf("failed to get envelope after %d attempts: %w", c.maxRetries+1, lastErr)
}

// ParseEnvelope extracts and validates the response envelope from raw
// model output. Models sometimes wrap the JSON in prose or fences, so
// the first balanced object is pulled out before unmarshalling.
func ParseEnvelope(content string) (*models.FallbackEnvelope, error) {
	raw := extractJSONObject(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var envelope models.FallbackEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}

	if envelope.Status != "success" && envelope.Status != "failed" {
		return nil, fmt.Errorf("envelope status %q is not success or failed", envelope.Status)
	}
	if !envelope.Action.IsValid() {
		return nil, fmt.Errorf("envelope action %q is not recognized", envelope.Action)
	}
	if envelope.Confidence < 0 || envelope.Confidence > 1 {
		return nil, fmt.Errorf("envelope confidence %f out of range", envelope.Confidence)
	}
	return &envelope, nil
}

// extractJSONObject returns the first balanced top-level JSON object in s
func extractJSONObject(s string) string {
	depth := 0
	start := -1
	inString := false
	escaped := false
	for i, ch := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
