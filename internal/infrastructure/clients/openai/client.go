package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/pkg/config"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements the ChatProvider interface against the OpenAI API
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new OpenAI chat client
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
	}, nil
}

// NewClientWithOptions allows overriding the base URL and HTTP client (used for tests)
func NewClientWithOptions(cfg *config.OpenAIConfig, baseURL string, httpClient *http.Client) (*Client, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		client.baseURL = baseURL
	}
	if httpClient != nil {
		client.httpClient = httpClient
	}
	return client, nil
}

type chatCompletionRequest struct {
	Model       string                `json:"model"`
	Messages    []chatCompletionEntry `json:"messages"`
	Temperature float64               `json:"temperature"`
	MaxTokens   int                   `json:"max_tokens"`
}

type chatCompletionEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionEntry `json:"message"`
	} `json:"choices"`
}

// Complete returns the assistant reply for a conversation
func (c *Client) Complete(ctx context.Context, messages []entities.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", apperrors.NewValidationError("at least one message is required")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	entries := make([]chatCompletionEntry, 0, len(messages)+1)
	entries = append(entries, chatCompletionEntry{Role: "system", Content: tripAssistantSystemPrompt})
	for _, msg := range messages {
		entries = append(entries, chatCompletionEntry{Role: string(msg.Role), Content: msg.Content})
	}

	payload := chatCompletionRequest{
		Model:       c.model,
		Messages:    entries,
		Temperature: 0.4,
		MaxTokens:   800,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewExternalError("openai request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", apperrors.NewExternalError(fmt.Sprintf("openai returned status %d", resp.StatusCode), nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.NewExternalError(fmt.Sprintf("openai request rejected with status %d", resp.StatusCode), nil)
	}

	var envelope chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", apperrors.NewExternalError("failed to decode openai response", err)
	}

	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		return "", apperrors.NewExternalError("openai response missing content", nil)
	}

	return envelope.Choices[0].Message.Content, nil
}

// tokenBucket is a minute-granularity rate limiter for outbound OpenAI calls
type tokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	burst    float64
	ratePerS float64
	last     time.Time
}

func newTokenBucket(rpm, burst int) *tokenBucket {
	if rpm <= 0 {
		rpm = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return &tokenBucket{
		tokens:   float64(burst),
		burst:    float64(burst),
		ratePerS: float64(rpm) / 60.0,
		last:     time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled
func (b *tokenBucket) Wait(ctx context.Context) error {
	for {
		b.mu.Lock()
		now := time.Now()
		b.tokens += now.Sub(b.last).Seconds() * b.ratePerS
		if b.tokens > b.burst {
			b.tokens = b.burst
		}
		b.last = now

		if b.tokens >= 1 {
			b.tokens--
			b.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - b.tokens) / b.ratePerS * float64(time.Second))
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
