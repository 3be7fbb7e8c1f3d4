package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// GHModelsClient implements Completer using the GitHub Models API
type GHModelsClient struct {
	HTTP    *http.Client
	BaseURL string
	model   string
	Token   string
}

// NewGHModelsClient creates a new GitHub Models API client
func NewGHModelsClient(baseURL, model, token string, timeout time.Duration) *GHModelsClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GHModelsClient{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: baseURL,
		model:   model,
		Token:   token,
	}
}

// chatCompletionRequest represents the OpenAI-compatible request format
type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// chatCompletionResponse represents the OpenAI-compatible response format
type chatCompletionResponse struct {
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Message Message `json:"message"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

const (
	maxRetries = 3
	baseDelay  = 1 * time.Second
	userAgent  = "weekly-report-bot/1.0"
)

// Model returns the configured model identifier
func (c *GHModelsClient) Model() string {
	return c.model
}

// Complete sends a chat completion request with retry on rate limiting
func (c *GHModelsClient) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	logger := LoggerFrom(ctx)

	model := req.Model
	if model == "" {
		model = c.model
	}

	request := chatCompletionRequest{
		Model:       model,
		Messages:    req.Messages(),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	logger.Debug("Starting AI API request", "model", model, "messages", len(request.Messages), "maxTokens", req.MaxTokens)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Apply jittered exponential backoff
			delay := time.Duration(float64(baseDelay) * math.Pow(2, float64(attempt-1)))
			jitter := time.Duration(rand.Float64() * float64(delay) * 0.1) // 10% jitter
			logger.Debug("AI API retry backoff", "attempt", attempt, "delay", delay+jitter)
			select {
			case <-ctx.Done():
				return Completion{}, ctx.Err()
			case <-time.After(delay + jitter):
			}
		}

		response, err := c.makeHTTPRequest(ctx, request)
		if err != nil {
			lastErr = err

			if httpErr, ok := err.(*HTTPError); ok && httpErr.StatusCode == http.StatusTooManyRequests {
				logger.Debug("AI API rate limited", "attempt", attempt+1)
				if retryAfter := httpErr.Headers.Get("Retry-After"); retryAfter != "" {
					if seconds, parseErr := strconv.Atoi(retryAfter); parseErr == nil {
						select {
						case <-ctx.Done():
							return Completion{}, ctx.Err()
						case <-time.After(time.Duration(seconds) * time.Second):
						}
					}
				}
				continue
			}

			logger.Debug("AI API request failed", "attempt", attempt+1, "error", err)
			return Completion{}, fmt.Errorf("GitHub Models API request failed: %w", err)
		}

		if len(response.Choices) == 0 {
			return Completion{}, fmt.Errorf("GitHub Models API returned empty response")
		}

		text := response.Choices[0].Message.Content
		logger.Debug("AI API request succeeded", "attempt", attempt+1, "length", len(text),
			"promptTokens", response.Usage.PromptTokens, "completionTokens", response.Usage.CompletionTokens)
		return Completion{
			Text:             text,
			PromptTokens:     response.Usage.PromptTokens,
			CompletionTokens: response.Usage.CompletionTokens,
		}, nil
	}

	return Completion{}, fmt.Errorf("GitHub Models API failed after %d retries: %w", maxRetries, lastErr)
}

// makeHTTPRequest performs the actual HTTP request
func (c *GHModelsClient) makeHTTPRequest(ctx context.Context, request chatCompletionRequest) (*chatCompletionResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.BaseURL + "/inference/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Headers:    resp.Header,
		}
	}

	var response chatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &response, nil
}

// HTTPError represents an HTTP error response
type HTTPError struct {
	StatusCode int
	Body       string
	Headers    http.Header
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}
