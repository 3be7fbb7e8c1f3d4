package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Completer on top of the official OpenAI SDK.
// Any OpenAI-compatible endpoint works when BaseURL is set.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// OpenAIOptions configures an OpenAIClient
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// NewOpenAIClient creates a completion client backed by openai-go
func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(opts.MaxRetries),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: opts.Timeout}))
	}

	model := opts.Model
	if model == "" {
		model = "gpt-3.5-turbo-16k"
	}

	return &OpenAIClient{
		client: openai.NewClient(reqOpts...),
		model:  model,
	}
}

// Model returns the configured model identifier
func (c *OpenAIClient) Model() string {
	return c.model
}

// Complete sends one chat completion request
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	logger := LoggerFrom(ctx)

	model := req.Model
	if model == "" {
		model = c.model
	}

	params := openai.ChatCompletionNewParams{
		Model:       model,
		Messages:    toOpenAIMessages(req.Messages()),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			logger.Debug("OpenAI API error", "model", model, "status_code", apiErr.StatusCode)
		}
		return Completion{}, fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("openai returned no choices")
	}

	logger.Debug("OpenAI chat completed",
		"model", model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason)

	return Completion{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
	}, nil
}

func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case RoleUser:
			result = append(result, openai.UserMessage(msg.Content))
		case RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		}
	}
	return result
}
