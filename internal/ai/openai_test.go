package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
)

func TestOpenAIClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("Expected bearer API key, got %q", r.Header.Get("Authorization"))
		}

		var body struct {
			Model       string    `json:"model"`
			Messages    []Message `json:"messages"`
			MaxTokens   int       `json:"max_tokens"`
			Temperature float64   `json:"temperature"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if body.Model != "gpt-3.5-turbo-16k" {
			t.Errorf("Expected default model, got %s", body.Model)
		}
		if body.MaxTokens != 512 {
			t.Errorf("Expected max_tokens 512, got %d", body.MaxTokens)
		}
		if body.Temperature != 0.7 {
			t.Errorf("Expected temperature 0.7, got %f", body.Temperature)
		}
		if len(body.Messages) != 4 || body.Messages[2].Role != "assistant" || body.Messages[2].Content != "analysis" {
			t.Errorf("Expected threaded conversation, got %+v", body.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-3.5-turbo-16k",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "A tidy weekly summary."}}],
			"usage": {"prompt_tokens": 40, "completion_tokens": 6, "total_tokens": 46}
		}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIOptions{APIKey: "sk-test", BaseURL: server.URL})

	got, err := client.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "sys",
		UserPrompt:   "compress",
		Conversation: &ConversationState{System: "sys", User: "analyze", Assistant: "analysis"},
		MaxTokens:    512,
		Temperature:  DefaultTemperature,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.Text != "A tidy weekly summary." {
		t.Errorf("Expected reply text, got %q", got.Text)
	}
	if got.PromptTokens != 40 || got.CompletionTokens != 6 {
		t.Errorf("Expected usage 40/6, got %d/%d", got.PromptTokens, got.CompletionTokens)
	}
}

func TestOpenAIClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid api key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIOptions{APIKey: "bad", BaseURL: server.URL})

	_, err := client.Complete(context.Background(), CompletionRequest{UserPrompt: "hi", Restart: true})
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *openai.Error, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", apiErr.StatusCode)
	}
}

func TestToOpenAIMessages(t *testing.T) {
	msgs := toOpenAIMessages([]Message{
		{Role: RoleSystem, Content: "s"},
		{Role: RoleUser, Content: "u"},
		{Role: RoleAssistant, Content: "a"},
		{Role: "tool", Content: "ignored"},
	})
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].OfSystem == nil || msgs[1].OfUser == nil || msgs[2].OfAssistant == nil {
		t.Error("Expected system, user, assistant variants in order")
	}
}
