package ai

import (
	"context"
)

// Chat roles used in completion requests
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultTemperature is the sampling temperature used for narrative output
const DefaultTemperature = 0.7

// Message is one entry of a chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationState is the first exchange of a chain, carried verbatim into the
// second call
type ConversationState struct {
	System    string
	User      string
	Assistant string
}

// Messages returns the exchange as a structured message list
func (c ConversationState) Messages() []Message {
	return []Message{
		{Role: RoleSystem, Content: c.System},
		{Role: RoleUser, Content: c.User},
		{Role: RoleAssistant, Content: c.Assistant},
	}
}

// CompletionRequest describes a single call to a completion provider
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Conversation *ConversationState // threaded only when Restart is false
	MaxTokens    int
	Temperature  float64
	Restart      bool
}

// Messages builds the message list sent to the provider. A restarted request
// ignores any prior conversation.
func (r CompletionRequest) Messages() []Message {
	if r.Restart || r.Conversation == nil {
		return []Message{
			{Role: RoleSystem, Content: r.SystemPrompt},
			{Role: RoleUser, Content: r.UserPrompt},
		}
	}
	msgs := r.Conversation.Messages()
	return append(msgs, Message{Role: RoleUser, Content: r.UserPrompt})
}

// Completion is a provider reply
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Completer is a chat-completion provider
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	Model() string
}
