package ai

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// MinReplyRunes is the shortest second-call reply accepted as a narrative
const MinReplyRunes = 10

var (
	// ErrProvider wraps transport, auth and provider-side failures
	ErrProvider = errors.New("completion provider error")
	// ErrDegenerateOutput marks a final reply too short to be a summary
	ErrDegenerateOutput = errors.New("degenerate completion output")
)

// State is the progress of a single chain run
type State int

const (
	StatePending State = iota
	StateFirstCallDone
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFirstCallDone:
		return "first_call_done"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ChainError reports which call of a chain failed
type ChainError struct {
	CorrelationID string
	Stage         int   // 1 or 2
	State         State // state reached before failing
	Err           error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("%s: step %d failed after %s: %v", e.CorrelationID, e.Stage, e.State, e.Err)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// ChainPrompt holds the prompts and output ceilings of a two-call chain.
// CorrelationID ties both calls together in logs.
type ChainPrompt struct {
	System        string
	User1         string
	MaxOut1       int
	User2         string
	MaxOut2       int
	CorrelationID string
}

// Chain runs the two-call analyze-then-compress completion sequence
type Chain struct {
	completer   Completer
	temperature float64
}

// NewChain creates a chain over the given provider
func NewChain(completer Completer) *Chain {
	return &Chain{
		completer:   completer,
		temperature: DefaultTemperature,
	}
}

// WithTemperature returns a copy of the chain using the given temperature
func (c *Chain) WithTemperature(t float64) *Chain {
	cp := *c
	cp.temperature = t
	return &cp
}

// Run issues the analysis call, threads its exchange verbatim into the
// compression call, and returns the second reply. A second reply shorter
// than MinReplyRunes fails with ErrDegenerateOutput; there is no retry.
func (c *Chain) Run(ctx context.Context, p ChainPrompt) (string, error) {
	logger := LoggerFrom(ctx).With("correlation_id", p.CorrelationID)

	state := StatePending
	fail := func(stage int, err error) error {
		logger.Debug("Chain state change", "from", state, "to", StateFailed)
		return &ChainError{CorrelationID: p.CorrelationID, Stage: stage, State: state, Err: err}
	}

	logger.Debug("Chain step 1", "model", c.completer.Model(), "maxTokens", p.MaxOut1)
	first, err := c.completer.Complete(ctx, CompletionRequest{
		Model:        c.completer.Model(),
		SystemPrompt: p.System,
		UserPrompt:   p.User1,
		MaxTokens:    p.MaxOut1,
		Temperature:  c.temperature,
		Restart:      true,
	})
	if err != nil {
		logger.Error("Chain step 1 generation error", "error", err)
		return "", fail(1, fmt.Errorf("%w: %w", ErrProvider, err))
	}
	state = StateFirstCallDone

	conversation := ConversationState{
		System:    p.System,
		User:      p.User1,
		Assistant: first.Text,
	}

	logger.Debug("Chain step 2", "maxTokens", p.MaxOut2, "analysisLength", len(first.Text))
	second, err := c.completer.Complete(ctx, CompletionRequest{
		Model:        c.completer.Model(),
		SystemPrompt: p.System,
		UserPrompt:   p.User2,
		Conversation: &conversation,
		MaxTokens:    p.MaxOut2,
		Temperature:  c.temperature,
		Restart:      false,
	})
	if err != nil {
		logger.Error("Chain step 2 generation error", "error", err)
		return "", fail(2, fmt.Errorf("%w: %w", ErrProvider, err))
	}

	if utf8.RuneCountInString(second.Text) < MinReplyRunes {
		logger.Error("Chain generation went sideways", "reply", second.Text)
		return "", fail(2, fmt.Errorf("%w: reply %q", ErrDegenerateOutput, second.Text))
	}

	state = StateComplete
	logger.Debug("Chain complete", "state", state, "summaryLength", len(second.Text))
	return second.Text, nil
}
