// Package llm is the boundary to text-generation backends. The engine sends
// an ordered message list with generation parameters and gets back the raw
// generated text; nothing here interprets that text.
package llm

import (
	"context"
	"errors"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyResponse is returned when a backend produces no choices.
var ErrEmptyResponse = errors.New("empty response from backend")

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a single generation call.
type ChatRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stop        []string  `json:"stop,omitempty"`
}

// ChatResponse is the generated text plus usage counters.
type ChatResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model,omitempty"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// Provider generates text. Implementations do not retry.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ProviderFactory resolves a profile name (an agent's model hint) to a provider.
type ProviderFactory interface {
	GetProvider(profile string) (Provider, error)
}

// SingleProviderFactory returns the same provider for every profile.
type SingleProviderFactory struct {
	provider Provider
}

// NewSingleProviderFactory wraps p.
func NewSingleProviderFactory(p Provider) *SingleProviderFactory {
	return &SingleProviderFactory{provider: p}
}

// GetProvider returns the wrapped provider.
func (f *SingleProviderFactory) GetProvider(string) (Provider, error) {
	return f.provider, nil
}

// splitSystem separates system turns from the conversation.
func splitSystem(msgs []Message) (system []string, rest []Message) {
	for _, m := range msgs {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
