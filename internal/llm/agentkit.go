package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	kitllm "github.com/vinayprograms/agentkit/llm"

	"github.com/vinayprograms/agentloop/internal/config"
)

// Backoff bounds for transient-error retries inside agentkit providers.
const (
	kitInitBackoff = time.Second
	kitMaxBackoff  = 10 * time.Second
)

// KitProvider serves the providers agentkit/llm implements: local servers
// (Ollama, LM Studio), hosted OpenAI-compatible APIs and Gemini.
// Temperature is left to the server; stop sequences are applied to the
// returned text.
type KitProvider struct {
	provider kitllm.Provider
	name     string
}

// NewKitProvider builds an agentkit provider from backend settings.
func NewKitProvider(l config.LLMConfig, apiKey string) (*KitProvider, error) {
	maxTokens := l.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	p, err := kitllm.NewProvider(kitllm.ProviderConfig{
		Provider:  l.Provider,
		Model:     l.Model,
		APIKey:    apiKey,
		MaxTokens: maxTokens,
		BaseURL:   l.BaseURL,
		RetryConfig: kitllm.RetryConfig{
			MaxRetries:  l.MaxRetries,
			InitBackoff: kitInitBackoff,
			MaxBackoff:  kitMaxBackoff,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s backend: %w", l.Provider, err)
	}
	return newKitProvider(kitllm.WithTracing(p, l.Provider), l.Provider), nil
}

func newKitProvider(p kitllm.Provider, name string) *KitProvider {
	return &KitProvider{provider: p, name: name}
}

// Chat forwards the conversation to the agentkit provider.
func (p *KitProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	msgs := make([]kitllm.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, kitllm.Message{Role: m.Role, Content: m.Content})
	}

	resp, err := p.provider.Chat(ctx, kitllm.ChatRequest{
		Messages:  msgs,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%s api error: %w", p.name, err)
	}
	if resp == nil {
		return nil, ErrEmptyResponse
	}

	return &ChatResponse{
		Content:      cutAtStop(resp.Content, req.Stop),
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}

// cutAtStop truncates text at the earliest stop sequence.
func cutAtStop(text string, stop []string) string {
	cut := len(text)
	for _, s := range stop {
		if s == "" {
			continue
		}
		if i := strings.Index(text, s); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:cut]
}
