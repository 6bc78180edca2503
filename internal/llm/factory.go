package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/vinayprograms/agentloop/internal/config"
)

// ConfigFactory builds providers from configuration profiles and caches them.
type ConfigFactory struct {
	cfg *config.Config

	mu        sync.Mutex
	providers map[string]Provider
}

// NewConfigFactory creates a factory over cfg.
func NewConfigFactory(cfg *config.Config) *ConfigFactory {
	return &ConfigFactory{cfg: cfg, providers: make(map[string]Provider)}
}

// GetProvider returns the provider of a profile. Unknown profiles, including
// the default model hint, resolve to the [llm] backend.
func (f *ConfigFactory) GetProvider(profile string) (Provider, error) {
	key := profile
	if !f.cfg.HasProfile(profile) {
		key = ""
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.providers[key]; ok {
		return p, nil
	}

	settings := f.cfg.GetProfile(key)
	p, err := NewProvider(settings, f.cfg.GetProfileAPIKey(key))
	if err != nil {
		return nil, err
	}
	if key != "" {
		p = &profileProvider{Provider: p, settings: settings}
	}
	f.providers[key] = p
	return p, nil
}

// profileProvider applies a profile's generation parameters to every request.
type profileProvider struct {
	Provider
	settings config.LLMConfig
}

func (p *profileProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req.Model = p.settings.Model
	req.Temperature = p.settings.Temperature
	if p.settings.MaxTokens > 0 {
		req.MaxTokens = p.settings.MaxTokens
	}
	if p.settings.Stop != nil {
		req.Stop = p.settings.Stop
	}
	return p.Provider.Chat(ctx, req)
}

// NewProvider builds a provider from backend settings.
func NewProvider(l config.LLMConfig, apiKey string) (Provider, error) {
	switch l.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAIProvider(l.Model, apiKey, l.BaseURL), nil
	case config.ProviderAnthropic:
		return NewAnthropicProvider(l.Model, apiKey, l.BaseURL), nil
	}
	if config.KitProvider(l.Provider) {
		return NewKitProvider(l, apiKey)
	}
	return nil, fmt.Errorf("unsupported provider %q", l.Provider)
}
