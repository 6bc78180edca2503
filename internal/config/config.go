// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the agent configuration.
type Config struct {
	Agent    AgentConfig        `toml:"agent"`
	LLM      LLMConfig          `toml:"llm"`      // Default backend settings
	Profiles map[string]Profile `toml:"profiles"` // Selected by an agent's model hint
	Tools    ToolsConfig        `toml:"tools"`
	Trace    TraceConfig        `toml:"trace"`
	Catalog  CatalogConfig      `toml:"catalog"`
	Log      LogConfig          `toml:"log"`
}

// AgentConfig contains orchestration settings.
type AgentConfig struct {
	Root          string `toml:"root"`           // Agent started by `run` without --agent
	AgentsDir     string `toml:"agents_dir"`     // Directory of agent documents
	SkillsDir     string `toml:"skills_dir"`     // Root of the skill tree
	MaxSteps      int    `toml:"max_steps"`      // Iterations per activation
	HistoryWindow int    `toml:"history_window"` // Messages sent with each request
	MaxDepth      int    `toml:"max_depth"`      // Delegation depth ceiling
}

// LLMConfig contains backend settings.
type LLMConfig struct {
	Provider    string   `toml:"provider"` // openai, anthropic, or one of the agentkit-backed providers
	Model       string   `toml:"model"`
	APIKeyEnv   string   `toml:"api_key_env"`
	BaseURL     string   `toml:"base_url"` // Custom endpoint (llama.cpp, Ollama, LM Studio)
	MaxTokens   int      `toml:"max_tokens"`
	Temperature float64  `toml:"temperature"`
	Stop        []string `toml:"stop"`
	MaxRetries  int      `toml:"max_retries"` // Transient-error retries inside agentkit-backed providers
}

// Profile overrides parts of the default backend.
type Profile struct {
	Provider    string   `toml:"provider"`
	Model       string   `toml:"model"`
	APIKeyEnv   string   `toml:"api_key_env"`
	BaseURL     string   `toml:"base_url"`
	MaxTokens   int      `toml:"max_tokens"`
	Temperature *float64 `toml:"temperature"`
	Stop        []string `toml:"stop"`
}

// ToolsConfig contains built-in tool settings.
type ToolsConfig struct {
	Shell        string `toml:"shell"`
	ShellTimeout int    `toml:"shell_timeout"` // Seconds
}

// TraceConfig selects trace sinks. Empty fields disable a sink.
type TraceConfig struct {
	Dir         string `toml:"dir"`
	SQLitePath  string `toml:"sqlite_path"`
	NATSURL     string `toml:"nats_url"`
	NATSSubject string `toml:"nats_subject"`
}

// CatalogConfig controls catalog caching.
type CatalogConfig struct {
	Watch bool `toml:"watch"` // Cache catalogs and invalidate on directory changes
}

// LogConfig controls diagnostics on stderr.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // console or json
}

// Supported providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	// Served through agentkit/llm
	ProviderOllama       = "ollama"
	ProviderOllamaCloud  = "ollama-cloud"
	ProviderLMStudio     = "lmstudio"
	ProviderGroq         = "groq"
	ProviderMistral      = "mistral"
	ProviderOpenRouter   = "openrouter"
	ProviderXAI          = "xai"
	ProviderGoogle       = "google"
	ProviderOpenAICompat = "openai-compat"
	ProviderLiteLLM      = "litellm"
)

// KitProvider reports whether provider is served through agentkit/llm.
func KitProvider(provider string) bool {
	switch provider {
	case ProviderOllama, ProviderOllamaCloud, ProviderLMStudio, ProviderGroq, ProviderMistral,
		ProviderOpenRouter, ProviderXAI, ProviderGoogle, ProviderOpenAICompat, ProviderLiteLLM:
		return true
	}
	return false
}

// SupportedProvider reports whether provider names a known backend.
func SupportedProvider(provider string) bool {
	return provider == ProviderOpenAI || provider == ProviderAnthropic || KitProvider(provider)
}

// requiresBaseURL lists providers without a default endpoint.
func requiresBaseURL(provider string) bool {
	return provider == ProviderOpenAICompat || provider == ProviderLiteLLM
}

// New creates a new config with defaults.
func New() *Config {
	return &Config{
		Agent: AgentConfig{
			Root:          "brain",
			AgentsDir:     "agents",
			SkillsDir:     "skills",
			MaxSteps:      15,
			HistoryWindow: 15,
			MaxDepth:      5,
		},
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Model:       "local",
			BaseURL:     "http://localhost:8080/v1",
			MaxTokens:   4096,
			Temperature: 0.1,
			Stop:        []string{"<|im_end|>"},
			MaxRetries:  1,
		},
		Tools: ToolsConfig{
			Shell:        "/bin/bash",
			ShellTimeout: 60,
		},
		Trace: TraceConfig{
			Dir:         "traces",
			NATSSubject: "agent.trace",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFile loads configuration from a TOML file.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads agent.toml from the current directory.
// A missing file yields the defaults.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	path := filepath.Join(cwd, "agent.toml")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	return LoadFile(path)
}

// ApplyEnv overrides settings from AGENT_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("AGENT_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("AGENT_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v, ok := os.LookupEnv("AGENT_BASE_URL"); ok {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("AGENT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate reports settings the engine cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if !SupportedProvider(c.LLM.Provider) {
		problems = append(problems, fmt.Sprintf("unsupported provider %q", c.LLM.Provider))
	}
	if requiresBaseURL(c.LLM.Provider) && c.LLM.BaseURL == "" {
		problems = append(problems, fmt.Sprintf("llm.base_url is required for provider %s", c.LLM.Provider))
	}
	if c.LLM.MaxRetries < 0 {
		problems = append(problems, "llm.max_retries must not be negative")
	}
	if c.LLM.Model == "" {
		problems = append(problems, "llm.model is required")
	}
	if c.Agent.Root == "" {
		problems = append(problems, "agent.root is required")
	}
	if c.Agent.MaxSteps <= 0 {
		problems = append(problems, "agent.max_steps must be positive")
	}
	if c.Agent.HistoryWindow <= 0 {
		problems = append(problems, "agent.history_window must be positive")
	}
	if c.Agent.MaxDepth <= 0 {
		problems = append(problems, "agent.max_depth must be positive")
	}
	for name, p := range c.Profiles {
		if p.Provider != "" && !SupportedProvider(p.Provider) {
			problems = append(problems, fmt.Sprintf("profile %s: unsupported provider %q", name, p.Provider))
		}
		if p.Provider != "" && requiresBaseURL(p.Provider) && p.BaseURL == "" {
			problems = append(problems, fmt.Sprintf("profile %s: base_url is required for provider %s", name, p.Provider))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ShellTimeout returns the execute_shell timeout.
func (c *Config) ShellTimeout() time.Duration {
	return time.Duration(c.Tools.ShellTimeout) * time.Second
}

// GetAPIKey returns the API key from the configured environment variable.
// If api_key_env is not set, uses the default env var for the provider.
func (c *Config) GetAPIKey() string {
	return apiKey(c.LLM)
}

func apiKey(l LLMConfig) string {
	envVar := l.APIKeyEnv
	if envVar == "" {
		envVar = DefaultAPIKeyEnv(l.Provider)
	}
	if envVar == "" {
		return ""
	}
	return os.Getenv(envVar)
}

// DefaultAPIKeyEnv returns the default environment variable name for a provider.
func DefaultAPIKeyEnv(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGroq:
		return "GROQ_API_KEY"
	case ProviderMistral:
		return "MISTRAL_API_KEY"
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	case ProviderXAI:
		return "XAI_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	case ProviderOllamaCloud:
		return "OLLAMA_API_KEY"
	default:
		return ""
	}
}

// HasProfile reports whether a profile of that name is configured.
func (c *Config) HasProfile(name string) bool {
	_, ok := c.Profiles[name]
	return ok
}

// GetProfile returns the backend settings for a profile.
// Unset profile fields, and unknown profiles, fall back to [llm].
func (c *Config) GetProfile(name string) LLMConfig {
	profile, ok := c.Profiles[name]
	if name == "" || !ok {
		return c.LLM
	}

	result := c.LLM
	result.Stop = append([]string(nil), c.LLM.Stop...)
	if profile.Provider != "" && profile.Provider != c.LLM.Provider {
		// Another provider never inherits the default endpoint or key variable.
		result.Provider = profile.Provider
		result.BaseURL = ""
		result.APIKeyEnv = ""
	}
	if profile.Model != "" {
		result.Model = profile.Model
	}
	if profile.APIKeyEnv != "" {
		result.APIKeyEnv = profile.APIKeyEnv
	}
	if profile.BaseURL != "" {
		result.BaseURL = profile.BaseURL
	}
	if profile.MaxTokens != 0 {
		result.MaxTokens = profile.MaxTokens
	}
	if profile.Temperature != nil {
		result.Temperature = *profile.Temperature
	}
	if profile.Stop != nil {
		result.Stop = profile.Stop
	}
	return result
}

// GetProfileAPIKey returns the API key for a specific profile.
func (c *Config) GetProfileAPIKey(profileName string) string {
	return apiKey(c.GetProfile(profileName))
}
