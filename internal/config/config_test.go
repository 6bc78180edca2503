package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()
	if cfg.Agent.Root != "brain" || cfg.Agent.MaxSteps != 15 || cfg.Agent.HistoryWindow != 15 || cfg.Agent.MaxDepth != 5 {
		t.Errorf("unexpected agent defaults %+v", cfg.Agent)
	}
	if cfg.LLM.Temperature != 0.1 || cfg.LLM.MaxTokens != 4096 {
		t.Errorf("unexpected generation defaults %+v", cfg.LLM)
	}
	if len(cfg.LLM.Stop) != 1 || cfg.LLM.Stop[0] != "<|im_end|>" {
		t.Errorf("unexpected stop sequences %v", cfg.LLM.Stop)
	}
	if cfg.ShellTimeout() != 60*time.Second {
		t.Errorf("unexpected shell timeout %v", cfg.ShellTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.toml")
	content := `
[agent]
root = "coordinator"
max_steps = 8

[llm]
provider = "anthropic"
model = "claude-sonnet-4-5"
base_url = ""

[profiles.fast]
model = "claude-haiku-4-5"
max_tokens = 1024
temperature = 0.0

[profiles.local]
provider = "openai"
model = "qwen"
base_url = "http://localhost:11434/v1"

[trace]
dir = "/tmp/traces"
sqlite_path = "/tmp/trace.db"

[catalog]
watch = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Agent.Root != "coordinator" || cfg.Agent.MaxSteps != 8 {
		t.Errorf("unexpected agent config %+v", cfg.Agent)
	}
	if cfg.Agent.HistoryWindow != 15 {
		t.Error("unset keys should keep defaults")
	}
	if !cfg.Catalog.Watch || cfg.Trace.SQLitePath != "/tmp/trace.db" {
		t.Errorf("unexpected trace/catalog %+v %+v", cfg.Trace, cfg.Catalog)
	}
	if !cfg.HasProfile("fast") || cfg.HasProfile("slow") {
		t.Error("profile lookup mismatch")
	}

	fast := cfg.GetProfile("fast")
	if fast.Provider != "anthropic" || fast.Model != "claude-haiku-4-5" || fast.MaxTokens != 1024 || fast.Temperature != 0 {
		t.Errorf("unexpected fast profile %+v", fast)
	}

	local := cfg.GetProfile("local")
	if local.Provider != "openai" || local.BaseURL != "http://localhost:11434/v1" || local.MaxTokens != 4096 {
		t.Errorf("unexpected local profile %+v", local)
	}

	if got := cfg.GetProfile("unknown"); got.Model != "claude-sonnet-4-5" {
		t.Errorf("unknown profile should fall back to [llm], got %+v", got)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.toml")
	os.WriteFile(path, []byte("[agent\nroot ="), 0644)
	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadDefault_MissingFile(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("missing file should yield defaults: %v", err)
	}
	if cfg.Agent.Root != "brain" {
		t.Errorf("unexpected root %q", cfg.Agent.Root)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("AGENT_PROVIDER", "anthropic")
	t.Setenv("AGENT_MODEL", "claude-x")
	t.Setenv("AGENT_BASE_URL", "")
	t.Setenv("AGENT_LOG_LEVEL", "debug")

	cfg := New()
	cfg.ApplyEnv()
	if cfg.LLM.Provider != "anthropic" || cfg.LLM.Model != "claude-x" || cfg.LLM.BaseURL != "" || cfg.Log.Level != "debug" {
		t.Errorf("unexpected overrides %+v %+v", cfg.LLM, cfg.Log)
	}
}

func TestValidate(t *testing.T) {
	cfg := New()
	cfg.LLM.Provider = "carrier-pigeon"
	cfg.Agent.MaxSteps = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "carrier-pigeon") || !strings.Contains(err.Error(), "max_steps") {
		t.Errorf("error should name every problem: %v", err)
	}
}

func TestValidate_KitProviders(t *testing.T) {
	cfg := New()
	cfg.LLM.Provider = ProviderOllama
	cfg.LLM.BaseURL = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("ollama needs no endpoint: %v", err)
	}

	cfg.LLM.Provider = ProviderOpenAICompat
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "base_url is required") {
		t.Errorf("expected missing base_url error, got %v", err)
	}

	cfg = New()
	cfg.Profiles = map[string]Profile{"fast": {Provider: ProviderLiteLLM}}
	cfg.LLM.MaxRetries = -1
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "profile fast") || !strings.Contains(err.Error(), "max_retries") {
		t.Errorf("expected profile and retry errors, got %v", err)
	}
}

func TestKitProvider(t *testing.T) {
	for _, p := range []string{"ollama", "lmstudio", "groq", "google", "openai-compat"} {
		if !KitProvider(p) || !SupportedProvider(p) {
			t.Errorf("%s should be served through agentkit", p)
		}
	}
	if KitProvider(ProviderOpenAI) || KitProvider(ProviderAnthropic) {
		t.Error("openai and anthropic have native adapters")
	}
	if DefaultAPIKeyEnv(ProviderGroq) != "GROQ_API_KEY" || DefaultAPIKeyEnv(ProviderOllama) != "" {
		t.Error("unexpected key env names for agentkit providers")
	}
}

func TestGetAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-default")
	t.Setenv("CUSTOM_KEY", "sk-custom")

	cfg := New()
	if got := cfg.GetAPIKey(); got != "sk-default" {
		t.Errorf("expected provider default key, got %q", got)
	}
	cfg.LLM.APIKeyEnv = "CUSTOM_KEY"
	if got := cfg.GetAPIKey(); got != "sk-custom" {
		t.Errorf("expected custom key, got %q", got)
	}
	if DefaultAPIKeyEnv("anthropic") != "ANTHROPIC_API_KEY" || DefaultAPIKeyEnv("other") != "" {
		t.Error("unexpected default key env names")
	}
}
