package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boxscore.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TEST_LLM_KEY", "sk-test")
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 8080
llm:
  provider: openai
  model: gpt-4o-mini
  api_key: ${TEST_LLM_KEY}
  timeout: 15s
scoring:
  strategy: averaged
  runs: 5
aggregate:
  service_url: http://score.internal:5000
  data_dir: /data
  files:
    future_box: next_box.csv
  premium_threshold: 25
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr() != "127.0.0.1:8080" {
		t.Errorf("Addr = %q, want 127.0.0.1:8080", cfg.Server.Addr())
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want expanded env value", cfg.LLM.APIKey)
	}
	if cfg.LLM.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", cfg.LLM.Timeout)
	}
	if cfg.LLM.BaseURL != defaultOpenAIBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.LLM.BaseURL)
	}
	if cfg.Scoring.Strategy != "averaged" || cfg.Scoring.Runs != 5 {
		t.Errorf("Scoring = %+v", cfg.Scoring)
	}
	if cfg.Aggregate.PremiumThreshold != 25 {
		t.Errorf("PremiumThreshold = %v, want 25", cfg.Aggregate.PremiumThreshold)
	}
	if cfg.Aggregate.BrandFallback != 3.5 {
		t.Errorf("BrandFallback = %v, want default 3.5", cfg.Aggregate.BrandFallback)
	}
	if got := cfg.Aggregate.Path(cfg.Aggregate.Files.FutureBox); got != filepath.Join("/data", "next_box.csv") {
		t.Errorf("future box path = %q", got)
	}
	if got := cfg.Aggregate.Path(cfg.Aggregate.Files.BoxRatings); got != filepath.Join("/data", "box_ratings.csv") {
		t.Errorf("box ratings path = %q", got)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.LLM.Model != "o1-mini" {
		t.Errorf("Model = %q, want o1-mini", cfg.LLM.Model)
	}
	if cfg.LLM.MaxTokens != 100 {
		t.Errorf("MaxTokens = %d, want 100", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, want OPENAI_API_KEY fallback", cfg.LLM.APIKey)
	}
	if cfg.Scoring.Strategy != "single" {
		t.Errorf("Strategy = %q, want single", cfg.Scoring.Strategy)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		t.Errorf("RequireAPIKey: %v", err)
	}
}

func TestLoad_PortEnvOverride(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [broken")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_UnknownStrategy(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeConfig(t, `
scoring:
  strategy: median
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load: expected validation error for unknown strategy")
	}
}

func TestLoad_UnknownProvider(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeConfig(t, `
llm:
  provider: llama
  model: x
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load: expected validation error for unknown provider")
	}
}

func TestLoad_BadTimeout(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeConfig(t, `
llm:
  timeout: soon
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load: expected error for unparsable llm.timeout")
	}
}

func TestRequireAPIKey_Missing(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.RequireAPIKey(); err == nil {
		t.Fatal("RequireAPIKey: expected error when no key is configured")
	}

	path := writeConfig(t, `
llm:
  provider: anthropic
`)
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Model != defaultAnthropicModel {
		t.Errorf("Model = %q, want anthropic default", cfg.LLM.Model)
	}
	err = cfg.RequireAPIKey()
	if err == nil || err.Error() != "ANTHROPIC_API_KEY environment variable is not set" {
		t.Errorf("RequireAPIKey = %v, want anthropic key error", err)
	}
}

func TestValidate_AfterOverride(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg.LLM.Model = "gpt-4o-mini"
	cfg.Scoring.Strategy = "averaged"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate(averaged): %v", err)
	}
	cfg.Scoring.Strategy = "median"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate: expected error for unknown strategy")
	}
}

func TestValidate_AveragedRejectsFixedTemperatureModel(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeConfig(t, `
scoring:
  strategy: averaged
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load: expected error for averaged strategy with default o1-mini model")
	}
	if !strings.Contains(err.Error(), "o1-mini") || !strings.Contains(err.Error(), "temperature") {
		t.Errorf("error should name the model and temperature, got %v", err)
	}

	path = writeConfig(t, `
llm:
  provider: anthropic
scoring:
  strategy: averaged
`)
	if _, err := Load(path); err != nil {
		t.Errorf("Load: anthropic models accept temperature, got %v", err)
	}

	path = writeConfig(t, `
llm:
  model: o3-mini
scoring:
  strategy: single
`)
	if _, err := Load(path); err != nil {
		t.Errorf("Load: single strategy never sends temperature, got %v", err)
	}
}
