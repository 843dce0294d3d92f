package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected default env dev, got %q", cfg.Env)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected default provider openai, got %q", cfg.LLMProvider)
	}
	if cfg.RunnerMaxAttempts != 3 {
		t.Fatalf("expected default 3 attempts, got %d", cfg.RunnerMaxAttempts)
	}
	if cfg.RunnerBaseDelay != time.Second {
		t.Fatalf("expected default 1s base delay, got %v", cfg.RunnerBaseDelay)
	}
	if len(cfg.SupportedLanguages) == 0 {
		t.Fatal("expected supported language defaults")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "PROD")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_MAX_ATTEMPTS", "5")
	t.Setenv("LLM_RETRY_BASE_DELAY", "250ms")
	t.Setenv("SUPPORTED_LANGUAGES", "en, es ,")
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected 9090, got %q", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini, got %q", cfg.LLMProvider)
	}
	if cfg.RunnerMaxAttempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", cfg.RunnerMaxAttempts)
	}
	if cfg.RunnerBaseDelay != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", cfg.RunnerBaseDelay)
	}
	if len(cfg.SupportedLanguages) != 2 || cfg.SupportedLanguages[1] != "es" {
		t.Fatalf("unexpected languages: %v", cfg.SupportedLanguages)
	}
}

func TestLoadRejectsBadNumericValues(t *testing.T) {
	t.Setenv("LLM_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("LLM_RETRY_BASE_DELAY", "-5s")

	cfg := Load()
	if cfg.RunnerMaxAttempts != 3 {
		t.Fatalf("expected fallback to 3, got %d", cfg.RunnerMaxAttempts)
	}
	if cfg.RunnerBaseDelay != time.Second {
		t.Fatalf("expected fallback to 1s, got %v", cfg.RunnerBaseDelay)
	}
}
