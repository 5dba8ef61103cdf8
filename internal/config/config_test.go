package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":9090")
	}
	if cfg.AssistantName != "Elara" {
		t.Fatalf("AssistantName = %q, want %q", cfg.AssistantName, "Elara")
	}
	if cfg.ContextMaxTurns != 20 {
		t.Fatalf("ContextMaxTurns = %d, want 20", cfg.ContextMaxTurns)
	}
	if cfg.GroqMode != "auto" {
		t.Fatalf("GroqMode = %q, want %q", cfg.GroqMode, "auto")
	}
}

func TestLoadHTTPModeRequiresAPIKey(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("GROQ_MODE", "http")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want missing GROQ_API_KEY error")
	}

	t.Setenv("GROQ_API_KEY", "gsk_test")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GroqParserAPIKey != "gsk_test" {
		t.Fatalf("GroqParserAPIKey = %q, want fallback to GROQ_API_KEY", cfg.GroqParserAPIKey)
	}
}

func TestLoadRejectsNegativeContextSize(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("CONTEXT_MAX_TURNS", "-1")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want negative capacity error")
	}
}

func TestLoadAcceptsZeroContextSize(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("CONTEXT_MAX_TURNS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ContextMaxTurns != 0 {
		t.Fatalf("ContextMaxTurns = %d, want 0", cfg.ContextMaxTurns)
	}
}

func TestLoadRejectsUnknownGroqMode(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("GROQ_MODE", "grpc")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want invalid GROQ_MODE error")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"ASSISTANT_NAME",
		"CONTEXT_MAX_TURNS",
		"USERS_FILE",
		"DATABASE_URL",
		"PERSONA_FILE",
		"GROQ_MODE",
		"GROQ_BASE_URL",
		"GROQ_API_KEY",
		"GROQ_API_KEY_PARSER",
		"GROQ_CHAT_MODEL",
		"GROQ_PARSER_MODEL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
