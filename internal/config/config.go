package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the assistant service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	AssistantName   string
	ContextMaxTurns int

	UsersFile   string
	DatabaseURL string
	PersonaFile string

	GroqMode         string
	GroqBaseURL      string
	GroqAPIKey       string
	GroqParserAPIKey string
	GroqChatModel    string
	GroqParserModel  string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "elara"),
		AllowAnyOrigin:   false,
		AssistantName:    envOrDefault("ASSISTANT_NAME", "Elara"),
		ContextMaxTurns:  20,
		UsersFile:        envOrDefault("USERS_FILE", "data/users.json"),
		DatabaseURL:      stringsTrimSpace("DATABASE_URL"),
		PersonaFile:      stringsTrimSpace("PERSONA_FILE"),
		GroqMode:         envOrDefault("GROQ_MODE", "auto"),
		GroqBaseURL:      envOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqAPIKey:       stringsTrimSpace("GROQ_API_KEY"),
		GroqParserAPIKey: stringsTrimSpace("GROQ_API_KEY_PARSER"),
		GroqChatModel:    envOrDefault("GROQ_CHAT_MODEL", "llama-3.3-70b-versatile"),
		GroqParserModel:  envOrDefault("GROQ_PARSER_MODEL", "llama-3.1-8b-instant"),
		ShutdownTimeout:  15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ContextMaxTurns, err = intFromEnv("CONTEXT_MAX_TURNS", cfg.ContextMaxTurns)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.AssistantName) == "" {
		return Config{}, fmt.Errorf("ASSISTANT_NAME must not be empty")
	}
	// Zero is a legal window capacity: every append is evicted immediately.
	if cfg.ContextMaxTurns < 0 {
		return Config{}, fmt.Errorf("CONTEXT_MAX_TURNS must be >= 0")
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.GroqMode))
	switch mode {
	case "auto", "http", "mock":
		cfg.GroqMode = mode
	default:
		return Config{}, fmt.Errorf("invalid GROQ_MODE: %q (expected auto|http|mock)", cfg.GroqMode)
	}
	if mode == "http" && cfg.GroqAPIKey == "" {
		return Config{}, fmt.Errorf("GROQ_API_KEY environment variable not set")
	}
	if cfg.GroqParserAPIKey == "" {
		cfg.GroqParserAPIKey = cfg.GroqAPIKey
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
