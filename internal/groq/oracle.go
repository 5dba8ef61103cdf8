// Package groq talks to the two external model collaborators: a small
// intent classifier and the reply generator, both over the Groq
// chat-completions API.
package groq

import (
	"context"
	"strings"

	"github.com/manudrel/elara/internal/contextstore"
)

// Intent is the classifier's verdict on what a message asks for.
type Intent string

const (
	IntentChat       Intent = "chat"
	IntentRoleChange Intent = "role_change"
	IntentMoodChange Intent = "mood_change"
	IntentOther      Intent = "other_command"
)

// ParseIntent maps a raw classifier label onto the intent domain. Unknown
// labels land on IntentOther, which downstream treats like plain chat.
func ParseIntent(s string) Intent {
	switch Intent(strings.TrimSpace(s)) {
	case IntentChat:
		return IntentChat
	case IntentRoleChange:
		return IntentRoleChange
	case IntentMoodChange:
		return IntentMoodChange
	case "":
		return IntentChat
	default:
		return IntentOther
	}
}

// Classification is the validated form of the classifier's output. The
// optional fields are only meaningful for their intent.
type Classification struct {
	Intent  Intent
	Target  string
	NewRole string
	NewMood string
}

// Classifier resolves a message's intent. Best effort: callers must degrade
// to IntentChat when it fails.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// Generator produces the assistant's reply from a system prompt, the prior
// dialogue turns and the new prompt.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, turns []contextstore.Turn, prompt string) (string, error)
}

// Config controls oracle construction.
type Config struct {
	Mode         string
	BaseURL      string
	APIKey       string
	ParserAPIKey string
	ChatModel    string
	ParserModel  string
}

// NewClassifier picks an implementation by mode: http when a key is
// available, mock otherwise.
func NewClassifier(cfg Config) Classifier {
	if useHTTP(cfg.Mode, cfg.ParserAPIKey) {
		return NewHTTPClassifier(cfg.BaseURL, cfg.ParserAPIKey, cfg.ParserModel)
	}
	return NewMockClassifier()
}

// NewGenerator picks an implementation by mode, like NewClassifier.
func NewGenerator(cfg Config) Generator {
	if useHTTP(cfg.Mode, cfg.APIKey) {
		return NewHTTPGenerator(cfg.BaseURL, cfg.APIKey, cfg.ChatModel)
	}
	return NewMockGenerator()
}

func useHTTP(mode, key string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "http":
		return true
	case "mock":
		return false
	default:
		return strings.TrimSpace(key) != ""
	}
}
