package groq

import (
	"context"
	"fmt"
	"strings"

	"github.com/manudrel/elara/internal/contextstore"
)

// MockClassifier provides deterministic classification when no API key is
// configured. It only recognizes blunt keyword forms.
type MockClassifier struct{}

func NewMockClassifier() *MockClassifier { return &MockClassifier{} }

func (c *MockClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	select {
	case <-ctx.Done():
		return Classification{Intent: IntentChat}, ctx.Err()
	default:
	}

	lower := strings.ToLower(text)
	fields := strings.Fields(text)

	if strings.Contains(lower, "role") && len(fields) >= 2 {
		return Classification{
			Intent:  IntentRoleChange,
			Target:  fields[len(fields)-2],
			NewRole: fields[len(fields)-1],
		}, nil
	}
	if strings.Contains(lower, "mood") && len(fields) >= 2 {
		return Classification{
			Intent:  IntentMoodChange,
			Target:  fields[len(fields)-2],
			NewMood: strings.ToLower(fields[len(fields)-1]),
		}, nil
	}
	return Classification{Intent: IntentChat}, nil
}

// MockGenerator provides deterministic local replies when the chat model is
// unavailable.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

func (g *MockGenerator) Generate(ctx context.Context, _ string, turns []contextstore.Turn, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	base := strings.TrimSpace(prompt)
	if base == "" {
		base = "I am listening."
	}
	if len(turns) == 0 {
		return fmt.Sprintf("I heard you: %s", base), nil
	}

	last := strings.TrimSpace(turns[len(turns)-1].Content)
	if last == "" {
		return fmt.Sprintf("I heard you: %s", base), nil
	}
	return fmt.Sprintf("I heard you: %s\nI also remember: %s", base, last), nil
}
