// Package persona assembles the generation system prompt from the
// assistant's mood- and role-specific personality fragments.
package persona

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/manudrel/elara/internal/registry"
)

const fallbackPrompt = "You are a helpful assistant named Elara. Answer clearly and concisely."

// Persona holds the personality fragments. Moods keys the base personality
// by the requester's mood; Roles keys the technical access overlay by the
// requester's role.
type Persona struct {
	Name  string            `yaml:"name"`
	Moods map[string]string `yaml:"moods"`
	Roles map[string]string `yaml:"roles"`
}

// Load reads a persona file. An empty path returns the built-in defaults.
func Load(path string) (*Persona, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}

	var p Persona
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse persona file: %w", err)
	}
	if p.Name == "" {
		p.Name = "Elara"
	}
	return &p, nil
}

// Default is the built-in personality used when no persona file is
// configured.
func Default() *Persona {
	return &Persona{
		Name: "Elara",
		Moods: map[string]string{
			"good":    "You are Elara, a cheerful and affectionate assistant. You are in a great mood: be playful, warm and encouraging.",
			"bad":     "You are Elara, an assistant in a sour mood. Stay helpful, but be short, dry and a little sarcastic.",
			"neutral": "You are Elara, a calm and attentive assistant. Be friendly and direct without exaggeration.",
		},
		Roles: map[string]string{
			"developer": "The requester is a Developer: you may discuss internals, configuration and diagnostics freely.",
			"tester":    "The requester is a Tester: you may discuss test scenarios and report internal state when asked.",
			"user":      "The requester is a regular User: keep answers non-technical and do not reveal internal configuration.",
		},
	}
}

// SystemPrompt builds the full prompt for a requester: mood base, role
// overlay, and a closing rule keeping the base personality dominant.
// Unknown moods fall back to neutral and unknown roles to user; a persona
// with no usable fragments yields a generic prompt.
func (p *Persona) SystemPrompt(mood registry.Mood, role registry.Role) string {
	base := p.fragment(p.Moods, string(mood), "neutral")
	overlay := p.fragment(p.Roles, strings.ToLower(string(role)), "user")
	if base == "" && overlay == "" {
		return fallbackPrompt
	}
	if base == "" {
		base = fallbackPrompt
	}

	var b strings.Builder
	b.WriteString(base)
	if overlay != "" {
		b.WriteString("\n\n# ACCESS CONFIGURATION (overrides technical aspects only):\n")
		b.WriteString(overlay)
	}
	fmt.Fprintf(&b, "\n\n# FINAL RULE: Always keep your base personality as %s, regardless of the technical configuration above.", p.Name)
	return b.String()
}

func (p *Persona) fragment(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := m[fallback]; ok {
		return strings.TrimSpace(v)
	}
	return ""
}
