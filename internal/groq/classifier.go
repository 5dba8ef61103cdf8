package groq

import (
	"context"
	"encoding/json"
	"log"
	"strings"
)

const classifierSystemPrompt = `You are an intent classifier.

Commands are valid ONLY when the message explicitly asks for them:
- "change role", "set role", "update role" -> role_change
- "change mood", "set mood", "I am (MOOD HERE)" -> mood_change

Answer strictly as JSON in the format:
{
  "intent": "chat" | "role_change" | "mood_change" | "other_command",
  "extracted_data": { ... }
}

- Greetings and normal conversation -> "chat"
- For role_change extract {"target_name": "...", "new_role": "..."}
- For mood_change extract {"target_name": "...", "new_mood": "good"|"bad"|"neutral"}
- For anything else: {"raw": "original message"}`

// HTTPClassifier asks a small model to classify intent and extract fields,
// in JSON mode at temperature zero.
type HTTPClassifier struct {
	client *client
	model  string
}

func NewHTTPClassifier(baseURL, apiKey, model string) *HTTPClassifier {
	return &HTTPClassifier{client: newClient(baseURL, apiKey), model: model}
}

// rawClassification is the unvalidated wire shape.
type rawClassification struct {
	Intent        string `json:"intent"`
	ExtractedData struct {
		TargetName string `json:"target_name"`
		NewRole    string `json:"new_role"`
		NewMood    string `json:"new_mood"`
		Raw        string `json:"raw"`
	} `json:"extracted_data"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	content, err := c.client.chatCompletion(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: classifierSystemPrompt},
			{Role: "user", Content: text},
		},
		Temperature:         0,
		MaxCompletionTokens: 150,
		ResponseFormat:      &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return Classification{Intent: IntentChat}, err
	}

	return parseClassification(content), nil
}

// parseClassification validates the model's output. Anything malformed
// degrades to plain chat, never an error.
func parseClassification(content string) Classification {
	var raw rawClassification
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		log.Printf("classifier: unparsable output, defaulting to chat: %v", err)
		return Classification{Intent: IntentChat}
	}
	return Classification{
		Intent:  ParseIntent(raw.Intent),
		Target:  strings.TrimSpace(raw.ExtractedData.TargetName),
		NewRole: strings.TrimSpace(raw.ExtractedData.NewRole),
		NewMood: strings.TrimSpace(raw.ExtractedData.NewMood),
	}
}
