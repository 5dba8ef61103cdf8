package groq

import (
	"context"

	"github.com/manudrel/elara/internal/contextstore"
)

// HTTPGenerator produces replies from the large chat model.
type HTTPGenerator struct {
	client *client
	model  string
}

func NewHTTPGenerator(baseURL, apiKey, model string) *HTTPGenerator {
	return &HTTPGenerator{client: newClient(baseURL, apiKey), model: model}
}

func (g *HTTPGenerator) Generate(ctx context.Context, systemPrompt string, turns []contextstore.Turn, prompt string) (string, error) {
	messages := make([]chatMessage, 0, len(turns)+2)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, t := range turns {
		messages = append(messages, chatMessage{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	return g.client.chatCompletion(ctx, chatRequest{
		Model:               g.model,
		Messages:            messages,
		Temperature:         0.5,
		MaxCompletionTokens: 1000,
		TopP:                0.5,
	})
}
