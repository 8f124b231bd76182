package service

import (
	"context"
)

// AIService is the capability surface of an embedding/generation provider.
// Implementations wrap one remote or local model API; they are safe to share
// across goroutines only if the underlying client is.
type AIService interface {
	// Embed returns a fixed-length vector for text. Vector dimensionality is
	// provider-defined and must not be mixed across providers in one store.
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Generate produces text from prompt under systemPrompt instructions.
	// temperature is forwarded opaquely to the provider.
	Generate(ctx context.Context, prompt, systemPrompt string, temperature float64, maxTokens int) (string, error)
}
