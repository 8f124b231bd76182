package service

import (
	"context"
	"fmt"

	"github.com/hyunwoojo/etf-rag-agent/config"
)

// NewAIService constructs the provider named by providerType ("" falls back
// to the configured default). Each call returns a fresh instance; switching
// providers means constructing a new one, never mutating a shared instance.
func NewAIService(ctx context.Context, cfg *config.Config, providerType string) (AIService, error) {
	if providerType == "" {
		providerType = cfg.LLMProvider
	}

	switch providerType {
	case config.ProviderOpenAI:
		return NewOpenAIService(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIEmbeddingModel), nil
	case config.ProviderLocal:
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.OllamaEmbeddingModel)
	case config.ProviderGemini:
		return NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("invalid llm provider: %q", providerType)
	}
}
