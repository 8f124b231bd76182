package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/hyunwoojo/etf-rag-agent/logger"
	"google.golang.org/api/option"
)

const geminiEmbeddingModel = "text-embedding-004"

type GeminiService struct {
	client    *genai.Client
	modelName string
	log       *logger.Logger
}

func NewGeminiService(ctx context.Context, apiKey, modelName string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiService{
		client:    client,
		modelName: modelName,
		log:       logger.New("gemini"),
	}, nil
}

func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	em := s.client.EmbeddingModel(geminiEmbeddingModel)
	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed with gemini: %w", err)
	}
	if resp.Embedding == nil {
		return nil, errors.New("no embedding returned")
	}
	return resp.Embedding.Values, nil
}

func (s *GeminiService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	em := s.client.EmbeddingModel(geminiEmbeddingModel)
	batch := em.NewBatch()
	for _, text := range texts {
		batch = batch.AddContent(genai.Text(text))
	}
	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to batch embed with gemini: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	vectors := make([][]float32, len(resp.Embeddings))
	for i, embedding := range resp.Embeddings {
		vectors[i] = embedding.Values
	}
	return vectors, nil
}

func (s *GeminiService) Generate(ctx context.Context, prompt, systemPrompt string, temperature float64, maxTokens int) (string, error) {
	// A fresh model per call keeps the shared client free of per-request state.
	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(float32(temperature))
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate with gemini: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}

	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content += string(text)
			}
		}
	}
	s.log.Debugf("generated %d chars", len(content))
	return content, nil
}

// Close releases the underlying API client.
func (s *GeminiService) Close() error {
	return s.client.Close()
}
