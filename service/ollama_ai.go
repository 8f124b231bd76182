package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hyunwoojo/etf-rag-agent/logger"
	ollama "github.com/ollama/ollama/api"
)

// OllamaService runs generation and embedding against a local Ollama server.
type OllamaService struct {
	client         *ollama.Client
	model          string
	embeddingModel string
	log            *logger.Logger
}

func NewOllamaService(baseURL, model, embeddingModel string) (*OllamaService, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}

	hc := &http.Client{
		Timeout: 120 * time.Second,
	}
	client := ollama.NewClient(parsedURL, hc)

	return &OllamaService{
		client:         client,
		model:          model,
		embeddingModel: embeddingModel,
		log:            logger.New("ollama"),
	}, nil
}

func (s *OllamaService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.client.Embed(ctx, &ollama.EmbedRequest{
		Model: s.embeddingModel,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding from ollama: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, errors.New("no embeddings returned")
	}
	return resp.Embeddings[0], nil
}

func (s *OllamaService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := s.client.Embed(ctx, &ollama.EmbedRequest{
		Model: s.embeddingModel,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get embeddings from ollama: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}

func (s *OllamaService) Generate(ctx context.Context, prompt, systemPrompt string, temperature float64, maxTokens int) (string, error) {
	stream := false
	var result string

	err := s.client.Generate(ctx, &ollama.GenerateRequest{
		Model:  s.model,
		Prompt: prompt,
		System: systemPrompt,
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": temperature,
			"num_predict": maxTokens,
		},
	}, func(resp ollama.GenerateResponse) error {
		result = resp.Response
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate with ollama: %w", err)
	}

	s.log.Debugf("generated %d chars", len(result))
	return result, nil
}
