package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	path := writeConfig(t, "llm_provider: openai\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "ETFDocument", cfg.WeaviateStoreConfig.ClassName)
	assert.Equal(t, 5, cfg.RAGConfig.TopK)
	assert.Equal(t, 0.7, cfg.RAGConfig.SimilarityThreshold)
	assert.True(t, cfg.VersioningConfig.EnableDuplicateCheck)
	assert.Equal(t, 10, cfg.VersioningConfig.MaxVersionsPerETF)
	assert.Equal(t, 9, cfg.SchedulerConfig.CrawlHour)
	assert.Contains(t, cfg.CollectorConfig.ForeignTickers, "SPY")
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
llm_provider: local
ollama_base_url: http://ollama:11434
rag_config:
  top_k: 3
  similarity_threshold: 0.85
scheduler_config:
  crawl_hour: 6
  crawl_minute: 30
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderLocal, cfg.LLMProvider)
	assert.Equal(t, "http://ollama:11434", cfg.OllamaBaseURL)
	assert.Equal(t, 3, cfg.RAGConfig.TopK)
	assert.Equal(t, 0.85, cfg.RAGConfig.SimilarityThreshold)
	assert.Equal(t, 6, cfg.SchedulerConfig.CrawlHour)
	assert.Equal(t, 30, cfg.SchedulerConfig.CrawlMinute)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{LLMProvider: ProviderOpenAI}
	assert.Error(t, cfg.Validate())
	cfg.OpenAIAPIKey = "sk-test"
	assert.NoError(t, cfg.Validate())

	cfg = &Config{LLMProvider: ProviderGemini}
	assert.Error(t, cfg.Validate())
	cfg.GeminiAPIKey = "key"
	assert.NoError(t, cfg.Validate())

	cfg = &Config{LLMProvider: ProviderLocal, OllamaBaseURL: "http://localhost:11434"}
	assert.NoError(t, cfg.Validate())

	cfg = &Config{LLMProvider: "something-else"}
	assert.Error(t, cfg.Validate())
}
