package config

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"
	ProviderGemini = "gemini"
)

type Config struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	// LLM provider selection: "openai", "local" or "gemini". Switching
	// providers changes the embedding space, see service.NewAIService.
	LLMProvider string `mapstructure:"llm_provider"`

	OpenAIAPIKey         string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL        string `mapstructure:"openai_base_url"`
	OpenAIModel          string `mapstructure:"openai_model"`
	OpenAIEmbeddingModel string `mapstructure:"openai_embedding_model"`

	OllamaBaseURL        string `mapstructure:"ollama_base_url"`
	OllamaModel          string `mapstructure:"ollama_model"`
	OllamaEmbeddingModel string `mapstructure:"ollama_embedding_model"`

	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"gemini_model"`

	DartAPIKey string `mapstructure:"DART_API_KEY"`

	MongoURI string `mapstructure:"MONGODB_URI"`

	WeaviateStoreConfig WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
	RAGConfig           RAGConfig           `mapstructure:"rag_config"`
	VersioningConfig    VersioningConfig    `mapstructure:"versioning_config"`
	SchedulerConfig     SchedulerConfig     `mapstructure:"scheduler_config"`
	CollectorConfig     CollectorConfig     `mapstructure:"collector_config"`
}

type WeaviateStoreConfig struct {
	Host      string `mapstructure:"host"`
	APIKey    string `mapstructure:"WEAVIATE_APIKEY"`
	ClassName string `mapstructure:"class_name"`
}

type RAGConfig struct {
	TopK                int     `mapstructure:"top_k"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	Temperature         float64 `mapstructure:"temperature"`
	MaxTokens           int     `mapstructure:"max_tokens"`
}

type VersioningConfig struct {
	EnableDuplicateCheck bool `mapstructure:"enable_duplicate_check"`
	KeepHistory          bool `mapstructure:"keep_history"`
	MaxVersionsPerETF    int  `mapstructure:"max_versions_per_etf"`
}

type SchedulerConfig struct {
	Enable         bool   `mapstructure:"enable"`
	CrawlHour      int    `mapstructure:"crawl_hour"`
	CrawlMinute    int    `mapstructure:"crawl_minute"`
	RunImmediately bool   `mapstructure:"run_immediately"`
	MetadataFile   string `mapstructure:"metadata_file"`
}

type CollectorConfig struct {
	NaverListURL   string   `mapstructure:"naver_list_url"`
	ForeignTickers []string `mapstructure:"foreign_tickers"`
	DartDaysBack   int      `mapstructure:"dart_days_back"`
	DomesticMax    int      `mapstructure:"domestic_max"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Secrets come from the environment, never from the yaml file
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEY")
	v.BindEnv("DART_API_KEY")
	v.BindEnv("MONGODB_URI")
	v.BindEnv("weaviate_store_config.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("log_level", "info")
	v.SetDefault("llm_provider", ProviderOpenAI)
	v.SetDefault("openai_model", "gpt-4-turbo-preview")
	v.SetDefault("openai_embedding_model", "text-embedding-3-small")
	v.SetDefault("ollama_base_url", "http://localhost:11434")
	v.SetDefault("ollama_model", "qwen2.5:3b")
	v.SetDefault("ollama_embedding_model", "all-minilm")
	v.SetDefault("gemini_model", "gemini-1.5-flash")
	v.SetDefault("weaviate_store_config.host", "http://localhost:8080")
	v.SetDefault("weaviate_store_config.class_name", "ETFDocument")
	v.SetDefault("rag_config.top_k", 5)
	v.SetDefault("rag_config.similarity_threshold", 0.7)
	v.SetDefault("rag_config.temperature", 0.7)
	v.SetDefault("rag_config.max_tokens", 1500)
	v.SetDefault("versioning_config.enable_duplicate_check", true)
	v.SetDefault("versioning_config.keep_history", true)
	v.SetDefault("versioning_config.max_versions_per_etf", 10)
	v.SetDefault("scheduler_config.enable", true)
	v.SetDefault("scheduler_config.crawl_hour", 9)
	v.SetDefault("scheduler_config.crawl_minute", 0)
	v.SetDefault("scheduler_config.run_immediately", false)
	v.SetDefault("scheduler_config.metadata_file", "data/metadata.json")
	v.SetDefault("collector_config.naver_list_url", "https://finance.naver.com/api/sise/etfItemList.nhn")
	v.SetDefault("collector_config.foreign_tickers", []string{"SPY", "QQQ", "VTI", "VOO", "ARKK"})
	v.SetDefault("collector_config.dart_days_back", 30)
	v.SetDefault("collector_config.domestic_max", 0)
}

// Validate checks that the selected provider is usable with the
// credentials present.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY must be set when llm_provider is %q", ProviderOpenAI)
		}
	case ProviderLocal:
		if c.OllamaBaseURL == "" {
			return fmt.Errorf("ollama_base_url must be set when llm_provider is %q", ProviderLocal)
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set when llm_provider is %q", ProviderGemini)
		}
	default:
		return fmt.Errorf("invalid llm_provider: %q", c.LLMProvider)
	}
	return nil
}
