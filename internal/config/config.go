// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Host string `envconfig:"BORA_HOST" yaml:"host"`
	Port int    `envconfig:"BORA_PORT" yaml:"port"`

	// Qdrant configuration
	Qdrant QdrantConfig `yaml:"qdrant"`

	// Embedding configuration
	Embedding EmbeddingConfig `yaml:"embedding"`

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// RAG pipeline configuration
	RAG RAGConfig `yaml:"rag"`

	// Cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Bus configuration
	Bus BusConfig `yaml:"bus"`

	// Logging configuration
	Log LogConfig `yaml:"log"`

	// Security configuration
	Security SecurityConfig `yaml:"security"`
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	Host       string `envconfig:"QDRANT_HOST" yaml:"host"`
	Port       int    `envconfig:"QDRANT_PORT" yaml:"port"`
	APIKey     string `envconfig:"QDRANT_API_KEY" yaml:"api_key"`
	UseTLS     bool   `envconfig:"QDRANT_USE_TLS" yaml:"use_tls"`
	Collection string `envconfig:"QDRANT_COLLECTION" yaml:"collection"`
	TimeoutSec int    `envconfig:"QDRANT_TIMEOUT_SEC" yaml:"timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider selects the embedding backend: "openai" or "huggingface".
	Provider   string `envconfig:"BORA_EMBED_PROVIDER" yaml:"provider"`
	Model      string `envconfig:"BORA_EMBED_MODEL" yaml:"model"`
	Dimension  int    `envconfig:"BORA_EMBED_DIM" yaml:"dimension"`
	APIKey     string `envconfig:"BORA_EMBED_API_KEY" yaml:"api_key"`
	BaseURL    string `envconfig:"BORA_EMBED_BASE_URL" yaml:"base_url"`
	TimeoutSec int    `envconfig:"BORA_EMBED_TIMEOUT_SEC" yaml:"timeout_sec"`
}

// LLMConfig holds the answer generation provider chain settings.
type LLMConfig struct {
	// Provider selects the primary provider family: "openai" or "huggingface".
	Provider string `envconfig:"BORA_LLM_PROVIDER" yaml:"provider"`

	// AllowFallback permits falling through to the alternate provider
	// when the primary fails.
	AllowFallback bool `envconfig:"BORA_LLM_ALLOW_FALLBACK" yaml:"allow_fallback"`

	// TolerateOutage enables the rule-based heuristic answer when every
	// provider fails. When false, provider exhaustion is a terminal error.
	TolerateOutage bool `envconfig:"BORA_LLM_TOLERATE_OUTAGE" yaml:"tolerate_outage"`

	OpenAIKey     string  `envconfig:"OPENAI_API_KEY" yaml:"openai_key"`
	OpenAIModel   string  `envconfig:"BORA_OPENAI_MODEL" yaml:"openai_model"`
	HFKey         string  `envconfig:"HUGGINGFACE_API_KEY" yaml:"hf_key"`
	HFModel       string  `envconfig:"BORA_HF_MODEL" yaml:"hf_model"`
	HFBaseURL     string  `envconfig:"BORA_HF_BASE_URL" yaml:"hf_base_url"`
	Temperature   float64 `envconfig:"BORA_LLM_TEMPERATURE" yaml:"temperature"`
	MaxTokens     int     `envconfig:"BORA_LLM_MAX_TOKENS" yaml:"max_tokens"`
	FastMaxTokens int     `envconfig:"BORA_LLM_FAST_MAX_TOKENS" yaml:"fast_max_tokens"`
	TimeoutSec    int     `envconfig:"BORA_LLM_TIMEOUT_SEC" yaml:"timeout_sec"`
}

// RAGConfig holds retrieval pipeline settings.
type RAGConfig struct {
	DefaultTopK       int     `envconfig:"BORA_TOP_K" yaml:"default_top_k"`
	MinSimilarity     float64 `envconfig:"BORA_MIN_SIMILARITY" yaml:"min_similarity"`
	MaxExamples       int     `envconfig:"BORA_MAX_EXAMPLES" yaml:"max_examples"`
	FastMaxExamples   int     `envconfig:"BORA_FAST_MAX_EXAMPLES" yaml:"fast_max_examples"`
	HistoryWindow     int     `envconfig:"BORA_HISTORY_WINDOW" yaml:"history_window"`
	CacheTTLSec       int     `envconfig:"BORA_RESULT_CACHE_TTL_SEC" yaml:"cache_ttl_sec"`
	MaxTopK           int     `envconfig:"BORA_MAX_TOP_K" yaml:"max_top_k"`
	EnrichmentEnabled bool    `envconfig:"BORA_ENRICHMENT_ENABLED" yaml:"enrichment_enabled"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Type     string `envconfig:"BORA_CACHE_TYPE" yaml:"type"`
	RedisURL string `envconfig:"BORA_REDIS_URL" yaml:"redis_url"`
}

// BusConfig holds analytics event bus settings.
type BusConfig struct {
	Type         string `envconfig:"BORA_BUS_TYPE" yaml:"type"`
	KafkaBrokers string `envconfig:"BORA_KAFKA_BROKERS" yaml:"kafka_brokers"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"BORA_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"BORA_LOG_FORMAT" yaml:"format"`
}

// SecurityConfig holds security settings.
type SecurityConfig struct {
	RateLimit   int    `envconfig:"BORA_RATE_LIMIT" yaml:"rate_limit"` // 0 = disabled
	CORSOrigins string `envconfig:"BORA_CORS_ORIGINS" yaml:"cors_origins"`
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Host = "0.0.0.0"
	cfg.Port = 8080

	cfg.Qdrant = QdrantConfig{
		Host:       "localhost",
		Port:       6334,
		Collection: "bora_lexicon",
		TimeoutSec: 30,
	}

	cfg.Embedding = EmbeddingConfig{
		Provider:   "openai",
		Model:      "text-embedding-3-small",
		Dimension:  1536,
		TimeoutSec: 10,
	}

	cfg.LLM = LLMConfig{
		Provider:       "openai",
		AllowFallback:  true,
		TolerateOutage: true,
		OpenAIModel:    "gpt-4o-mini",
		HFModel:        "Qwen/Qwen3-1.7B",
		Temperature:    0.7,
		MaxTokens:      512,
		FastMaxTokens:  200,
		TimeoutSec:     30,
	}

	cfg.RAG = RAGConfig{
		DefaultTopK:       10,
		MinSimilarity:     0.7,
		MaxExamples:       3,
		FastMaxExamples:   1,
		HistoryWindow:     3,
		CacheTTLSec:       120,
		MaxTopK:           50,
		EnrichmentEnabled: true,
	}

	cfg.Cache = CacheConfig{
		Type:     "memory",
		RedisURL: "redis://localhost:6379",
	}

	cfg.Bus = BusConfig{
		Type: "memory",
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}

	cfg.Security = SecurityConfig{
		RateLimit:   0,
		CORSOrigins: "*",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}

	validEmbedProviders := map[string]bool{"openai": true, "huggingface": true}
	if !validEmbedProviders[c.Embedding.Provider] {
		errs = append(errs, fmt.Sprintf("invalid embedding provider: %s (must be openai or huggingface)", c.Embedding.Provider))
	}

	if c.Embedding.Dimension < 1 {
		errs = append(errs, "embedding dimension must be positive")
	}

	validLLMProviders := map[string]bool{"openai": true, "huggingface": true}
	if !validLLMProviders[c.LLM.Provider] {
		errs = append(errs, fmt.Sprintf("invalid llm provider: %s (must be openai or huggingface)", c.LLM.Provider))
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, "llm temperature must be between 0 and 2")
	}

	if c.RAG.DefaultTopK < 1 {
		errs = append(errs, "default_top_k must be positive")
	}

	if c.RAG.MaxTopK < c.RAG.DefaultTopK {
		errs = append(errs, "max_top_k must be >= default_top_k")
	}

	if c.RAG.MinSimilarity < 0 || c.RAG.MinSimilarity > 1 {
		errs = append(errs, "min_similarity must be between 0 and 1")
	}

	if c.RAG.MaxExamples < 1 {
		errs = append(errs, "max_examples must be positive")
	}

	if c.RAG.FastMaxExamples < 1 || c.RAG.FastMaxExamples > c.RAG.MaxExamples {
		errs = append(errs, "fast_max_examples must be between 1 and max_examples")
	}

	if c.RAG.CacheTTLSec < 0 {
		errs = append(errs, "cache_ttl_sec must not be negative")
	}

	validCacheTypes := map[string]bool{"memory": true, "redis": true}
	if !validCacheTypes[c.Cache.Type] {
		errs = append(errs, fmt.Sprintf("invalid cache type: %s (must be memory or redis)", c.Cache.Type))
	}

	validBusTypes := map[string]bool{"memory": true, "kafka": true}
	if !validBusTypes[c.Bus.Type] {
		errs = append(errs, fmt.Sprintf("invalid bus type: %s (must be memory or kafka)", c.Bus.Type))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Address returns the server address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheTTL returns the result cache TTL as a duration.
func (c *RAGConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}
