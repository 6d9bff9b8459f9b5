package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	GigaChat  GigaChatConfig
	Embedding EmbeddingConfig
	RAG       RAGConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level  string
	Output string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	Temperature        float64
	InsecureSkipVerify bool
	// AIURL and OAuthURL override the GigaChat endpoints; empty keeps the client defaults.
	AIURL    string
	OAuthURL string
	// RateLimit is the number of generation calls allowed per second; 0 disables throttling.
	RateLimit float64
	Burst     int
}

type EmbeddingConfig struct {
	Provider  string // "ollama" or "openai"
	BaseURL   string
	Model     string
	APIKeyEnv string
	Timeout   time.Duration
	BatchSize int
	AutoPull  bool
	// PullTimeout bounds an automatic model download; zero means no limit.
	PullTimeout time.Duration
	Preload     bool
}

type RAGConfig struct {
	TopK                 int
	ContextPreviewLength int
	CacheEmbeddings      bool
}

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

func Load() (*Config, error) {
	// .env is optional; plain environment variables work too (Docker/K8s)
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout := getEnvInt("SERVER_READ_TIMEOUT", 30)
	writeTimeout := getEnvInt("SERVER_WRITE_TIMEOUT", 120)
	embeddingTimeout := getEnvInt("EMBEDDING_TIMEOUT", 60)
	pullTimeout := getEnvInt("EMBEDDING_PULL_TIMEOUT", 1800)

	provider := strings.ToLower(getEnv("EMBEDDING_PROVIDER", ProviderOllama))

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			AllowOrigins: getEnv("SERVER_ALLOW_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "rental_terms"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			Temperature:        getEnvFloat("GIGACHAT_TEMPERATURE", 0.3),
			InsecureSkipVerify: getEnvBool("GIGACHAT_INSECURE_SKIP_VERIFY", true),
			AIURL:              getEnv("GIGACHAT_AI_URL", ""),
			OAuthURL:           getEnv("GIGACHAT_OAUTH_URL", ""),
			RateLimit:          getEnvFloat("GIGACHAT_RATE_LIMIT", 1),
			Burst:              getEnvInt("GIGACHAT_BURST", 3),
		},
		Embedding: EmbeddingConfig{
			Provider:  provider,
			BaseURL:   getEnv("EMBEDDING_BASE_URL", defaultEmbeddingBaseURL(provider)),
			Model:     getEnv("EMBEDDING_MODEL", defaultEmbeddingModel(provider)),
			APIKeyEnv: getEnv("EMBEDDING_API_KEY_ENV", "OPENAI_API_KEY"),
			Timeout:     time.Duration(embeddingTimeout) * time.Second,
			BatchSize:   getEnvInt("EMBEDDING_BATCH_SIZE", 64),
			AutoPull:    getEnvBool("EMBEDDING_AUTO_PULL", true),
			PullTimeout: time.Duration(pullTimeout) * time.Second,
			Preload:     getEnvBool("EMBEDDING_PRELOAD", true),
		},
		RAG: RAGConfig{
			TopK:                 getEnvInt("RAG_TOP_K", 5),
			ContextPreviewLength: getEnvInt("RAG_CONTEXT_PREVIEW_LENGTH", 500),
			CacheEmbeddings:      getEnvBool("RAG_CACHE_EMBEDDINGS", false),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Output: getEnv("LOG_OUTPUT", "stderr"),
		},
	}

	// GigaChat rejects the request outright outside this range
	if t := cfg.GigaChat.Temperature; t < 0 || t > 2 {
		return nil, fmt.Errorf("GIGACHAT_TEMPERATURE must be between 0 and 2, got %v", t)
	}

	if cfg.RAG.TopK < 1 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.ContextPreviewLength < 1 {
		cfg.RAG.ContextPreviewLength = 500
	}
	if cfg.Embedding.BatchSize < 1 {
		cfg.Embedding.BatchSize = 64
	}

	return cfg, nil
}

func defaultEmbeddingBaseURL(provider string) string {
	if provider == ProviderOpenAI {
		return "https://api.openai.com/v1"
	}
	return "http://localhost:11434"
}

func defaultEmbeddingModel(provider string) string {
	if provider == ProviderOpenAI {
		return "text-embedding-3-small"
	}
	// all-MiniLM-L6-v2, 384 dimensions
	return "all-minilm"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}
