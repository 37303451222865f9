// Package config loads and validates service configuration from environment
// variables, with optional .env support. Invalid configuration is a startup
// failure, never a runtime fallback.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the service. Retrieval weights are
// validated at load time so a misconfigured ranking formula cannot reach a
// query.
type Config struct {
	EmbeddingBaseURL   string `validate:"required,url"`
	EmbeddingModelName string `validate:"required"`
	EmbeddingAPIKey    string
	DBPath             string `validate:"required"`
	QdrantURL          string `validate:"required,url"`
	QdrantCollection   string `validate:"required"`
	QdrantVectorSize   int    `validate:"required,gt=0"`
	APIPort            string `validate:"required,numeric"`
	LogLevel           string `validate:"oneof=debug info warn error"`
	LogFormat          string `validate:"oneof=text json"`

	Retrieval RetrievalConfig
}

// RetrievalConfig holds the ranking parameters. The channel weights must sum
// to 1 and lambda must stay in (0, 1]; both are checked by Load.
type RetrievalConfig struct {
	TopK             int     `validate:"required,gt=0,lte=50"`
	VectorWeight     float64 `validate:"gte=0,lte=1"`
	LexicalWeight    float64 `validate:"gte=0,lte=1"`
	Lambda           float64 `validate:"gt=0,lte=1"`
	RerankDepth      int     `validate:"required,gt=0"`
	DiversityFloor   int     `validate:"required,gt=0"`
	SearchTimeoutSec int     `validate:"required,gt=0,lte=60"`
}

// Load reads configuration from environment variables. A .env file in the
// current directory or any parent up to the project root is loaded first;
// real environment variables win over .env values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", "dummy-key"),
		DBPath:             getEnv("DB_PATH", "./data/runbookai.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "runbook_chunks"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	// Must match the embedding model's output dimension. Changing it means
	// recreating the Qdrant collection.
	vectorSize, err := getEnvInt("QDRANT_VECTOR_SIZE", 0)
	if err != nil {
		return nil, err
	}
	cfg.QdrantVectorSize = vectorSize

	if cfg.Retrieval, err = loadRetrieval(); err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	weightSum := cfg.Retrieval.VectorWeight + cfg.Retrieval.LexicalWeight
	if weightSum < 0.999 || weightSum > 1.001 {
		return nil, fmt.Errorf("retrieval weights must sum to 1, got %.3f", weightSum)
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func loadRetrieval() (RetrievalConfig, error) {
	rc := RetrievalConfig{}

	var err error
	if rc.TopK, err = getEnvInt("RETRIEVAL_TOP_K", 8); err != nil {
		return rc, err
	}
	if rc.VectorWeight, err = getEnvFloat("RETRIEVAL_VECTOR_WEIGHT", 0.6); err != nil {
		return rc, err
	}
	if rc.LexicalWeight, err = getEnvFloat("RETRIEVAL_LEXICAL_WEIGHT", 0.4); err != nil {
		return rc, err
	}
	if rc.Lambda, err = getEnvFloat("RETRIEVAL_MMR_LAMBDA", 0.7); err != nil {
		return rc, err
	}
	if rc.RerankDepth, err = getEnvInt("RETRIEVAL_RERANK_DEPTH", 20); err != nil {
		return rc, err
	}
	if rc.DiversityFloor, err = getEnvInt("RETRIEVAL_DIVERSITY_FLOOR", 3); err != nil {
		return rc, err
	}
	if rc.SearchTimeoutSec, err = getEnvInt("RETRIEVAL_SEARCH_TIMEOUT_SEC", 5); err != nil {
		return rc, err
	}
	return rc, nil
}

// loadDotEnv loads .env from the current directory or the nearest ancestor
// that has one, up to a bounded depth.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return value, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return value, nil
}
