package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// SynthesisModel answers questions; ExpansionModel is the cheaper
	// model used for query expansion.
	SynthesisModel string
	ExpansionModel string
	LLMTimeout     time.Duration

	EmbeddingModel string
	VectorSize     int

	// CorpusBackend selects where chunks come from: "jsonl" or "sqlite".
	CorpusBackend string
	ChunksPath    string
	DBPath        string

	// IndexBackend selects the vector index: "memory" or "qdrant".
	IndexBackend     string
	IndexPath        string
	QdrantURL        string
	QdrantCollection string

	// Blob URLs for fetching prebuilt artifacts when local files are
	// missing. Empty disables fetching.
	ChunksBlobURL string
	IndexBlobURL  string
	FetchTimeout  time.Duration

	// Rerank weight overrides. Negative means "use the default".
	RerankVectorWeight  float64
	RerankKeywordWeight float64
	RerankHeadingBoost  float64
	RerankTitleBoost    float64
	RerankLevelBoost    float64

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		SynthesisModel: getEnv("SYNTHESIS_MODEL", "gpt-4o"),
		ExpansionModel: getEnv("EXPANSION_MODEL", "gpt-4o-mini"),

		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		CorpusBackend: getEnv("CORPUS_BACKEND", "jsonl"),
		ChunksPath:    getEnv("CHUNKS_PATH", "./data/chunks.jsonl"),
		DBPath:        getEnv("DB_PATH", "./data/rocon-docs.db"),

		IndexBackend:     getEnv("INDEX_BACKEND", "memory"),
		IndexPath:        getEnv("INDEX_PATH", "./data/index.gob"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "rocon-docs"),

		ChunksBlobURL: getEnv("CHUNKS_BLOB_URL", ""),
		IndexBlobURL:  getEnv("INDEX_BLOB_URL", ""),

		APIPort:   getEnv("API_PORT", "9000"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	switch cfg.CorpusBackend {
	case "jsonl", "sqlite":
	default:
		return nil, fmt.Errorf("CORPUS_BACKEND must be jsonl or sqlite, got %q", cfg.CorpusBackend)
	}
	switch cfg.IndexBackend {
	case "memory", "qdrant":
	default:
		return nil, fmt.Errorf("INDEX_BACKEND must be memory or qdrant, got %q", cfg.IndexBackend)
	}

	// Note: this must match the output vector size of the embeddings
	// model; text-embedding-3-small produces 1536 dimensions. If it
	// changes, the index artifacts must be rebuilt.
	vectorSize, err := strconv.Atoi(getEnv("VECTOR_SIZE", "1536"))
	if err != nil {
		return nil, fmt.Errorf("VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("VECTOR_SIZE must be greater than 0")
	}
	cfg.VectorSize = vectorSize

	cfg.LLMTimeout, err = durationEnv("LLM_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.FetchTimeout, err = durationEnv("FETCH_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, err
	}

	for _, w := range []struct {
		key  string
		dest *float64
	}{
		{"RERANK_VECTOR_WEIGHT", &cfg.RerankVectorWeight},
		{"RERANK_KEYWORD_WEIGHT", &cfg.RerankKeywordWeight},
		{"RERANK_HEADING_BOOST", &cfg.RerankHeadingBoost},
		{"RERANK_TITLE_BOOST", &cfg.RerankTitleBoost},
		{"RERANK_LEVEL_BOOST", &cfg.RerankLevelBoost},
	} {
		*w.dest, err = floatEnv(w.key, -1)
		if err != nil {
			return nil, err
		}
	}

	// Create the data directory up front so index persistence and the
	// sqlite backend have somewhere to write.
	dataDir := filepath.Dir(cfg.IndexPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseLogLevel maps a level name to its slog level.
func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", s)
	}
}

// floatEnv parses an environment variable as a float64.
func floatEnv(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return f, nil
}

// durationEnv parses an environment variable as a time.Duration.
func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return d, nil
}
