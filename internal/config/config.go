// Package config loads service configuration from the environment, with
// optional .env file support for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
)

// Embedder selector values.
const (
	EmbedderMock   = "mock"
	EmbedderOpenAI = "openai"
	EmbedderONNX   = "onnx"
)

type Config struct {
	HTTPPort string
	DataDir  string
	LogLevel string

	// Embedder selects the embedding provider: mock, openai or onnx.
	Embedder     string
	OpenAIAPIKey string

	ONNXModelPath     string
	ONNXTokenizerPath string
	ONNXLibraryPath   string

	// EmbedCacheEntries enables the ristretto embedding cache when
	// positive.
	EmbedCacheEntries int64

	// AnthropicAPIKey enables Claude-generated summaries; empty keeps
	// the deterministic template.
	AnthropicAPIKey string
	SummaryModel    string
}

// Load reads configuration, applying defaults and validating the
// selected embedder up front so a misconfigured process refuses to
// start.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		DataDir:           getEnv("DATA_DIR", "data/vector_store"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Embedder:          getEnv("EMBEDDER", EmbedderMock),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		ONNXModelPath:     getEnv("ONNX_MODEL_PATH", ""),
		ONNXTokenizerPath: getEnv("ONNX_TOKENIZER_PATH", ""),
		ONNXLibraryPath:   getEnv("ONNX_LIB_PATH", ""),
		EmbedCacheEntries: getEnvAsInt64("EMBED_CACHE", 4096),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		SummaryModel:      getEnv("SUMMARY_MODEL", ""),
	}

	switch cfg.Embedder {
	case EmbedderMock:
	case EmbedderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, goerr.New("OPENAI_API_KEY is required for the openai embedder")
		}
	case EmbedderONNX:
		if cfg.ONNXModelPath == "" || cfg.ONNXTokenizerPath == "" {
			return nil, goerr.New("ONNX_MODEL_PATH and ONNX_TOKENIZER_PATH are required for the onnx embedder")
		}
	default:
		return nil, goerr.New("unknown EMBEDDER value", goerr.V("embedder", cfg.Embedder))
	}

	return cfg, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, err := strconv.ParseInt(getEnv(key, ""), 10, 64); err == nil {
		return value
	}
	return defaultValue
}
