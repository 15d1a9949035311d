package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Vector backend names accepted by VECTOR_BACKEND.
const (
	BackendRedis  = "redis"
	BackendQdrant = "qdrant"
	BackendNone   = "none"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort   string
	LogLevel  slog.Level
	LogFormat string

	DataDir   string
	DBPath    string
	IndexPath string
	TrendPath string
	ImportDir string

	VectorDim        int
	VectorBackend    string
	BackendTimeout   time.Duration
	RedisAddr        string
	RedisDB          int
	QdrantURL        string
	QdrantCollection string

	EmbeddingBaseURL string
	EmbeddingTimeout time.Duration
	GeoLookupURL     string

	TrendDecayThreshold float64
	TrendBoost          float64

	RankWeightSimilarity float64
	RankWeightPopularity float64
	RankWeightFreshness  float64
	RankFusionWeight     float64
	RankZeroAggregate    string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	// Walk up a few levels looking for a project-level .env
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
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

	dataDir := getEnv("DATA_DIR", "./data")
	cfg := &Config{
		APIPort:          getEnv("API_PORT", "8000"),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "text")),
		DataDir:          dataDir,
		DBPath:           getEnv("DB_PATH", filepath.Join(dataDir, "ai-core.db")),
		IndexPath:        getEnv("INDEX_PATH", filepath.Join(dataDir, "vector_index.json")),
		TrendPath:        getEnv("TREND_PATH", filepath.Join(dataDir, "trends.json")),
		ImportDir:        getEnv("IMPORT_DIR", ""),
		VectorBackend:    strings.ToLower(getEnv("VECTOR_BACKEND", BackendRedis)),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6334"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "tracks"),
		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		GeoLookupURL:     getEnv("GEO_LOOKUP_URL", ""),
	}
	cfg.RankZeroAggregate = strings.ToLower(getEnv("RANK_ZERO_AGGREGATE", "neutral"))

	if cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.VectorDim, err = getInt("VECTOR_DIM", 128); err != nil {
		return nil, err
	}
	if cfg.VectorDim <= 0 {
		return nil, fmt.Errorf("VECTOR_DIM must be greater than 0")
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RedisDB < 0 {
		return nil, fmt.Errorf("REDIS_DB must not be negative")
	}

	switch cfg.VectorBackend {
	case BackendRedis, BackendQdrant, BackendNone:
	default:
		return nil, fmt.Errorf("VECTOR_BACKEND must be one of redis, qdrant, none, got %q", cfg.VectorBackend)
	}
	switch cfg.RankZeroAggregate {
	case "neutral", "reject":
	default:
		return nil, fmt.Errorf("RANK_ZERO_AGGREGATE must be neutral or reject, got %q", cfg.RankZeroAggregate)
	}

	if cfg.BackendTimeout, err = getDuration("BACKEND_TIMEOUT", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.EmbeddingTimeout, err = getDuration("EMBEDDING_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}

	if cfg.TrendDecayThreshold, err = getFloat("TREND_DECAY_THRESHOLD", 0.3); err != nil {
		return nil, err
	}
	if cfg.TrendDecayThreshold < 0 {
		return nil, fmt.Errorf("TREND_DECAY_THRESHOLD must not be negative")
	}
	if cfg.TrendBoost, err = getFloat("TREND_BOOST", 1.1); err != nil {
		return nil, err
	}
	if cfg.TrendBoost <= 1 {
		return nil, fmt.Errorf("TREND_BOOST must be greater than 1")
	}

	weights := []struct {
		key  string
		def  float64
		dest *float64
	}{
		{"RANK_WEIGHT_SIMILARITY", 0.6, &cfg.RankWeightSimilarity},
		{"RANK_WEIGHT_POPULARITY", 0.3, &cfg.RankWeightPopularity},
		{"RANK_WEIGHT_FRESHNESS", 0.1, &cfg.RankWeightFreshness},
		{"RANK_FUSION_WEIGHT", 0.25, &cfg.RankFusionWeight},
	}
	for _, w := range weights {
		v, err := getFloat(w.key, w.def)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("%s must not be negative", w.key)
		}
		*w.dest = v
	}
	if cfg.RankWeightSimilarity+cfg.RankWeightPopularity+cfg.RankWeightFreshness == 0 {
		return nil, fmt.Errorf("at least one of the RANK_WEIGHT_* values must be positive")
	}
	if cfg.RankFusionWeight > 1 {
		return nil, fmt.Errorf("RANK_FUSION_WEIGHT must not exceed 1")
	}

	// Create the data directories for the catalog, index and trend files
	for _, p := range []string{cfg.DBPath, cfg.IndexPath, cfg.TrendPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
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

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return v, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %w", err)
	}
	return level, nil
}
