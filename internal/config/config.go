package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Catalog files live under this directory at the drive root so the whole
// catalog travels with the media.
const (
	AppDirName    = ".broll"
	DBFileName    = "catalog.db"
	ThumbsDirName = "thumbs"
)

// Config holds all configuration for the application.
type Config struct {
	VisionBaseURL string
	VisionModel   string
	ChatBaseURL   string
	ChatModel     string
	EmbedBaseURL  string
	EmbedModel    string
	APIKey        string
	EmbeddingDim  int
	Keyframes     int
	VectorBackend string // "sqlite" or "qdrant"
	QdrantURL     string
	QdrantColl    string
	WebHost       string
	WebPort       string
	LogLevel      slog.Level
	LogFormat     string
}

// Load reads configuration from environment variables, applying defaults
// for optional fields. A .env file in the current directory is loaded
// first; variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		VisionBaseURL: getEnv("VISION_BASE_URL", "http://localhost:11434"),
		VisionModel:   getEnv("VISION_MODEL", "minicpm-v"),
		ChatBaseURL:   getEnv("CHAT_BASE_URL", "http://localhost:11434"),
		ChatModel:     getEnv("CHAT_MODEL", "gemma3:4b"),
		EmbedBaseURL:  getEnv("EMBEDDING_BASE_URL", "http://localhost:11434"),
		EmbedModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		APIKey:        getEnv("LLM_API_KEY", "dummy-key"),
		VectorBackend: getEnv("VECTOR_BACKEND", "sqlite"),
		QdrantURL:     getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantColl:    getEnv("QDRANT_COLLECTION", "broll_clips"),
		WebHost:       getEnv("WEB_HOST", "127.0.0.1"),
		WebPort:       getEnv("WEB_PORT", "5555"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}

	dim, err := getEnvInt("EMBEDDING_DIM", 768)
	if err != nil {
		return nil, err
	}
	if dim <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIM must be greater than 0")
	}
	cfg.EmbeddingDim = dim

	frames, err := getEnvInt("KEYFRAMES", 4)
	if err != nil {
		return nil, err
	}
	if frames <= 0 {
		return nil, fmt.Errorf("KEYFRAMES must be greater than 0")
	}
	cfg.Keyframes = frames

	switch cfg.VectorBackend {
	case "sqlite", "qdrant":
	default:
		return nil, fmt.Errorf("VECTOR_BACKEND must be \"sqlite\" or \"qdrant\", got %q", cfg.VectorBackend)
	}

	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	return cfg, nil
}

// AppDir returns the catalog data directory for a drive root.
func AppDir(driveRoot string) string {
	return filepath.Join(driveRoot, AppDirName)
}

// DBPath returns the catalog database path for a drive root.
func DBPath(driveRoot string) string {
	return filepath.Join(AppDir(driveRoot), DBFileName)
}

// ThumbsDir returns the thumbnail directory for a drive root.
func ThumbsDir(driveRoot string) string {
	return filepath.Join(AppDir(driveRoot), ThumbsDirName)
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
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}
