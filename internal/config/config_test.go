package config

import (
	"log/slog"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"VISION_BASE_URL", "VISION_MODEL", "CHAT_BASE_URL", "CHAT_MODEL",
		"EMBEDDING_BASE_URL", "EMBEDDING_MODEL", "LLM_API_KEY",
		"EMBEDDING_DIM", "KEYFRAMES", "VECTOR_BACKEND", "QDRANT_URL",
		"QDRANT_COLLECTION", "WEB_HOST", "WEB_PORT", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.VisionModel != "minicpm-v" {
		t.Errorf("VisionModel = %q", cfg.VisionModel)
	}
	if cfg.EmbeddingDim != 768 {
		t.Errorf("EmbeddingDim = %d, want 768", cfg.EmbeddingDim)
	}
	if cfg.Keyframes != 4 {
		t.Errorf("Keyframes = %d, want 4", cfg.Keyframes)
	}
	if cfg.VectorBackend != "sqlite" {
		t.Errorf("VectorBackend = %q, want sqlite", cfg.VectorBackend)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.WebPort != "5555" {
		t.Errorf("WebPort = %q, want 5555", cfg.WebPort)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMBEDDING_DIM", "1024")
	t.Setenv("KEYFRAMES", "6")
	t.Setenv("VECTOR_BACKEND", "qdrant")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.EmbeddingDim != 1024 {
		t.Errorf("EmbeddingDim = %d, want 1024", cfg.EmbeddingDim)
	}
	if cfg.Keyframes != 6 {
		t.Errorf("Keyframes = %d, want 6", cfg.Keyframes)
	}
	if cfg.VectorBackend != "qdrant" {
		t.Errorf("VectorBackend = %q, want qdrant", cfg.VectorBackend)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric dim", "EMBEDDING_DIM", "many"},
		{"zero dim", "EMBEDDING_DIM", "0"},
		{"zero keyframes", "KEYFRAMES", "0"},
		{"bad backend", "VECTOR_BACKEND", "pinecone"},
		{"bad log level", "LOG_LEVEL", "verbose"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestCatalogPaths(t *testing.T) {
	root := "/Volumes/footage"
	if got := DBPath(root); got != filepath.Join(root, ".broll", "catalog.db") {
		t.Errorf("DBPath() = %q", got)
	}
	if got := ThumbsDir(root); got != filepath.Join(root, ".broll", "thumbs") {
		t.Errorf("ThumbsDir() = %q", got)
	}
}
