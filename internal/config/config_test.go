package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderNone {
		t.Errorf("expected default provider %q, got %q", ProviderNone, cfg.Provider)
	}
	if cfg.EmbeddingDimensions != 384 {
		t.Errorf("expected default embedding_dimensions 384, got %d", cfg.EmbeddingDimensions)
	}
	if cfg.Retrieval.Limit != 3 {
		t.Errorf("expected default retrieval.limit 3, got %d", cfg.Retrieval.Limit)
	}
	if cfg.Retrieval.DistanceThreshold != 0.7 {
		t.Errorf("expected default distance threshold 0.7, got %v", cfg.Retrieval.DistanceThreshold)
	}
	if cfg.CacheTTL() != 10*time.Minute {
		t.Errorf("expected default cache TTL 10m, got %v", cfg.CacheTTL())
	}
	if cfg.RewriteTimeout() != 15*time.Second {
		t.Errorf("expected default rewrite timeout 15s, got %v", cfg.RewriteTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.sqladvisor.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o"
	original.IndexBackend = IndexMemory
	original.Retrieval.Limit = 5
	original.CacheTTLSeconds = 120

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.IndexBackend != original.IndexBackend {
		t.Errorf("index_backend: got %q, want %q", loaded.IndexBackend, original.IndexBackend)
	}
	if loaded.Retrieval.Limit != original.Retrieval.Limit {
		t.Errorf("retrieval.limit: got %d, want %d", loaded.Retrieval.Limit, original.Retrieval.Limit)
	}
	if loaded.CacheTTLSeconds != original.CacheTTLSeconds {
		t.Errorf("cache_ttl_seconds: got %d, want %d", loaded.CacheTTLSeconds, original.CacheTTLSeconds)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.yml")

	os.Setenv("SQLADVISOR_PROVIDER", "ollama")
	defer os.Unsetenv("SQLADVISOR_PROVIDER")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != ProviderOllama {
		t.Errorf("env override not applied: got %q", cfg.Provider)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"bad provider", func(c *Config) { c.Provider = "claude" }, true},
		{"missing embedding provider", func(c *Config) { c.EmbeddingProvider = "" }, true},
		{"zero dimensions", func(c *Config) { c.EmbeddingDimensions = 0 }, true},
		{"bad backend", func(c *Config) { c.IndexBackend = "redis" }, true},
		{"sqlite without path", func(c *Config) { c.IndexPath = "" }, true},
		{"memory without path", func(c *Config) { c.IndexBackend = IndexMemory; c.IndexPath = "" }, false},
		{"zero limit", func(c *Config) { c.Retrieval.Limit = 0 }, true},
		{"threshold above one", func(c *Config) { c.Retrieval.DistanceThreshold = 1.5 }, true},
		{"negative ttl", func(c *Config) { c.CacheTTLSeconds = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
