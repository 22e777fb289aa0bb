package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SQLADVISOR_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: SQLADVISOR_PROVIDER -> provider, etc.
	if err := k.Load(env.Provider("SQLADVISOR_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "SQLADVISOR_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized rewrite-model provider values.
var validProviders = map[ProviderType]bool{
	ProviderOpenAI:  true,
	ProviderOllama:  true,
	ProviderCopilot: true,
	ProviderNone:    true,
}

// validEmbeddingProviders is the set of recognized embedding provider values.
var validEmbeddingProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderOllama: true,
}

// Validate checks that the configuration contains valid values.
// Validation failures are configuration errors: fatal at startup, never
// surfaced per request.
func (c *Config) Validate() error {
	if c.Provider != "" && !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of openai, ollama, copilot, none", c.Provider)
	}

	if c.EmbeddingProvider == "" {
		return fmt.Errorf("embedding_provider is required")
	}
	if !validEmbeddingProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q: must be openai or ollama", c.EmbeddingProvider)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding_model is required")
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("embedding_dimensions must be positive, got %d", c.EmbeddingDimensions)
	}

	switch c.IndexBackend {
	case IndexSQLite:
		if c.IndexPath == "" {
			return fmt.Errorf("index_path is required for the sqlite backend")
		}
	case IndexMemory:
	default:
		return fmt.Errorf("invalid index_backend %q: must be sqlite or memory", c.IndexBackend)
	}

	if c.Retrieval.Limit <= 0 {
		return fmt.Errorf("retrieval.limit must be positive, got %d", c.Retrieval.Limit)
	}
	if c.Retrieval.DistanceThreshold <= 0 || c.Retrieval.DistanceThreshold > 1 {
		return fmt.Errorf("retrieval.distance_threshold must be in (0,1], got %v", c.Retrieval.DistanceThreshold)
	}

	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("cache_ttl_seconds must be non-negative, got %d", c.CacheTTLSeconds)
	}

	return nil
}

// CacheTTL returns the result-cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RewriteTimeout returns the model-tier timeout as a duration.
func (c *Config) RewriteTimeout() time.Duration {
	return time.Duration(c.Rewrite.TimeoutSeconds) * time.Second
}

// RetrievalTimeout returns the retrieval timeout as a duration.
func (c *Config) RetrievalTimeout() time.Duration {
	return time.Duration(c.Retrieval.TimeoutSeconds) * time.Second
}

// SchemaColumns expands the comma-separated column lists in Schema into
// slices, keyed by lowercased table name.
func (c *Config) SchemaColumns() map[string][]string {
	out := make(map[string][]string, len(c.Schema))
	for table, cols := range c.Schema {
		var list []string
		for _, col := range strings.Split(cols, ",") {
			if col = strings.TrimSpace(col); col != "" {
				list = append(list, col)
			}
		}
		if len(list) > 0 {
			out[strings.ToLower(table)] = list
		}
	}
	return out
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderCopilot:
		return "COPILOT_API_KEY"
	default:
		return ""
	}
}
