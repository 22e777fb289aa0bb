package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI  ProviderType = "openai"
	ProviderOllama  ProviderType = "ollama"
	ProviderCopilot ProviderType = "copilot"
	ProviderNone    ProviderType = "none"
)

// IndexBackend selects the vector index implementation.
type IndexBackend string

const (
	IndexSQLite IndexBackend = "sqlite"
	IndexMemory IndexBackend = "memory"
)

// Config is the top-level advisor configuration, corresponding to .sqladvisor.yml.
type Config struct {
	// Rewrite model tier. ProviderNone disables the model tier entirely;
	// the heuristic tier still runs.
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`

	EmbeddingProvider   ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel      string       `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingDimensions int          `yaml:"embedding_dimensions" koanf:"embedding_dimensions"`

	IndexBackend IndexBackend `yaml:"index_backend" koanf:"index_backend"`
	IndexPath    string       `yaml:"index_path" koanf:"index_path"`

	Retrieval RetrievalConfig `yaml:"retrieval" koanf:"retrieval"`
	Rewrite   RewriteConfig   `yaml:"rewrite" koanf:"rewrite"`

	// CacheTTLSeconds controls expiry of per-fingerprint advisory results.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" koanf:"cache_ttl_seconds"`

	// Schema maps table names to comma-separated column lists, used to
	// expand SELECT * into an explicit column list. Unknown tables are
	// left alone.
	Schema map[string]string `yaml:"schema" koanf:"schema"`
}

// RetrievalConfig controls similarity search over the incident corpus.
type RetrievalConfig struct {
	Limit             int     `yaml:"limit" koanf:"limit"`
	DistanceThreshold float64 `yaml:"distance_threshold" koanf:"distance_threshold"`
	TimeoutSeconds    int     `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// RewriteConfig controls the model-assisted rewrite tier.
type RewriteConfig struct {
	TimeoutSeconds    int `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	RequestsPerMinute int `yaml:"requests_per_minute" koanf:"requests_per_minute"`
}
