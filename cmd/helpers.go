package cmd

import (
	"fmt"
	"os"

	"github.com/dbaops/sql-advisor/internal/advisor"
	"github.com/dbaops/sql-advisor/internal/config"
	"github.com/dbaops/sql-advisor/internal/db"
	"github.com/dbaops/sql-advisor/internal/embeddings"
	"github.com/dbaops/sql-advisor/internal/llm"
	"github.com/dbaops/sql-advisor/internal/retrieval"
	"github.com/dbaops/sql-advisor/internal/rewrite"
	"github.com/dbaops/sql-advisor/internal/rules"
	"github.com/dbaops/sql-advisor/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `sqladvisor init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newEmbeddingProvider wraps the configured embedder in a lazily-initialized
// provider. Construction errors surface on first use.
func newEmbeddingProvider(cfg *config.Config) *embeddings.Provider {
	return embeddings.NewProvider(func() (embeddings.Embedder, error) {
		switch cfg.EmbeddingProvider {
		case config.ProviderOpenAI:
			apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
			if apiKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
			}
			return embeddings.NewOpenAIEmbedder(apiKey, cfg.EmbeddingModel, cfg.EmbeddingDimensions), nil
		case config.ProviderOllama:
			return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, cfg.EmbeddingDimensions, os.Getenv("OLLAMA_HOST")), nil
		default:
			return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.EmbeddingProvider)
		}
	})
}

// openIndex opens the configured vector index. The returned cleanup releases
// backing resources and is safe to call once.
func openIndex(cfg *config.Config, provider *embeddings.Provider) (vectordb.Index, func(), error) {
	switch cfg.IndexBackend {
	case config.IndexMemory:
		emb, err := provider.Embedder()
		if err != nil {
			return nil, nil, err
		}
		idx, err := vectordb.NewMemoryIndex(emb, cfg.EmbeddingDimensions)
		if err != nil {
			return nil, nil, fmt.Errorf("creating memory index: %w", err)
		}
		return idx, func() {}, nil
	default:
		database, err := db.Open(cfg.IndexPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening index at %s: %w", cfg.IndexPath, err)
		}
		idx, err := vectordb.NewSQLiteIndex(database, cfg.EmbeddingDimensions)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		return idx, func() { database.Close() }, nil
	}
}

// newRewriteEngine builds the rewrite engine, including the model tier when
// a provider is configured. Provider "none" (or empty) disables the model
// tier; heuristics still run.
func newRewriteEngine(cfg *config.Config) (*rewrite.Engine, error) {
	var provider llm.Provider
	if cfg.Provider != "" && cfg.Provider != config.ProviderNone {
		p, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("creating rewrite provider: %w", err)
		}
		if cfg.Rewrite.RequestsPerMinute > 0 {
			p = llm.NewRateLimitedProvider(p, cfg.Rewrite.RequestsPerMinute)
		}
		provider = p
	}
	return rewrite.NewEngine(provider, cfg.Model, cfg.SchemaColumns(), cfg.RewriteTimeout()), nil
}

// buildAdvisor wires the full pipeline from config. The embedder and index
// dimensionalities are checked here so a mismatched corpus fails at startup
// instead of returning garbage distances.
func buildAdvisor(cfg *config.Config) (*advisor.Advisor, func(), error) {
	provider := newEmbeddingProvider(cfg)

	index, cleanup, err := openIndex(cfg, provider)
	if err != nil {
		return nil, nil, err
	}

	if dims, err := provider.Dimensions(); err == nil && dims != index.Dimensions() {
		cleanup()
		return nil, nil, fmt.Errorf("embedder produces %d-dimensional vectors but the index stores %d", dims, index.Dimensions())
	}

	engine, err := newRewriteEngine(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	a := advisor.New(
		retrieval.NewService(provider, index),
		rules.NewAnalyzer(),
		engine,
		advisor.Options{
			RetrievalLimit:    cfg.Retrieval.Limit,
			DistanceThreshold: cfg.Retrieval.DistanceThreshold,
			RetrievalTimeout:  cfg.RetrievalTimeout(),
			CacheTTL:          cfg.CacheTTL(),
		},
	)
	return a, cleanup, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
