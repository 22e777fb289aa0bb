package config

// DefaultSchema covers the demo shop tables the rewrite engine knows the
// column layout for. Real deployments override this in .sqladvisor.yml.
var DefaultSchema = map[string]string{
	"orders":         "id, customer_id, order_date, total_amount, status",
	"shop_orders":    "id, customer_id, order_date, total_amount, status",
	"customers":      "id, name, email, country, segment",
	"shop_customers": "id, name, email, country, segment",
	"products":       "id, name, category, price, stock",
	"shop_products":  "id, name, category, price, stock",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:            ProviderNone,
		Model:               "gpt-4o-mini",
		EmbeddingProvider:   ProviderOllama,
		EmbeddingModel:      "all-minilm",
		EmbeddingDimensions: 384,
		IndexBackend:        IndexSQLite,
		IndexPath:           ".sqladvisor/index.db",
		Retrieval: RetrievalConfig{
			Limit:             3,
			DistanceThreshold: 0.7,
			TimeoutSeconds:    10,
		},
		Rewrite: RewriteConfig{
			TimeoutSeconds:    15,
			RequestsPerMinute: 30,
		},
		CacheTTLSeconds: 600,
		Schema:          DefaultSchema,
	}
}
