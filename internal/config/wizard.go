package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// defaultModelFor returns the suggested rewrite model for a provider.
func defaultModelFor(p ProviderType) string {
	switch p {
	case ProviderOllama:
		return "llama3.1"
	case ProviderCopilot:
		return "sql-rewrite"
	default:
		return "gpt-4o-mini"
	}
}

// embeddingDefaults returns the suggested embedding provider, model, and
// dimensionality to pair with a rewrite provider. Ollama setups stay fully
// local; everything else defaults to OpenAI embeddings.
func embeddingDefaults(p ProviderType) (ProviderType, string, int) {
	if p == ProviderOpenAI {
		return ProviderOpenAI, "text-embedding-3-small", 1536
	}
	return ProviderOllama, "all-minilm", 384
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to sqladvisor! Let's configure the advisory pipeline.")
	fmt.Println()

	// 1. Rewrite provider. "none" keeps the heuristic tier only.
	providerPrompt := promptui.Select{
		Label: "Select rewrite model provider",
		Items: []string{"none", "openai", "ollama", "copilot"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	cfg := DefaultConfig()
	cfg.Provider = provider

	// 2. Rewrite model.
	if provider != ProviderNone {
		modelPrompt := promptui.Prompt{
			Label:   "Rewrite model",
			Default: defaultModelFor(provider),
		}
		model, err := modelPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("model selection: %w", err)
		}
		cfg.Model = model
	}

	// 3. Embedding provider, model, and dimensionality. The dimensionality
	// must match what the model actually emits; a mismatch fails at startup.
	embProvider, embModel, embDims := embeddingDefaults(provider)

	embItems := []string{string(ProviderOllama), string(ProviderOpenAI)}
	if embProvider == ProviderOpenAI {
		embItems = []string{string(ProviderOpenAI), string(ProviderOllama)}
	}
	embPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: embItems,
	}
	_, embStr, err := embPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding provider selection: %w", err)
	}
	cfg.EmbeddingProvider = ProviderType(embStr)
	if cfg.EmbeddingProvider != embProvider {
		_, embModel, embDims = embeddingDefaults(providerForEmbedding(cfg.EmbeddingProvider))
	}

	embModelPrompt := promptui.Prompt{
		Label:   "Embedding model",
		Default: embModel,
	}
	if cfg.EmbeddingModel, err = embModelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("embedding model: %w", err)
	}

	dimsPrompt := promptui.Prompt{
		Label:   "Embedding dimensions",
		Default: strconv.Itoa(embDims),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return fmt.Errorf("must be a positive integer")
			}
			return nil
		},
	}
	dimsStr, err := dimsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding dimensions: %w", err)
	}
	cfg.EmbeddingDimensions, _ = strconv.Atoi(dimsStr)

	// 4. Index backend.
	backendPrompt := promptui.Select{
		Label: "Select vector index backend",
		Items: []string{"sqlite (persistent)", "memory (ephemeral)"},
	}
	backendIdx, _, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("index backend selection: %w", err)
	}
	if backendIdx == 1 {
		cfg.IndexBackend = IndexMemory
		cfg.IndexPath = ""
	} else {
		pathPrompt := promptui.Prompt{
			Label:   "Index path",
			Default: cfg.IndexPath,
		}
		if cfg.IndexPath, err = pathPrompt.Run(); err != nil {
			return nil, fmt.Errorf("index path: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Check for API keys.
	for _, p := range []ProviderType{cfg.Provider, cfg.EmbeddingProvider} {
		if envVar := APIKeyEnvVar(p); envVar != "" && os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running sqladvisor advise.\n", envVar)
		}
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// providerForEmbedding maps an embedding provider back to the rewrite
// provider whose defaults pair with it.
func providerForEmbedding(p ProviderType) ProviderType {
	if p == ProviderOpenAI {
		return ProviderOpenAI
	}
	return ProviderOllama
}
