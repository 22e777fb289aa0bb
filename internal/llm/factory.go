package llm

import (
	"fmt"
	"os"
)

const defaultCopilotEndpoint = "https://api.skysql.com/copilot/v1/chat/"

// NewProvider creates a new LLM provider based on the given provider type and model.
// Supported provider types: "openai", "ollama", "copilot".
func NewProvider(providerType string, model string) (Provider, error) {
	switch providerType {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model), nil

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil

	case "copilot":
		apiKey := os.Getenv("COPILOT_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("COPILOT_API_KEY environment variable is not set")
		}
		endpoint := os.Getenv("COPILOT_ENDPOINT")
		if endpoint == "" {
			endpoint = defaultCopilotEndpoint
		}
		return NewCopilotProvider(endpoint, apiKey, os.Getenv("COPILOT_AGENT_ID")), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
