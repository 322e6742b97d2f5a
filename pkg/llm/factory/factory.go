package factory

import (
	"fmt"

	"ai-canvas-be/pkg/llm"
	"ai-canvas-be/pkg/llm/gemini"
	"ai-canvas-be/pkg/llm/ollama"
)

// NewProvider selects an LLM backend by configured provider type.
func NewProvider(providerType, modelName, baseURL, geminiKey string) (llm.Provider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewProvider(baseURL, modelName), nil
	case "gemini":
		if geminiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewProvider(geminiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
