package factory

import (
	"fmt"

	"docgen-be/pkg/llm"
	"docgen-be/pkg/llm/huggingface"
	"docgen-be/pkg/llm/ollama"
	"docgen-be/pkg/llm/stub"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(apiKey, "", modelName), nil
	case "stub":
		return stub.NewStubProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
