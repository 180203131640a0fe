package llm

import (
	"github.com/kbukum/snapstudy/provider"
)

// Provider is a chat completion backend.
type Provider = provider.RequestResponse[CompletionRequest, CompletionResponse]

// Factory builds a Provider from a Config.
type Factory = provider.Factory[Provider, Config]

// Registry maps backend names ("gemini", "openai", "ollama") to factories.
type Registry = provider.Registry[Provider, Config]

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return provider.NewRegistry[Provider, Config]()
}
