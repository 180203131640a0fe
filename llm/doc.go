// Package llm defines the chat completion types shared by the Gemini,
// OpenAI and Ollama backends.
//
// Each backend lives in its own sub-package and implements Provider, a
// provider.RequestResponse over CompletionRequest and CompletionResponse.
// Backends are built by name through a Registry:
//
//	reg := llm.NewRegistry()
//	reg.RegisterFactory(gemini.ProviderName, gemini.Factory())
//	reg.RegisterFactory(ollama.ProviderName, ollama.Factory())
//
//	p, err := reg.Create("ollama", llm.Config{Model: "llama3"})
//	text, err := llm.Complete(ctx, p, "You are a tutor.", "Explain photosynthesis.")
package llm
