// Package app wires the snapstudy service from its configuration: the
// media toolchain, the workspace manager, one capability slot per kind and
// the pipeline coordinator.
//
// Candidates are listed in priority order and nothing is resolved at
// construction. Transcription is resolved by the first health check; the
// other kinds bind on first use.
//
//	svc, err := app.New(cfg, log)
//	srv := svc.NewServer()
//
// API keys missing from the config file are read from GEMINI_API_KEY and
// OPENAI_API_KEY. The Ollama backend is tried only when llm.ollama.base_url
// or OLLAMA_URL is set.
package app
