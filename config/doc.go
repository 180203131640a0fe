// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment.
//
// Viper reads the YAML file first, then every environment variable is bound
// under each nested key it could name, so SERVER_PORT overrides server.port
// and LLM_GEMINI_API_KEY overrides llm.gemini.api_key.
//
// # Usage
//
//	var cfg app.Config
//	err := config.LoadConfig("snapstudy", &cfg)
package config
