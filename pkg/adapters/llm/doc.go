// Package llm resolves model identifiers in "provider/model" form to eino
// chat models. OpenAI-compatible vendors (Gemini, OpenRouter, OpenAI,
// DeepSeek) share one client; Anthropic and Ollama use their own.
// API keys are read from the environment variable named by each provider.
package llm
