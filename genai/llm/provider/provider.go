package provider

const (
	// ProviderOpenAI identifies the OpenAI-compatible chat-completions API
	ProviderOpenAI = "openai"

	// ProviderOllama identifies a local Ollama API
	ProviderOllama = "ollama"

	// ProviderBedrockClaude identifies AWS Bedrock's Claude models
	ProviderBedrockClaude = "bedrock/claude"
)
