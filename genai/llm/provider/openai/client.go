package openai

import (
	"net/http"
	"time"

	basecfg "github.com/viant/carecore/genai/llm/provider/base"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client is a minimal client for the OpenAI-compatible chat-completions REST
// API. It is deliberately thin: it speaks plain JSON over net/http rather
// than wrapping an SDK, so it can equally address self-hosted gateways that
// mirror the OpenAI wire format.
type Client struct {
	basecfg.Config
	APIKey      string
	MaxTokens   int
	Temperature *float64
}

// NewClient creates a new OpenAI chat-completions client.
func NewClient(apiKey string, model string, options ...ClientOption) *Client {
	client := &Client{
		APIKey: apiKey,
		Config: basecfg.Config{
			BaseURL: defaultBaseURL,
			Model:   model,
			HTTPClient: &http.Client{
				Timeout: 120 * time.Second,
			},
		},
	}
	for _, option := range options {
		option(client)
	}
	return client
}
