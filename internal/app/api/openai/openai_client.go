package openai

import (
	"github.com/sashabaranov/go-openai"
)

// NewClient creates a client authenticated with token. A non-empty baseURL
// replaces the public API endpoint.
func NewClient(token, baseURL string) *openai.Client {
	config := openai.DefaultConfig(token)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}
