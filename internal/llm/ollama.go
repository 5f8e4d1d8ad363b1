package llm

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperjump/kotae/internal/config"
)

// OllamaClient generates answers from a local Ollama server through its
// OpenAI-compatible endpoint.
type OllamaClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOllamaClient creates a client for the Ollama server at cfg.OllamaBaseURL.
// No API key is needed; a placeholder satisfies the client library.
func NewOllamaClient(cfg config.LLMConfig) (*OllamaClient, error) {
	clientCfg := openai.DefaultConfig("unused")
	clientCfg.BaseURL = cfg.OllamaBaseURL

	return &OllamaClient{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.OllamaModel,
		timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	}, nil
}

// Generate sends the prompt as a user message under the system instruction
// and returns the model's reply.
func (c *OllamaClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	return generate(ctx, c.client, c.model, system, prompt, c.timeout)
}

// Model returns the Ollama model in use.
func (c *OllamaClient) Model() string {
	return c.model
}

// Close releases resources.
func (c *OllamaClient) Close() error {
	return nil
}
