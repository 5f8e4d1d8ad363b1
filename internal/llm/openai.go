package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperjump/kotae/internal/config"
)

// Chat models accepted for the openai provider. An unlisted model falls back
// to the default rather than failing at request time.
var supportedOpenAIModels = map[string]bool{
	"gpt-3.5-turbo":       true,
	"gpt-4":               true,
	"gpt-4-turbo-preview": true,
	"gpt-4-32k":           true,
}

const defaultOpenAIModel = "gpt-3.5-turbo"

// OpenAIClient generates answers via the OpenAI chat completion API.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIClient creates a client from config. The API key is read from the
// environment variable named by cfg.APIKeyEnv and is required.
func NewOpenAIClient(cfg config.LLMConfig) (*OpenAIClient, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%s environment variable not set", cfg.APIKeyEnv)
	}

	model := cfg.OpenAIModel
	if !supportedOpenAIModels[model] {
		model = defaultOpenAIModel
	}

	clientCfg := openai.DefaultConfig(key)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	}, nil
}

// Generate sends the prompt as a user message under the system instruction
// and returns the assistant's reply.
func (c *OpenAIClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	return generate(ctx, c.client, c.model, system, prompt, c.timeout)
}

// Model returns the chat model in use.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Close releases resources. The HTTP client needs no explicit teardown.
func (c *OpenAIClient) Close() error {
	return nil
}

func generate(ctx context.Context, client *openai.Client, model, system, prompt string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
