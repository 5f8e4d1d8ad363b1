// Package llm provides answer generation backends behind a common interface.
package llm

import (
	"context"
	"fmt"

	"github.com/hyperjump/kotae/internal/config"
)

// Client generates a completion for a prompt under a system instruction.
type Client interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	// Model returns the model name in use, for logging and status output.
	Model() string
	Close() error
}

// New creates a client for the configured provider.
func New(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "ollama", "":
		return NewOllamaClient(cfg)
	case "openai":
		return NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q (want ollama or openai)", cfg.Provider)
	}
}
