package llm

import (
	"testing"

	"github.com/hyperjump/kotae/internal/config"
)

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(config.LLMConfig{Provider: "claude"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewDefaultsToOllama(t *testing.T) {
	c, err := New(config.LLMConfig{
		OllamaModel:   "mistral",
		OllamaBaseURL: "http://localhost:11434/v1",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()
	if _, ok := c.(*OllamaClient); !ok {
		t.Errorf("expected OllamaClient, got %T", c)
	}
	if c.Model() != "mistral" {
		t.Errorf("expected mistral, got %s", c.Model())
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "")
	_, err := New(config.LLMConfig{
		Provider:    "openai",
		OpenAIModel: "gpt-4",
		APIKeyEnv:   "TEST_OPENAI_KEY",
	})
	if err == nil {
		t.Fatal("expected error when API key env is unset")
	}
}

func TestOpenAIModelValidation(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")

	tests := []struct {
		model string
		want  string
	}{
		{"gpt-4", "gpt-4"},
		{"gpt-3.5-turbo", "gpt-3.5-turbo"},
		{"gpt-4-32k", "gpt-4-32k"},
		{"gpt-5-imaginary", "gpt-3.5-turbo"},
		{"", "gpt-3.5-turbo"},
	}
	for _, tt := range tests {
		c, err := NewOpenAIClient(config.LLMConfig{
			Provider:    "openai",
			OpenAIModel: tt.model,
			APIKeyEnv:   "TEST_OPENAI_KEY",
		})
		if err != nil {
			t.Fatalf("NewOpenAIClient(%q): %v", tt.model, err)
		}
		if c.Model() != tt.want {
			t.Errorf("model %q: got %s, want %s", tt.model, c.Model(), tt.want)
		}
		_ = c.Close()
	}
}
