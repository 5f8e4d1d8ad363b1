package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/pkg/utils"
)

// APIEmbedder embeds text through an OpenAI-compatible embeddings endpoint.
// Both OpenAI and a local Ollama server are driven through this client; only
// the base URL, model, and key requirement differ.
type APIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	batchSize  int
}

// NewAPIEmbedder creates an embedder from config. For the "openai" provider
// an API key is required in the environment variable named by APIKeyEnv; the
// "ollama" provider needs none.
func NewAPIEmbedder(cfg config.EmbeddingConfig) (*APIEmbedder, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if cfg.Provider == "openai" && key == "" {
		return nil, fmt.Errorf("%s is required when using the openai embedding provider", cfg.APIKeyEnv)
	}
	if key == "" {
		// go-openai requires a non-empty token; Ollama ignores it.
		key = "unused"
	}
	clientCfg := openai.DefaultConfig(key)
	clientCfg.BaseURL = cfg.BaseURL
	return &APIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
	}, nil
}

// Embed returns a unit-length embedding for text.
func (e *APIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}
	vecs, err := e.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in request batches of the configured size,
// preserving order.
func (e *APIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	batch := e.batchSize
	if batch <= 0 {
		batch = 64
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batch {
		end := start + batch
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.request(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch starting at %d: %w", start, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *APIEmbedder) request(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vecs := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		copy(vec, d.Embedding)
		// Unit length so inner product equals cosine similarity.
		utils.NormalizeL2(vec)
		if d.Index < 0 || d.Index >= len(vecs) {
			return nil, fmt.Errorf("embeddings response index %d out of range", d.Index)
		}
		vecs[d.Index] = vec
	}
	return vecs, nil
}

// Dimensions returns the configured embedding dimension.
func (e *APIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for APIEmbedder.
func (e *APIEmbedder) Close() error {
	return nil
}
