// Package embedding provides text embedding via OpenAI-compatible APIs and caching.
package embedding

import "context"

// Embedder produces vector embeddings for text. The same embedder (model)
// must be used for indexing and for queries; mixing models invalidates the
// index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
