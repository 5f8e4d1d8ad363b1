// Package vector provides vector index implementations and a factory for creating them.
package vector

import "context"

// Index defines vector storage and nearest-neighbor search over chunk
// embeddings. IDs are chunk IDs; vectors are expected to be unit length so
// inner product equals cosine similarity.
type Index interface {
	// Add appends vectors with the given chunk IDs. Contents carries the
	// chunk texts for backends that persist them alongside the vectors;
	// it may be nil for backends that do not.
	Add(ctx context.Context, ids []string, vectors [][]float32, contents []string) error
	// Search returns the k nearest vectors by similarity, best first.
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	// Remove deletes vectors by chunk ID.
	Remove(ctx context.Context, ids []string) error
	// Save persists the index; a no-op for backends that persist on write.
	Save() error
	// Size returns the number of stored vectors.
	Size() int
	Close() error
}

// Result is a single vector search hit.
type Result struct {
	ID    string
	Score float64 // cosine similarity, 1 is identical
}
