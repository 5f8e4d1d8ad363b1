package vector

import (
	"context"
	"errors"
	"fmt"
	"os"

	chromem "github.com/philippgille/chromem-go"
)

const chromemCollection = "kotae_chunks"

// ChromemIndex stores vectors in a chromem-go persistent collection.
// chromem persists on every write, so Save is a no-op.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	dimensions int
}

// errExternalEmbeddings is returned by the collection's embedding func;
// all embeddings are computed by the embedder and supplied explicitly.
var errExternalEmbeddings = errors.New("embeddings must be supplied explicitly")

func rejectEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, errExternalEmbeddings
}

// NewChromemIndex opens or creates a persistent chromem collection under dir.
func NewChromemIndex(dimensions int, dir string) (*ChromemIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open chromem db: %w", err)
	}
	col, err := db.GetOrCreateCollection(chromemCollection, nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("open chromem collection: %w", err)
	}
	return &ChromemIndex{db: db, collection: col, dimensions: dimensions}, nil
}

// Add stores vectors with their chunk IDs and texts.
func (c *ChromemIndex) Add(ctx context.Context, ids []string, vectors [][]float32, contents []string) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	docs := make([]chromem.Document, len(ids))
	for i, id := range ids {
		if len(vectors[i]) != c.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), c.dimensions)
		}
		content := ""
		if contents != nil {
			content = contents[i]
		}
		docs[i] = chromem.Document{
			ID:        id,
			Content:   content,
			Embedding: vectors[i],
		}
	}
	if err := c.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

// Search returns the k most similar vectors. chromem rejects k larger than
// the collection, so k is capped at the current size.
func (c *ChromemIndex) Search(ctx context.Context, query []float32, k int) ([]*Result, error) {
	if len(query) != c.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), c.dimensions)
	}
	size := c.collection.Count()
	if k <= 0 || size == 0 {
		return nil, nil
	}
	if k > size {
		k = size
	}
	results, err := c.collection.QueryEmbedding(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	out := make([]*Result, len(results))
	for i, r := range results {
		out[i] = &Result{ID: r.ID, Score: float64(r.Similarity)}
	}
	return out, nil
}

// Remove deletes vectors by chunk ID.
func (c *ChromemIndex) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

// Save is a no-op; chromem persists on every write.
func (c *ChromemIndex) Save() error {
	return nil
}

// Size returns the number of stored vectors.
func (c *ChromemIndex) Size() int {
	return c.collection.Count()
}

// Close is a no-op; chromem needs no explicit shutdown.
func (c *ChromemIndex) Close() error {
	return nil
}
