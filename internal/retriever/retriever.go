// Package retriever performs similarity search over the vector index and
// resolves hits back into stored chunks.
package retriever

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
)

// ErrIndexNotFound is returned when the vector index is empty, i.e. nothing
// has been indexed yet.
var ErrIndexNotFound = errors.New("index is empty; run index first")

// Retriever embeds queries and finds the most similar chunks.
type Retriever struct {
	embedder   embedding.Embedder
	index      vector.Index
	storage    storage.Storage
	multiplier int
	logger     *zap.Logger
}

// NewRetriever creates a retriever. multiplier widens the candidate pool for
// re-ranking: Retrieve fetches topK*multiplier candidates.
func NewRetriever(
	embedder embedding.Embedder,
	index vector.Index,
	store storage.Storage,
	multiplier int,
	logger *zap.Logger,
) *Retriever {
	if multiplier < 1 {
		multiplier = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		embedder:   embedder,
		index:      index,
		storage:    store,
		multiplier: multiplier,
		logger:     logger,
	}
}

// Retrieve returns up to topK*multiplier chunks most similar to the query,
// ordered by descending similarity. Hits whose chunk is missing from storage
// are skipped with a warning.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if r.index.Size() == 0 {
		return nil, ErrIndexNotFound
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	k := topK * r.multiplier
	results, err := r.index.Search(ctx, queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	retrieved := make([]models.RetrievedChunk, 0, len(results))
	for _, res := range results {
		chunk, err := r.storage.GetChunk(ctx, res.ID)
		if err != nil {
			r.logger.Warn("chunk missing from storage", zap.String("id", res.ID), zap.Error(err))
			continue
		}
		retrieved = append(retrieved, models.RetrievedChunk{Chunk: *chunk, Score: res.Score})
	}
	r.logger.Debug("retrieved chunks",
		zap.String("query", query),
		zap.Int("requested", k),
		zap.Int("returned", len(retrieved)),
	)
	return retrieved, nil
}
