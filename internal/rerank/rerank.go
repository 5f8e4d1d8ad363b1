// Package rerank re-scores retrieved chunks against the query to sharpen the
// final ranking before answer generation.
package rerank

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// Reranker reorders candidates by relevance to the query and returns at most
// topK of them.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []models.RetrievedChunk, topK int) ([]models.RetrievedChunk, error)
	Close() error
}
