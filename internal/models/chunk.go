// Package models defines core data structures for chunks, retrieval results, and API types.
package models

import "time"

// Chunk is a contiguous span of text extracted from a source document.
// Chunks are the unit of embedding and retrieval.
type Chunk struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Source     string    `json:"source" db:"source"`
	Content    string    `json:"content" db:"content"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// RetrievedChunk is a chunk returned by a similarity search, with its score.
// Score is cosine similarity for raw retrieval; after re-ranking it is the
// combined relevance score.
type RetrievedChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// IndexStats summarizes an indexing run or the current index contents.
type IndexStats struct {
	Documents int64         `json:"documents"`
	Chunks    int64         `json:"chunks"`
	Vectors   int           `json:"vectors"`
	Skipped   int           `json:"skipped,omitempty"`
	Duration  time.Duration `json:"-"`
}
