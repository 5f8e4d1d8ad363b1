package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/docid"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
)

// ErrNoDocuments is returned by IndexDirectory when the directory contains no
// indexable documents.
var ErrNoDocuments = errors.New("no indexable documents found")

// Indexer splits documents into chunks, embeds them, and writes the results to
// storage and the vector index.
type Indexer struct {
	storage   storage.Storage
	embedder  embedding.Embedder
	index     vector.Index
	splitter  *Splitter
	extractor *extract.Extractor
	logger    *zap.Logger
}

// NewIndexer creates an indexer with the given dependencies.
func NewIndexer(
	store storage.Storage,
	embedder embedding.Embedder,
	index vector.Index,
	cfg config.ChunkingConfig,
	extractor *extract.Extractor,
	logger *zap.Logger,
) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		storage:   store,
		embedder:  embedder,
		index:     index,
		splitter:  NewSplitter(cfg.Size, cfg.Overlap),
		extractor: extractor,
		logger:    logger,
	}
}

// IndexDirectory walks dir recursively and indexes every supported file.
// Files that cannot be read or extracted are skipped with a warning; the rest
// of the directory is still indexed. Returns ErrNoDocuments when no file could
// be indexed. The index is saved once all files are processed.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string) (*models.IndexStats, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	start := time.Now()
	stats := &models.IndexStats{}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			idx.logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() || !extract.Supported(path) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		chunks, ferr := idx.IndexFile(ctx, path)
		if ferr != nil {
			idx.logger.Warn("skipping file", zap.String("path", path), zap.Error(ferr))
			stats.Skipped++
			return nil
		}
		stats.Documents++
		stats.Chunks += int64(chunks)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if stats.Documents == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, dir)
	}

	if err := idx.index.Save(); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}

	stats.Vectors = idx.index.Size()
	stats.Duration = time.Since(start)
	idx.logger.Info("indexing complete",
		zap.Int64("documents", stats.Documents),
		zap.Int64("chunks", stats.Chunks),
		zap.Int("skipped", stats.Skipped),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// IndexFile extracts, splits, embeds, and indexes a single file. The document
// ID is derived from the absolute path, and any previously indexed chunks for
// the same document are removed first, so re-indexing replaces rather than
// duplicates. Returns the number of chunks indexed.
func (idx *Indexer) IndexFile(ctx context.Context, path string) (int, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	text, err := idx.extractor.Extract(absPath)
	if err != nil {
		return 0, fmt.Errorf("extract content: %w", err)
	}

	docID := docid.ForPath(absPath)
	if err := idx.RemoveDocument(ctx, docID); err != nil {
		return 0, fmt.Errorf("remove stale chunks: %w", err)
	}

	pieces := idx.splitter.Split(text)
	if len(pieces) == 0 {
		return 0, fmt.Errorf("no text content in %s", absPath)
	}

	chunks := make([]*models.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &models.Chunk{
			ID:         fmt.Sprintf("%s_%s", docID, uuid.New().String()[:8]),
			DocumentID: docID,
			Source:     filepath.Base(absPath),
			Content:    piece,
			ChunkIndex: i,
		}
	}

	embeddings, err := idx.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return 0, fmt.Errorf("generate embeddings: %w", err)
	}

	if err := idx.storage.BatchCreateChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	ids := make([]string, len(chunks))
	for i, ch := range chunks {
		ids[i] = ch.ID
	}
	if err := idx.index.Add(ctx, ids, embeddings, pieces); err != nil {
		return 0, fmt.Errorf("index vectors: %w", err)
	}

	idx.logger.Debug("file indexed",
		zap.String("path", absPath),
		zap.String("doc_id", docID),
		zap.Int("chunks", len(chunks)),
	)
	return len(chunks), nil
}

// RemoveDocument deletes all chunks and vectors belonging to the document.
// Removing a document that was never indexed is a no-op.
func (idx *Indexer) RemoveDocument(ctx context.Context, docID string) error {
	ids, err := idx.storage.ChunkIDsByDocumentID(ctx, docID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := idx.index.Remove(ctx, ids); err != nil {
		return err
	}
	return idx.storage.DeleteChunksByDocumentID(ctx, docID)
}

// RemoveFile deletes the indexed document derived from path.
func (idx *Indexer) RemoveFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	return idx.RemoveDocument(ctx, docid.ForPath(absPath))
}
