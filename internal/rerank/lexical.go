package rerank

import (
	"context"
	"fmt"
	"sort"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

// LexicalReranker combines the vector similarity score with a lexical match
// score computed over the candidate set. Candidates are indexed into a
// throwaway in-memory Bleve index per call, so term statistics reflect the
// candidate pool rather than the whole corpus.
type LexicalReranker struct {
	logger *zap.Logger
}

// NewLexicalReranker creates a reranker.
func NewLexicalReranker(logger *zap.Logger) *LexicalReranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LexicalReranker{logger: logger}
}

// Rerank scores each candidate as an even blend of its similarity score and
// its normalized lexical match score, then returns the top topK by the
// combined score. When the query matches no candidate lexically, the original
// similarity order is kept.
func (r *LexicalReranker) Rerank(ctx context.Context, query string, candidates []models.RetrievedChunk, topK int) ([]models.RetrievedChunk, error) {
	if len(candidates) == 0 || topK <= 0 {
		return nil, nil
	}
	if topK > len(candidates) {
		topK = len(candidates)
	}

	lexical, err := r.lexicalScores(query, candidates)
	if err != nil {
		return nil, fmt.Errorf("lexical scoring: %w", err)
	}
	if len(lexical) == 0 {
		r.logger.Debug("no lexical matches, keeping similarity order", zap.String("query", query))
		return append([]models.RetrievedChunk(nil), candidates[:topK]...), nil
	}

	maxScore := 0.0
	for _, s := range lexical {
		if s > maxScore {
			maxScore = s
		}
	}

	reranked := make([]models.RetrievedChunk, len(candidates))
	copy(reranked, candidates)
	for i := range reranked {
		combined := 0.5 * reranked[i].Score
		if s, ok := lexical[reranked[i].Chunk.ID]; ok && maxScore > 0 {
			combined += 0.5 * (s / maxScore)
		}
		reranked[i].Score = combined
	}
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})
	return reranked[:topK], nil
}

// lexicalScores indexes the candidates into an in-memory Bleve index and
// returns the match score per chunk ID. An empty map means no lexical hits.
func (r *LexicalReranker) lexicalScores(query string, candidates []models.RetrievedChunk) (map[string]float64, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create in-memory index: %w", err)
	}
	defer index.Close()

	batch := index.NewBatch()
	for _, c := range candidates {
		if err := batch.Index(c.Chunk.ID, map[string]string{"content": c.Chunk.Content}); err != nil {
			return nil, err
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("index candidates: %w", err)
	}

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = len(candidates)
	res, err := index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}

	scores := make(map[string]float64, len(res.Hits))
	for _, hit := range res.Hits {
		scores[hit.ID] = hit.Score
	}
	return scores, nil
}

// Close releases resources. The reranker holds no long-lived state.
func (r *LexicalReranker) Close() error {
	return nil
}
