// Package chat implements the question answering pipeline and the interactive
// chat loop.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/rerank"
	"github.com/hyperjump/kotae/internal/retriever"
)

// noContextMessage is the context given to the model when retrieval returns
// nothing; the model is still asked so it can say it does not know.
const noContextMessage = "No context found."

// Session answers questions by retrieving context and asking the LLM.
type Session struct {
	retriever    *retriever.Retriever
	reranker     rerank.Reranker // nil disables re-ranking
	llm          llm.Client
	topK         int
	systemPrompt string
	logger       *zap.Logger
}

// NewSession creates a session. reranker may be nil to disable re-ranking, in
// which case the top topK retrieval results are used directly.
func NewSession(
	ret *retriever.Retriever,
	reranker rerank.Reranker,
	client llm.Client,
	topK int,
	systemPrompt string,
	logger *zap.Logger,
) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		retriever:    ret,
		reranker:     reranker,
		llm:          client,
		topK:         topK,
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

// WithTopK returns a copy of the session answering with a different topK.
// Non-positive values keep the configured one.
func (s *Session) WithTopK(topK int) *Session {
	if topK <= 0 {
		return s
	}
	copied := *s
	copied.topK = topK
	return &copied
}

// Retrieve returns the topK most relevant chunks for the question, re-ranked
// when a reranker is configured.
func (s *Session) Retrieve(ctx context.Context, question string) ([]models.RetrievedChunk, error) {
	candidates, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		return nil, err
	}
	if s.reranker != nil {
		return s.reranker.Rerank(ctx, question, candidates, s.topK)
	}
	if len(candidates) > s.topK {
		candidates = candidates[:s.topK]
	}
	return candidates, nil
}

// Answer retrieves context for the question and asks the LLM. When no context
// is found the model is still asked, with a placeholder context.
func (s *Session) Answer(ctx context.Context, question string) (*models.AskResponse, error) {
	start := time.Now()

	chunks, err := s.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	contextText := noContextMessage
	if len(chunks) > 0 {
		parts := make([]string, len(chunks))
		for i, c := range chunks {
			parts[i] = c.Chunk.Content
		}
		contextText = strings.Join(parts, "\n\n")
	}

	prompt := contextText + "\n\nQuestion: " + question
	s.logger.Debug("asking llm",
		zap.String("model", s.llm.Model()),
		zap.Int("context_chunks", len(chunks)),
		zap.Int("prompt_chars", len(prompt)),
	)

	answer, err := s.llm.Generate(ctx, s.systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &models.AskResponse{
		Question:  question,
		Answer:    answer,
		Sources:   chunks,
		Model:     s.llm.Model(),
		QueryTime: time.Since(start).Milliseconds(),
	}, nil
}
