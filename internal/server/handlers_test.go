package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/chat"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/retriever"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
)

type staticLLM struct{ answer string }

func (l *staticLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	return l.answer, nil
}
func (l *staticLLM) Model() string { return "static" }
func (l *staticLLM) Close() error  { return nil }

func newTestServer(t *testing.T, texts map[string]string) *Server {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "kotae.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	index, err := vector.NewMemoryIndex(8, filepath.Join(dir, "vectors.bin"))
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}

	embedder := embedding.NewMockEmbedder(8)
	ctx := context.Background()
	var ids, contents []string
	var chunks []*models.Chunk
	i := 0
	for id, text := range texts {
		ids = append(ids, id)
		contents = append(contents, text)
		chunks = append(chunks, &models.Chunk{
			ID: id, DocumentID: "doc:test", Source: "test.txt", Content: text, ChunkIndex: i,
		})
		i++
	}
	if len(chunks) > 0 {
		if err := store.BatchCreateChunks(ctx, chunks); err != nil {
			t.Fatalf("BatchCreateChunks: %v", err)
		}
		vecs, err := embedder.EmbedBatch(ctx, contents)
		if err != nil {
			t.Fatalf("EmbedBatch: %v", err)
		}
		if err := index.Add(ctx, ids, vecs, contents); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	ret := retriever.NewRetriever(embedder, index, store, 3, nil)
	session := chat.NewSession(ret, nil, &staticLLM{answer: "served answer"}, 2, "system", nil)
	return NewServer(session, store, index, config.ServerConfig{Host: "127.0.0.1", Port: 0}, nil)
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleAsk(t *testing.T) {
	srv := newTestServer(t, map[string]string{"c1": "paris is the capital of france"})
	rec := postJSON(t, srv.Routes(), "/api/v1/ask", models.AskRequest{Question: "capital of france?"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp models.AskResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer != "served answer" {
		t.Errorf("unexpected answer %q", resp.Answer)
	}
	if len(resp.Sources) == 0 {
		t.Error("expected sources")
	}
}

func TestHandleAskMissingQuestion(t *testing.T) {
	srv := newTestServer(t, map[string]string{"c1": "content"})
	rec := postJSON(t, srv.Routes(), "/api/v1/ask", models.AskRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleAskEmptyIndex(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := postJSON(t, srv.Routes(), "/api/v1/ask", models.AskRequest{Question: "anything"})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestHandleRetrieve(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"c1": "alpha content", "c2": "beta content", "c3": "gamma content",
	})
	rec := postJSON(t, srv.Routes(), "/api/v1/retrieve", models.RetrieveRequest{Query: "alpha", TopK: 2})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp models.RetrieveResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Chunks) != 2 {
		t.Errorf("expected 2 chunks, got %d", len(resp.Chunks))
	}
}

func TestHandleRetrieveBadBody(t *testing.T) {
	srv := newTestServer(t, map[string]string{"c1": "content"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/retrieve", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t, map[string]string{"c1": "alpha", "c2": "beta"})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats models.IndexStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Chunks != 2 || stats.Vectors != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
