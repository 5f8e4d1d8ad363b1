package vector

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMemoryIndexAddSearch(t *testing.T) {
	m, err := NewMemoryIndex(3, "")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	err = m.Add(ctx,
		[]string{"a", "b", "c"},
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0.9, 0.1, 0}},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	results, err := m.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].ID != "a" {
		t.Errorf("top result = %s, want a", results[0].ID)
	}
	if results[1].ID != "c" {
		t.Errorf("second result = %s, want c", results[1].ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results should be ordered by descending score")
	}
}

func TestMemoryIndexDimensionMismatch(t *testing.T) {
	m, _ := NewMemoryIndex(3, "")
	ctx := context.Background()
	if err := m.Add(ctx, []string{"a"}, [][]float32{{1, 0}}, nil); err == nil {
		t.Error("expected dimension mismatch on Add")
	}
	if _, err := m.Search(ctx, []float32{1, 0}, 1); err == nil {
		t.Error("expected dimension mismatch on Search")
	}
}

func TestMemoryIndexRemove(t *testing.T) {
	m, _ := NewMemoryIndex(2, "")
	ctx := context.Background()
	_ = m.Add(ctx, []string{"a", "b"}, [][]float32{{1, 0}, {0, 1}}, nil)
	if err := m.Remove(ctx, []string{"a"}); err != nil {
		t.Fatal(err)
	}
	if m.Size() != 1 {
		t.Errorf("size = %d after remove", m.Size())
	}
	results, _ := m.Search(ctx, []float32{1, 0}, 5)
	for _, r := range results {
		if r.ID == "a" {
			t.Error("removed vector still returned")
		}
	}
}

func TestMemoryIndexSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")
	ctx := context.Background()

	m, err := NewMemoryIndex(2, path)
	if err != nil {
		t.Fatal(err)
	}
	_ = m.Add(ctx, []string{"x", "y"}, [][]float32{{0.6, 0.8}, {1, 0}}, nil)
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := NewMemoryIndex(2, path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Size() != 2 {
		t.Fatalf("loaded size = %d", loaded.Size())
	}
	results, err := loaded.Search(ctx, []float32{0.6, 0.8}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].ID != "x" {
		t.Errorf("top result = %s, want x", results[0].ID)
	}

	// Dimension mismatch on load is an error.
	if _, err := NewMemoryIndex(3, path); err == nil {
		t.Error("expected dimension mismatch error on load")
	}
}

func TestMemoryIndexEmptySearch(t *testing.T) {
	m, _ := NewMemoryIndex(2, "")
	results, err := m.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if results != nil {
		t.Errorf("empty index should return nil, got %v", results)
	}
}
