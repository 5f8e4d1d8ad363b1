package vector

import (
	"context"
	"testing"
)

func TestNewIndexMemoryDefault(t *testing.T) {
	idx, err := NewIndex("", 4, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	if _, ok := idx.(*MemoryIndex); !ok {
		t.Errorf("default backend should be memory, got %T", idx)
	}
}

func TestNewIndexUnknown(t *testing.T) {
	if _, err := NewIndex("faiss", 4, t.TempDir()); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestChromemIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	idx, err := NewIndex("chromem", 3, dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	err = idx.Add(ctx,
		[]string{"a", "b"},
		[][]float32{{1, 0, 0}, {0, 1, 0}},
		[]string{"alpha text", "beta text"},
	)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 2 {
		t.Fatalf("size = %d", idx.Size())
	}

	// k larger than the collection is capped, not an error.
	results, err := idx.Search(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].ID != "a" {
		t.Errorf("results = %v", results)
	}

	if err := idx.Remove(ctx, []string{"a"}); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 1 {
		t.Errorf("size after remove = %d", idx.Size())
	}

	// Reopen from disk; chromem persists on write.
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}
	reopened, err := NewIndex("chromem", 3, dir)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Size() != 1 {
		t.Errorf("reopened size = %d", reopened.Size())
	}
}
