package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type eventRecorder struct {
	mu      sync.Mutex
	indexed []string
	removed []string
}

func (r *eventRecorder) onIndex(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = append(r.indexed, path)
}

func (r *eventRecorder) onRemove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, path)
}

func (r *eventRecorder) waitIndexed(t *testing.T, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		for _, p := range r.indexed {
			if p == want {
				r.mu.Unlock()
				return
			}
		}
		r.mu.Unlock()
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("file %s was not indexed within %v", want, timeout)
}

func (r *eventRecorder) waitRemoved(t *testing.T, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		for _, p := range r.removed {
			if p == want {
				r.mu.Unlock()
				return
			}
		}
		r.mu.Unlock()
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("file %s was not removed within %v", want, timeout)
}

func startWatcher(t *testing.T, root string, exts []string) (*Watcher, *eventRecorder) {
	t.Helper()
	rec := &eventRecorder{}
	w := NewWatcher(root, exts, rec.onIndex, rec.onRemove, nil)
	w.debounce = 50 * time.Millisecond
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(w.Stop)
	return w, rec
}

func TestWatcherIndexesNewFile(t *testing.T) {
	root := t.TempDir()
	_, rec := startWatcher(t, root, []string{".txt"})

	path := filepath.Join(root, "new.txt")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rec.waitIndexed(t, path, 3*time.Second)
}

func TestWatcherIgnoresUnmatchedExtension(t *testing.T) {
	root := t.TempDir()
	_, rec := startWatcher(t, root, []string{".txt"})

	if err := os.WriteFile(filepath.Join(root, "skip.bin"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(300 * time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.indexed) != 0 {
		t.Errorf("unexpected index events: %v", rec.indexed)
	}
}

func TestWatcherDebouncesRepeatedWrites(t *testing.T) {
	root := t.TempDir()
	_, rec := startWatcher(t, root, []string{".txt"})

	path := filepath.Join(root, "busy.txt")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	rec.waitIndexed(t, path, 3*time.Second)
	time.Sleep(200 * time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	count := 0
	for _, p := range rec.indexed {
		if p == path {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 1 debounced index event, got %d", count)
	}
}

func TestWatcherRemove(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "gone.txt")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, rec := startWatcher(t, root, []string{".txt"})
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	rec.waitRemoved(t, path, 3*time.Second)
}

func TestWatcherNewSubdirectory(t *testing.T) {
	root := t.TempDir()
	_, rec := startWatcher(t, root, []string{".txt"})

	sub := filepath.Join(root, "nested")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Give the watcher a moment to pick up the new directory.
	time.Sleep(200 * time.Millisecond)

	path := filepath.Join(sub, "inner.txt")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rec.waitIndexed(t, path, 3*time.Second)
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w, _ := startWatcher(t, t.TempDir(), nil)
	w.Stop()
	w.Stop()
}
