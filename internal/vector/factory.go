package vector

import (
	"fmt"
	"path/filepath"
)

// Backend identifies a vector index implementation.
type Backend string

const (
	// BackendMemory is a brute-force in-memory index persisted to a binary file.
	BackendMemory Backend = "memory"
	// BackendChromem is a chromem-go persistent collection.
	BackendChromem Backend = "chromem"
)

// memoryIndexFile is the file name for the memory backend inside the index dir.
const memoryIndexFile = "vectors.bin"

// NewIndex creates a vector index of the given backend, persisted under
// indexDir. Supported backends: "memory" (default) and "chromem".
func NewIndex(backend string, dimensions int, indexDir string) (Index, error) {
	switch Backend(backend) {
	case BackendMemory, "":
		return NewMemoryIndex(dimensions, filepath.Join(indexDir, memoryIndexFile))
	case BackendChromem:
		return NewChromemIndex(dimensions, filepath.Join(indexDir, "chromem"))
	default:
		return nil, fmt.Errorf("unknown vector backend: %s (supported: memory, chromem)", backend)
	}
}
