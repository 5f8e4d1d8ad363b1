// Package docid provides a deterministic document ID from a source file path.
package docid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "doc:"

// ForPath returns a stable document ID for the given path. The same path
// always yields the same ID, so re-indexing a file replaces its chunks
// instead of duplicating them.
func ForPath(path string) string {
	normalized := filepath.Clean(path)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:])
}
