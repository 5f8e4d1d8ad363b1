// Package indexer provides document splitting and indexing into storage and the vector index.
package indexer

import (
	"strings"
)

var defaultSeparators = []string{"\n\n", "\n", " "}

// Splitter splits text into overlapping character-based chunks, preferring to
// break at paragraph, then line, then word boundaries.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// NewSplitter creates a splitter with the given size and overlap (in characters).
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

// Split returns the text cut into chunks of at most chunkSize characters with
// chunkOverlap characters carried over between consecutive chunks. Whitespace-only
// pieces are dropped.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= s.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.breakAt(runes, start, end)
		}
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}
		if end >= len(runes) {
			break
		}
		next := end - s.chunkOverlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// breakAt finds the best cut point at or before limit, trying each separator in
// order of preference. Falls back to a hard cut at limit when no separator is
// found in the window.
func (s *Splitter) breakAt(runes []rune, start, limit int) int {
	window := string(runes[start:limit])
	for _, sep := range s.separators {
		if i := strings.LastIndex(window, sep); i > 0 {
			return start + len([]rune(window[:i])) + len([]rune(sep))
		}
	}
	return limit
}
