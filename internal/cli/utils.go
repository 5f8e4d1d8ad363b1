// Package cli provides CLI output utilities for Kotae.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/kotae/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON, "":
		if s == "" {
			return OutputText, nil
		}
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// WriteAnswer writes an answer to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteAnswer(w io.Writer, resp *models.AskResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	default:
		writeAnswerText(w, resp)
		return nil
	}
}

func writeAnswerText(w io.Writer, resp *models.AskResponse) {
	fmt.Fprintf(w, "\n%s\n", resp.Answer)
	if len(resp.Sources) > 0 {
		fmt.Fprintf(w, "\nSources (%d, %dms, model %s):\n", len(resp.Sources), resp.QueryTime, resp.Model)
		for i, src := range resp.Sources {
			fmt.Fprintf(w, "  %d. %s (score %.4f)\n", i+1, src.Chunk.Source, src.Score)
		}
	}
}

// WriteRetrieved writes retrieved chunks to w in the given format.
func WriteRetrieved(w io.Writer, resp *models.RetrieveResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	default:
		writeRetrievedText(w, resp)
		return nil
	}
}

func writeRetrievedText(w io.Writer, resp *models.RetrieveResponse) {
	fmt.Fprintf(w, "\nRetrieved %d chunks in %dms\n\n", len(resp.Chunks), resp.QueryTime)
	for i, rc := range resp.Chunks {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f | Source: %s\n", i+1, rc.Score, rc.Chunk.Source)
		fmt.Fprintf(w, "\n%s\n", Truncate(rc.Chunk.Content, 200))
		fmt.Fprintln(w)
	}
}

// WriteStats writes index stats to w in the given format.
func WriteStats(w io.Writer, stats *models.IndexStats, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	default:
		fmt.Fprintf(w, "Documents: %d\nChunks:    %d\nVectors:   %d\n",
			stats.Documents, stats.Chunks, stats.Vectors)
		return nil
	}
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
