package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func sampleAskResponse() *models.AskResponse {
	return &models.AskResponse{
		Question: "what is kotae?",
		Answer:   "Kotae answers questions from your documents.",
		Sources: []models.RetrievedChunk{
			{
				Chunk: models.Chunk{ID: "c1", Source: "readme.txt", Content: "kotae is a RAG chatbot"},
				Score: 0.91,
			},
		},
		Model:     "mistral",
		QueryTime: 42,
	}
}

func TestWriteAnswerJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, sampleAskResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteAnswer(json): %v", err)
	}
	var decoded models.AskResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Answer != "Kotae answers questions from your documents." || decoded.QueryTime != 42 {
		t.Errorf("decoded mismatch: %+v", decoded)
	}
	if len(decoded.Sources) != 1 || decoded.Sources[0].Chunk.ID != "c1" {
		t.Errorf("decoded sources mismatch: %+v", decoded.Sources)
	}
}

func TestWriteAnswerText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, sampleAskResponse(), OutputText); err != nil {
		t.Fatalf("WriteAnswer(text): %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Kotae answers questions") {
		t.Errorf("missing answer: %q", out)
	}
	if !strings.Contains(out, "readme.txt") {
		t.Errorf("missing source: %q", out)
	}
}

func TestWriteRetrievedText(t *testing.T) {
	resp := &models.RetrieveResponse{
		Chunks: []models.RetrievedChunk{
			{Chunk: models.Chunk{ID: "c1", Source: "a.txt", Content: strings.Repeat("x", 300)}, Score: 0.8},
			{Chunk: models.Chunk{ID: "c2", Source: "b.txt", Content: "short"}, Score: 0.6},
		},
		QueryTime: 7,
	}
	var buf bytes.Buffer
	if err := WriteRetrieved(&buf, resp, OutputText); err != nil {
		t.Fatalf("WriteRetrieved: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Retrieved 2 chunks in 7ms") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "...") {
		t.Error("long content not truncated")
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"", OutputText, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello world", 5, "hello..."},
		{"hello", 0, "hello"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.s, tt.maxLen); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}
