// Package config provides configuration loading and structs for Kotae.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. It is loaded once at
// startup and treated as immutable for the process lifetime.
type Config struct {
	Debug     bool            `yaml:"debug"`
	DataDir   string          `yaml:"data_dir"`
	Server    ServerConfig    `yaml:"server"`
	Index     IndexConfig     `yaml:"index"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	LLM       LLMConfig       `yaml:"llm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// IndexConfig holds the on-disk index location and vector backend selection.
type IndexConfig struct {
	Dir string `yaml:"dir"`
	// Backend selects the vector index implementation: "memory" or "chromem".
	Backend string `yaml:"backend"`
}

// ChunkingConfig controls how document text is split before embedding.
// Size and Overlap are measured in characters.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// EmbeddingConfig holds embedding API settings. Provider is "openai" or
// "ollama"; both speak the OpenAI embeddings API, differing in base URL and
// whether an API key is required.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"`
	CacheSize  int    `yaml:"cache_size"`
}

// RetrievalConfig holds retrieval and re-ranking settings. The similarity
// search fetches TopK*Multiplier candidates; re-ranking (when enabled)
// reorders them and truncates to TopK.
type RetrievalConfig struct {
	TopK       int   `yaml:"top_k"`
	Multiplier int   `yaml:"multiplier"`
	Rerank     *bool `yaml:"rerank"`
}

// RerankEnabled returns whether re-ranking is on; defaults to true when unset.
func (r *RetrievalConfig) RerankEnabled() bool {
	if r.Rerank != nil {
		return *r.Rerank
	}
	return true
}

// LLMConfig holds generation backend settings. Provider is "ollama" or "openai".
type LLMConfig struct {
	Provider      string `yaml:"provider"`
	OllamaModel   string `yaml:"ollama_model"`
	OllamaBaseURL string `yaml:"ollama_base_url"`
	OpenAIModel   string `yaml:"openai_model"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	APIKeyEnv     string `yaml:"api_key_env"`
	SystemPrompt  string `yaml:"system_prompt"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
}

// Load reads and parses the config file at path, applies environment
// overrides and defaults, and expands paths. A missing file is not an error:
// defaults plus environment variables are used, so the tool works without a
// config file at all.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
		// fall through to defaults + env
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	ApplyEnvOverrides(&cfg)
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.DataDir = expandPath(cfg.DataDir, configDir)
	cfg.Index.Dir = expandPath(cfg.Index.Dir, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the current
// working directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
