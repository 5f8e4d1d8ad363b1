package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnvOverrides overrides cfg fields from environment variables. The
// variable names match the ones the tool has always used, so a .env file is
// enough to run without a config file. Called before ApplyDefaults so that
// env values win over defaults but a config file value loses to an env value.
func ApplyEnvOverrides(cfg *Config) {
	setString(&cfg.DataDir, "DATA_DIR")
	setString(&cfg.Index.Dir, "INDEX_DIR")
	setString(&cfg.Index.Backend, "INDEX_BACKEND")
	setInt(&cfg.Chunking.Size, "CHUNK_SIZE")
	setInt(&cfg.Chunking.Overlap, "CHUNK_OVERLAP")
	setString(&cfg.Embedding.Provider, "EMBEDDING_PROVIDER")
	setString(&cfg.Embedding.Model, "EMBEDDING_MODEL_NAME")
	setString(&cfg.Embedding.BaseURL, "EMBEDDING_BASE_URL")
	setInt(&cfg.Embedding.Dimensions, "EMBEDDING_DIMENSIONS")
	setInt(&cfg.Retrieval.TopK, "DEFAULT_TOP_K")
	setInt(&cfg.Retrieval.Multiplier, "RETRIEVAL_MULTIPLIER")
	setBoolPtr(&cfg.Retrieval.Rerank, "USE_RERANKING")
	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.OllamaModel, "LLM_MODEL")
	setString(&cfg.LLM.OllamaBaseURL, "OLLAMA_BASE_URL")
	setString(&cfg.LLM.OpenAIModel, "OPENAI_MODEL")
	setString(&cfg.LLM.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&cfg.LLM.SystemPrompt, "SYSTEM_PROMPT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBoolPtr(dst **bool, key string) {
	if v := os.Getenv(key); v != "" {
		b := strings.EqualFold(v, "true") || v == "1"
		*dst = &b
	}
}
