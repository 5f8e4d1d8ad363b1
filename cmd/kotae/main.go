// Package main is the Kotae CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/chat"
	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/rerank"
	"github.com/hyperjump/kotae/internal/retriever"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Environment overrides may live in a local .env file; a missing file is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "index":
		runIndex()
	case "chat":
		runChat()
	case "ask":
		runAsk()
	case "serve":
		runServe()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func setup(fs *flag.FlagSet, args []string) (*config.Config, *zap.Logger) {
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args)

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolvedPath), zap.Bool("debug", debugMode))
	return cfg, logger
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	dataDir := fs.String("data", "", "directory of documents to index (default from config)")
	cfg, logger := setup(fs, os.Args[2:])
	defer logger.Sync()

	dir := cfg.DataDir
	if *dataDir != "" {
		dir = *dataDir
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx := signalContext()
	stats, err := components.Indexer.IndexDirectory(ctx, dir)
	if err != nil {
		logger.Fatal("Indexing failed", zap.Error(err))
	}
	fmt.Printf("Indexed %d documents (%d chunks, %d skipped) in %s\n",
		stats.Documents, stats.Chunks, stats.Skipped, stats.Duration.Round(time.Millisecond))
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	topK := fs.Int("top-k", 0, "number of context chunks (default from config)")
	noRerank := fs.Bool("no-rerank", false, "disable re-ranking")
	cfg, logger := setup(fs, os.Args[2:])
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	session, err := newSession(cfg, components, logger, *topK, *noRerank)
	if err != nil {
		logger.Fatal("Failed to initialize chat session", zap.Error(err))
	}

	ctx := signalContext()
	if err := session.Loop(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Fatal("Chat loop failed", zap.Error(err))
	}
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	topK := fs.Int("top-k", 0, "number of context chunks (default from config)")
	noRerank := fs.Bool("no-rerank", false, "disable re-ranking")
	retrieveOnly := fs.Bool("retrieve-only", false, "print retrieved chunks without asking the LLM")
	output := fs.String("output", "text", "output format: text or json")
	cfg, logger := setup(fs, os.Args[2:])
	defer logger.Sync()

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fmt.Println("Usage: kotae ask [flags] <question>")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	session, err := newSession(cfg, components, logger, *topK, *noRerank)
	if err != nil {
		logger.Fatal("Failed to initialize session", zap.Error(err))
	}

	ctx := signalContext()
	if *retrieveOnly {
		start := time.Now()
		chunks, err := session.Retrieve(ctx, question)
		if err != nil {
			logger.Fatal("Retrieval failed", zap.Error(err))
		}
		resp := &models.RetrieveResponse{Chunks: chunks, QueryTime: time.Since(start).Milliseconds()}
		if err := cli.WriteRetrieved(os.Stdout, resp, format); err != nil {
			logger.Fatal("Failed to write output", zap.Error(err))
		}
		return
	}

	resp, err := session.Answer(ctx, question)
	if err != nil {
		logger.Fatal("Failed to answer", zap.Error(err))
	}
	if err := cli.WriteAnswer(os.Stdout, resp, format); err != nil {
		logger.Fatal("Failed to write output", zap.Error(err))
	}
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg, logger := setup(fs, os.Args[2:])
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	session, err := newSession(cfg, components, logger, 0, false)
	if err != nil {
		logger.Fatal("Failed to initialize session", zap.Error(err))
	}

	srv := server.NewServer(session, components.Storage, components.Index, cfg.Server, logger)

	ctx := signalContext()
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	dataDir := fs.String("data", "", "directory to watch (default from config)")
	cfg, logger := setup(fs, os.Args[2:])
	defer logger.Sync()

	dir := cfg.DataDir
	if *dataDir != "" {
		dir = *dataDir
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx := signalContext()

	// Bring the index up to date before watching for changes.
	if _, err := components.Indexer.IndexDirectory(ctx, dir); err != nil && !errors.Is(err, indexer.ErrNoDocuments) {
		logger.Warn("initial indexing failed", zap.Error(err))
	}

	onIndex := func(path string) {
		if _, err := components.Indexer.IndexFile(ctx, path); err != nil {
			logger.Warn("failed to index changed file", zap.String("path", path), zap.Error(err))
			return
		}
		if err := components.Index.Save(); err != nil {
			logger.Warn("failed to save index", zap.Error(err))
		}
	}
	onRemove := func(path string) {
		if err := components.Indexer.RemoveFile(ctx, path); err != nil {
			logger.Warn("failed to remove deleted file", zap.String("path", path), zap.Error(err))
			return
		}
		if err := components.Index.Save(); err != nil {
			logger.Warn("failed to save index", zap.Error(err))
		}
	}

	w := watcher.NewWatcher(dir, extract.SupportedExtensions(), onIndex, onRemove, logger)
	if err := w.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer w.Stop()

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", dir)
	<-ctx.Done()
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	output := fs.String("output", "text", "output format: text or json")
	cfg, logger := setup(fs, os.Args[2:])
	defer logger.Sync()

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx := signalContext()
	docs, err := components.Storage.CountDocuments(ctx)
	if err != nil {
		logger.Fatal("Failed to count documents", zap.Error(err))
	}
	chunks, err := components.Storage.CountChunks(ctx)
	if err != nil {
		logger.Fatal("Failed to count chunks", zap.Error(err))
	}
	stats := &models.IndexStats{Documents: docs, Chunks: chunks, Vectors: components.Index.Size()}
	if err := cli.WriteStats(os.Stdout, stats, format); err != nil {
		logger.Fatal("Failed to write output", zap.Error(err))
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx
}

// Components holds the shared pipeline pieces behind every command.
type Components struct {
	Storage  storage.Storage
	Embedder embedding.Embedder
	Index    vector.Index
	Indexer  *indexer.Indexer
}

func (c *Components) Close() {
	if c.Index != nil {
		_ = c.Index.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(filepath.Join(cfg.Index.Dir, "kotae.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	apiEmbedder, err := embedding.NewAPIEmbedder(cfg.Embedding)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	embedder := embedding.NewCachedEmbedder(apiEmbedder, cfg.Embedding.CacheSize)

	index, err := vector.NewIndex(cfg.Index.Backend, cfg.Embedding.Dimensions, cfg.Index.Dir)
	if err != nil {
		_ = embedder.Close()
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}

	idx := indexer.NewIndexer(store, embedder, index, cfg.Chunking, extract.NewExtractor(), logger)

	return &Components{
		Storage:  store,
		Embedder: embedder,
		Index:    index,
		Indexer:  idx,
	}, nil
}

// newSession wires a chat session on top of the shared components. topK and
// noRerank override the configured retrieval settings when set.
func newSession(cfg *config.Config, c *Components, logger *zap.Logger, topK int, noRerank bool) (*chat.Session, error) {
	client, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm: %w", err)
	}

	var reranker rerank.Reranker
	if cfg.Retrieval.RerankEnabled() && !noRerank {
		reranker = rerank.NewLexicalReranker(logger)
	}

	if topK <= 0 {
		topK = cfg.Retrieval.TopK
	}
	ret := retriever.NewRetriever(c.Embedder, c.Index, c.Storage, cfg.Retrieval.Multiplier, logger)
	return chat.NewSession(ret, reranker, client, topK, cfg.LLM.SystemPrompt, logger), nil
}

func printUsage() {
	fmt.Println(`kotae - Chat with your documents

Usage:
  kotae index [flags]           Index documents from the data directory
  kotae chat [flags]            Interactive question answering
  kotae ask [flags] <question>  Answer a single question
  kotae serve [flags]           Start the HTTP API server
  kotae watch [flags]           Keep the index in sync with the data directory
  kotae status [flags]          Show index statistics
  kotae version                 Show version
  kotae help                    Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging

Index/Watch Flags:
  --data string      Document directory (default from config)

Chat/Ask Flags:
  --top-k int        Number of context chunks (default from config)
  --no-rerank        Disable re-ranking

Ask Flags:
  --retrieve-only    Print retrieved chunks without asking the LLM
  --output string    Output format: text or json (default: text)

Status Flags:
  --output string    Output format: text or json (default: text)

Examples:
  kotae index --data ./docs
  kotae chat
  kotae ask "what does the contract say about termination?"
  kotae ask --retrieve-only --output json "termination"
  kotae serve
  kotae watch
  kotae status --output json`)
}
