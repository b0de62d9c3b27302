package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"rocon-docs-ai/internal/config"
	"rocon-docs-ai/internal/corpus"
	"rocon-docs-ai/internal/http"
	"rocon-docs-ai/internal/indexer"
	"rocon-docs-ai/internal/llm"
	"rocon-docs-ai/internal/query"
	"rocon-docs-ai/internal/rag"
	"rocon-docs-ai/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx := context.Background()

	// Set up the corpus loader for the configured backend
	loader, cleanup, err := buildLoader(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up corpus backend: %v", err)
	}
	defer cleanup()

	// LLM clients
	completer := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.SynthesisModel, cfg.LLMTimeout)
	embedder := llm.NewEmbeddingsClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.VectorSize, cfg.LLMTimeout)

	// Vector index backend
	pipelineOpts := indexer.Options{
		IndexPath:  cfg.IndexPath,
		VectorSize: cfg.VectorSize,
	}
	if cfg.IndexBackend == "qdrant" {
		qdrantIndex, err := vectorstore.NewQdrantIndex(cfg.QdrantURL, cfg.QdrantCollection)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		pipelineOpts.Qdrant = qdrantIndex
		slog.Info("Using Qdrant vector index", "url", cfg.QdrantURL, "collection", cfg.QdrantCollection)
	}

	holder := rag.NewHolder()
	pipeline := indexer.New(loader, embedder, holder, pipelineOpts)

	// Prefer restoring persisted artifacts; fall back to a background
	// build so the API comes up either way.
	if cfg.IndexBackend == "memory" && cfg.IndexBlobURL != "" {
		if err := vectorstore.FetchArtifact(ctx, cfg.IndexBlobURL, cfg.IndexPath, cfg.FetchTimeout); err != nil {
			slog.Warn("Index artifact fetch failed", "url", cfg.IndexBlobURL, "error", err)
		}
	}
	if err := pipeline.LoadArtifacts(ctx); err != nil {
		slog.Warn("No usable artifacts, building index from scratch", "error", err)
		go func() {
			buildCtx := context.Background()
			if err := pipeline.Run(buildCtx); err != nil {
				slog.Error("Index build failed", "error", err)
			} else {
				slog.Info("Index build completed successfully")
			}
		}()
	} else {
		slog.Info("Artifacts loaded from disk")
	}

	// RAG engine
	weights := rag.DefaultWeights()
	for _, o := range []struct {
		value float64
		dest  *float64
	}{
		{cfg.RerankVectorWeight, &weights.Vector},
		{cfg.RerankKeywordWeight, &weights.Keyword},
		{cfg.RerankHeadingBoost, &weights.Heading},
		{cfg.RerankTitleBoost, &weights.Title},
		{cfg.RerankLevelBoost, &weights.Level},
	} {
		if o.value >= 0 {
			*o.dest = o.value
		}
	}

	processor := query.NewProcessor(completer, cfg.ExpansionModel)
	engine := rag.NewEngine(embedder, completer, processor, holder, weights)
	slog.Info("RAG engine initialized",
		"synthesis_model", cfg.SynthesisModel,
		"expansion_model", cfg.ExpansionModel,
		"embedding_model", cfg.EmbeddingModel,
	)

	// Router
	router := http.NewRouter(&http.Deps{
		Engine:   engine,
		Holder:   holder,
		Pipeline: pipeline,
	})

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// buildLoader returns the corpus loader for the configured backend and
// a cleanup function for any resources it holds open.
func buildLoader(ctx context.Context, cfg *config.Config) (indexer.CorpusLoader, func(), error) {
	switch cfg.CorpusBackend {
	case "sqlite":
		db, err := corpus.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := corpus.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		slog.Info("SQLite corpus backend ready", "path", cfg.DBPath)
		loader := func(ctx context.Context) (*corpus.Store, error) {
			return corpus.LoadSQLite(ctx, db)
		}
		return loader, func() { _ = db.Close() }, nil

	default: // jsonl
		if cfg.ChunksBlobURL != "" {
			if err := vectorstore.FetchArtifact(ctx, cfg.ChunksBlobURL, cfg.ChunksPath, cfg.FetchTimeout); err != nil {
				slog.Warn("Chunks artifact fetch failed", "url", cfg.ChunksBlobURL, "error", err)
			}
		}
		loader := func(context.Context) (*corpus.Store, error) {
			return corpus.LoadJSONL(cfg.ChunksPath)
		}
		return loader, func() {}, nil
	}
}
