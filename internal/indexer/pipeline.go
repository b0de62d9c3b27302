package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"rocon-docs-ai/internal/contextutil"
	"rocon-docs-ai/internal/corpus"
	"rocon-docs-ai/internal/llm"
	"rocon-docs-ai/internal/rag"
	"rocon-docs-ai/internal/vectorstore"
)

// embedBatchSize is how many chunk texts are sent per embeddings call.
const embedBatchSize = 64

// CorpusLoader loads the chunk corpus from its configured backend.
type CorpusLoader func(ctx context.Context) (*corpus.Store, error)

// Pipeline builds the vector index from the chunk corpus and publishes
// corpus and index together as one snapshot. A build runs fully off to
// the side; live requests keep the previous snapshot until Swap.
type Pipeline struct {
	loader     CorpusLoader
	embedder   llm.Embedder
	holder     *rag.Holder
	indexPath  string
	qdrant     *vectorstore.QdrantIndex
	vectorSize int
	logger     *slog.Logger
}

// Options configure a pipeline beyond its required collaborators.
type Options struct {
	// IndexPath is where the in-memory index is persisted after a
	// build. Empty disables persistence.
	IndexPath string
	// Qdrant, when set, receives the vectors instead of an in-memory
	// index.
	Qdrant *vectorstore.QdrantIndex
	// VectorSize is the expected embedding dimensionality.
	VectorSize int
}

// New creates an index build pipeline.
func New(loader CorpusLoader, embedder llm.Embedder, holder *rag.Holder, opts Options) *Pipeline {
	return &Pipeline{
		loader:     loader,
		embedder:   embedder,
		holder:     holder,
		indexPath:  opts.IndexPath,
		qdrant:     opts.Qdrant,
		vectorSize: opts.VectorSize,
		logger:     slog.Default(),
	}
}

// Run loads the corpus, embeds every chunk, builds the index and
// publishes the new snapshot. Embedding failures abort the build and
// leave the previous snapshot in place.
func (p *Pipeline) Run(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	store, err := p.loader(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	if store.Len() == 0 {
		return fmt.Errorf("corpus is empty")
	}
	logger.InfoContext(ctx, "corpus loaded", "chunks", store.Len())

	vectors, err := p.embedAll(ctx, store)
	if err != nil {
		return err
	}

	var index vectorstore.Index
	if p.qdrant != nil {
		index, err = p.buildQdrant(ctx, store, vectors)
	} else {
		index, err = p.buildMemory(ctx, vectors)
	}
	if err != nil {
		return err
	}

	p.holder.Swap(&rag.Snapshot{Corpus: store, Index: index})

	stats := store.Stats()
	logger.InfoContext(ctx, "index built",
		"chunks", stats.TotalChunks,
		"pages", stats.UniquePages,
		"categories", len(stats.ByCategory),
		"vectors", index.Size(),
	)
	return nil
}

// embedAll embeds every chunk in batches and unit-normalizes the
// resulting vectors.
func (p *Pipeline) embedAll(ctx context.Context, store *corpus.Store) ([][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	chunks := store.All()
	vectors := make([][]float32, 0, len(chunks))

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		batch, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embed chunks %d-%d: got %d vectors for %d texts", start, end-1, len(batch), len(texts))
		}
		for _, v := range batch {
			vectorstore.NormalizeL2(v)
			vectors = append(vectors, v)
		}

		logger.DebugContext(ctx, "embedded batch", "done", end, "total", len(chunks))
	}

	return vectors, nil
}

// buildMemory assembles the in-memory index and persists it when a
// path is configured. Persistence failure is logged but does not fail
// the build.
func (p *Pipeline) buildMemory(ctx context.Context, vectors [][]float32) (vectorstore.Index, error) {
	logger := contextutil.LoggerFromContext(ctx)

	dim := p.vectorSize
	if dim == 0 && len(vectors) > 0 {
		dim = len(vectors[0])
	}

	index := vectorstore.NewMemory(dim)
	if err := index.Add(vectors...); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	if p.indexPath != "" {
		if err := index.Save(p.indexPath); err != nil {
			logger.WarnContext(ctx, "index persistence failed", "path", p.indexPath, "error", err)
		} else {
			logger.InfoContext(ctx, "index persisted", "path", p.indexPath)
		}
	}
	return index, nil
}

// buildQdrant recreates the collection from scratch and upserts every
// vector with its corpus position as the point ID. The drop-and-create
// matters: points surviving from a previous, larger build would carry
// positions past the new corpus.
func (p *Pipeline) buildQdrant(ctx context.Context, store *corpus.Store, vectors [][]float32) (vectorstore.Index, error) {
	dim := p.vectorSize
	if dim == 0 && len(vectors) > 0 {
		dim = len(vectors[0])
	}

	if err := p.qdrant.RecreateCollection(ctx, dim); err != nil {
		return nil, fmt.Errorf("recreate collection: %w", err)
	}

	chunks := store.All()
	for start := 0; start < len(vectors); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(vectors) {
			end = len(vectors)
		}

		meta := make([]map[string]any, 0, end-start)
		for _, c := range chunks[start:end] {
			meta = append(meta, map[string]any{
				"chunk_id": c.ChunkID,
				"url":      c.URL,
				"category": c.Category,
			})
		}

		if err := p.qdrant.Upsert(ctx, start, vectors[start:end], meta); err != nil {
			return nil, fmt.Errorf("upsert vectors %d-%d: %w", start, end-1, err)
		}
	}

	p.qdrant.SetSize(len(vectors))
	return p.qdrant, nil
}

// LoadArtifacts restores a previously persisted snapshot from disk
// without any embedding calls. The vector count must match the corpus
// or the pairing of positions to chunks would be wrong.
func (p *Pipeline) LoadArtifacts(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	store, err := p.loader(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	var index vectorstore.Index
	if p.qdrant != nil {
		if err := p.qdrant.EnsureCollection(ctx, p.vectorSize); err != nil {
			return fmt.Errorf("validate collection: %w", err)
		}
		if err := p.qdrant.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh collection: %w", err)
		}
		index = p.qdrant
	} else {
		mem, err := vectorstore.LoadMemory(p.indexPath)
		if err != nil {
			return fmt.Errorf("load index: %w", err)
		}
		index = mem
	}

	if index.Size() != store.Len() {
		return fmt.Errorf("index has %d vectors but corpus has %d chunks", index.Size(), store.Len())
	}

	p.holder.Swap(&rag.Snapshot{Corpus: store, Index: index})
	logger.InfoContext(ctx, "artifacts loaded", "chunks", store.Len(), "vectors", index.Size())
	return nil
}
