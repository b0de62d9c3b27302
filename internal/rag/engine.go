package rag

import (
	"context"
	"fmt"
	"log/slog"

	"rocon-docs-ai/internal/contextutil"
	"rocon-docs-ai/internal/llm"
	"rocon-docs-ai/internal/query"
	"rocon-docs-ai/internal/vectorstore"
)

const (
	// answerQueryK is the per-variant retrieval depth used by Answer.
	answerQueryK = 4
	// defaultSearchK and maxSearchK bound the direct search operation.
	defaultSearchK = 5
	maxSearchK     = 20
	// overFetchFactor widens the initial candidate fetch when
	// reranking, so the reranker has near-misses to promote.
	overFetchFactor = 3
)

// Engine is the retrieval-and-ranking pipeline behind the documentation
// assistant.
type Engine interface {
	// Answer retrieves relevant chunks for a question and synthesizes a
	// cited answer.
	Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error)

	// Search runs retrieval and reranking for a single query without
	// synthesis.
	Search(ctx context.Context, q string, k int) ([]SearchResult, error)
}

type engine struct {
	embedder  llm.Embedder
	completer llm.Completer
	processor *query.Processor
	holder    *Holder
	weights   Weights
	logger    *slog.Logger
}

// NewEngine creates the pipeline engine. The holder supplies the
// corpus/index snapshot; requests fail with NotReady until one is
// published.
func NewEngine(embedder llm.Embedder, completer llm.Completer, processor *query.Processor, holder *Holder, weights Weights) Engine {
	return &engine{
		embedder:  embedder,
		completer: completer,
		processor: processor,
		holder:    holder,
		weights:   weights,
		logger:    slog.Default(),
	}
}

// Answer runs the full pipeline: expansion, per-query retrieval with
// reranking and context expansion, fusion, then synthesis.
func (e *engine) Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	snap := e.holder.Current()
	if snap == nil {
		return AnswerResponse{}, &NotReadyError{Artifact: "chunk corpus and vector index"}
	}

	var queries []string
	if req.UseExpansion {
		queries = e.processor.Expand(ctx, req.Question)
	} else {
		queries = []string{e.processor.Normalize(req.Question)}
	}
	logger.InfoContext(ctx, "answering question",
		"question", req.Question,
		"queries", len(queries),
		"category", req.Category,
	)

	// Each query variant is best-effort: a failed variant only drops
	// its own candidates.
	perQuery := make([][]SearchResult, 0, len(queries))
	for _, q := range queries {
		results, err := e.searchWithContext(ctx, snap, q, answerQueryK, req.Category)
		if err != nil {
			logger.WarnContext(ctx, "query variant failed", "query", q, "error", err)
			continue
		}
		perQuery = append(perQuery, results)
	}

	chunks := Fuse(perQuery, fusedLimit)
	logger.InfoContext(ctx, "retrieval completed", "chunks", len(chunks))

	return e.synthesize(ctx, req, chunks), nil
}

// Search runs retrieval and reranking for one query and returns the top
// k results.
func (e *engine) Search(ctx context.Context, q string, k int) ([]SearchResult, error) {
	snap := e.holder.Current()
	if snap == nil {
		return nil, &NotReadyError{Artifact: "chunk corpus and vector index"}
	}

	if k <= 0 {
		k = defaultSearchK
	}
	if k > maxSearchK {
		k = maxSearchK
	}

	results, err := e.retrieve(ctx, snap, q, k, true, "")
	if err != nil {
		return nil, err
	}
	results = Rerank(q, results, e.weights)
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// searchWithContext retrieves, reranks and context-expands the results
// for one query variant.
func (e *engine) searchWithContext(ctx context.Context, snap *Snapshot, q string, k int, category string) ([]SearchResult, error) {
	results, err := e.retrieve(ctx, snap, q, k, true, category)
	if err != nil {
		return nil, err
	}
	results = Rerank(q, results, e.weights)
	if len(results) > k {
		results = results[:k]
	}
	return ExpandContext(snap.Corpus, results), nil
}

// retrieve embeds the query and fetches candidates from the vector
// index. The query vector is unit-normalized so inner-product search
// equals cosine similarity. The category filter runs after retrieval
// and can reduce the effective result count below k.
func (e *engine) retrieve(ctx context.Context, snap *Snapshot, q string, k int, rerankEnabled bool, category string) ([]SearchResult, error) {
	embeddings, err := e.embedder.EmbedTexts(ctx, []string{q})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}
	queryVector := embeddings[0]
	vectorstore.NormalizeL2(queryVector)

	initialK := k
	if rerankEnabled {
		initialK = k * overFetchFactor
	}
	if size := snap.Index.Size(); initialK > size {
		initialK = size
	}
	if initialK == 0 {
		return nil, nil
	}

	hits, err := snap.Index.Search(ctx, queryVector, initialK)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= snap.Corpus.Len() {
			// No-match sentinel, or a stale point left over from an
			// index built against a larger corpus.
			continue
		}
		chunk := snap.Corpus.At(hit.Position)
		if category != "" && chunk.Category != category {
			continue
		}
		results = append(results, SearchResult{
			Chunk:       chunk,
			VectorScore: float64(hit.Score),
		})
	}
	return results, nil
}

// synthesize builds the context block and invokes the model. Empty
// retrieval and synthesis failure are both terminal success paths: the
// caller always gets an answer and whatever sources were computed.
func (e *engine) synthesize(ctx context.Context, req AnswerRequest, chunks []SearchResult) AnswerResponse {
	logger := contextutil.LoggerFromContext(ctx)

	if len(chunks) == 0 {
		return AnswerResponse{
			Answer:  notFoundAnswer,
			Sources: []Source{},
			Metadata: Metadata{
				ChunksRetrieved: 0,
				Confidence:      ConfidenceLow,
			},
		}
	}

	topScore := chunks[0].FinalScore()
	confidence := classifyConfidence(topScore)
	sources := formatSources(chunks)
	contextBlock := buildContext(chunks)

	logger.InfoContext(ctx, "synthesizing answer",
		"chunks", len(chunks),
		"top_score", topScore,
		"confidence", confidence,
	)

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(userPromptTemplate, req.Question, contextBlock)},
	}

	answer, err := e.completer.ChatWithMessages(ctx, messages, llm.ChatParams{
		Temperature: req.Temperature,
		MaxTokens:   synthesisMaxTokens,
	})
	if err != nil {
		// Retrieval work is not wasted on a synthesis failure: the
		// sources and confidence computed above still go back.
		logger.ErrorContext(ctx, "answer synthesis failed", "error", err)
		return AnswerResponse{
			Answer:  synthesisFailedAnswer,
			Sources: sources,
			Metadata: Metadata{
				ChunksRetrieved: len(chunks),
				Confidence:      confidence,
				Error:           err.Error(),
			},
		}
	}

	return AnswerResponse{
		Answer:  answer,
		Sources: sources,
		Metadata: Metadata{
			ChunksRetrieved: len(chunks),
			Confidence:      confidence,
			TopScore:        topScore,
			QueryExpanded:   req.UseExpansion,
		},
	}
}
