package rag

import (
	"rocon-docs-ai/internal/corpus"
)

// Confidence is the coarse quality label derived from the top result's
// final score.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// SearchResult is a scored view of a chunk produced during one query
// execution. It is request-scoped and never persisted.
type SearchResult struct {
	corpus.Chunk

	// VectorScore is the cosine similarity from the vector index.
	VectorScore float64 `json:"vector_score"`
	// KeywordScore is the query/content word overlap in [0,1], set by
	// the reranker.
	KeywordScore float64 `json:"keyword_score"`
	// RerankScore is the blended final ranking key, set by the reranker.
	RerankScore float64 `json:"rerank_score,omitempty"`
	// Reranked records whether the reranker ran; until then ordering
	// falls back to VectorScore.
	Reranked bool `json:"-"`
	// ContentWithContext is the content merged with adjacent chunks,
	// set by the context expander.
	ContentWithContext string `json:"content_with_context,omitempty"`
}

// FinalScore returns the ranking key: the rerank score once the
// reranker has run, the raw vector score otherwise.
func (r SearchResult) FinalScore() float64 {
	if r.Reranked {
		return r.RerankScore
	}
	return r.VectorScore
}

// Source identifies one cited documentation page.
type Source struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

// Metadata describes how an answer was produced.
type Metadata struct {
	ChunksRetrieved int        `json:"chunks_retrieved"`
	Confidence      Confidence `json:"confidence"`
	TopScore        float64    `json:"top_score,omitempty"`
	QueryExpanded   bool       `json:"query_expanded,omitempty"`
	// Error carries the synthesis failure description when the model
	// call failed after successful retrieval.
	Error string `json:"error,omitempty"`
}

// AnswerRequest is a question to answer against the documentation.
type AnswerRequest struct {
	// Question is the user's question.
	Question string `json:"question"`
	// UseExpansion enables LLM query expansion.
	UseExpansion bool `json:"use_expansion"`
	// Temperature is passed to the synthesis call.
	Temperature float32 `json:"temperature"`
	// Category optionally restricts retrieval to one documentation
	// category.
	Category string `json:"category,omitempty"`
}

// AnswerResponse is the final answer with cited sources and metadata.
type AnswerResponse struct {
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
	Metadata Metadata `json:"metadata"`
}
