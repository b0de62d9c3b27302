package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"rocon-docs-ai/internal/corpus"
	"rocon-docs-ai/internal/llm/mocks"
)

func TestClassifyConfidence(t *testing.T) {
	tests := []struct {
		score float64
		want  Confidence
	}{
		{0.9, ConfidenceHigh},
		{0.71, ConfidenceHigh},
		{0.7, ConfidenceMedium},
		{0.51, ConfidenceMedium},
		{0.5, ConfidenceLow},
		{0.1, ConfidenceLow},
		{0.0, ConfidenceLow},
	}
	for _, tt := range tests {
		if got := classifyConfidence(tt.score); got != tt.want {
			t.Errorf("classifyConfidence(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestBuildContextEmpty(t *testing.T) {
	if got := buildContext(nil); got != "No relevant documentation found." {
		t.Errorf("unexpected empty context: %q", got)
	}
}

func TestBuildContextNumbersAndMetadata(t *testing.T) {
	out := buildContext([]SearchResult{
		{
			Chunk: corpus.Chunk{
				Title:    "Managing Sites",
				Category: "sites",
				Heading:  "Create a Site",
				URL:      "https://docs.example.com/sites",
				Content:  "short content",
			},
			RerankScore: 0.875,
			Reranked:    true,
		},
		{
			Chunk: corpus.Chunk{
				URL:     "https://docs.example.com/other",
				Content: "other content",
			},
			VectorScore: 0.4,
		},
	})

	for _, want := range []string{
		"[Document 1]",
		"[Document 2]",
		"Title: Managing Sites",
		"Category: sites",
		"Section: Create a Site",
		"Relevance Score: 0.875",
		"Title: Unknown",
		"Category: General",
		"Section: N/A",
		strings.Repeat("=", 60),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("context missing %q", want)
		}
	}
}

func TestBuildContextPrefersExpandedContent(t *testing.T) {
	out := buildContext([]SearchResult{
		{
			Chunk:              corpus.Chunk{URL: "u", Content: "bare"},
			ContentWithContext: "bare with neighbors",
		},
	})
	if !strings.Contains(out, "bare with neighbors") {
		t.Error("expected expanded content in context block")
	}
}

func TestFormatSourcesUniqueAndCapped(t *testing.T) {
	var chunks []SearchResult
	urls := []string{"u1", "u2", "u1", "u3", "u4", "u5", "u6", "u7"}
	for _, u := range urls {
		chunks = append(chunks, SearchResult{
			Chunk: corpus.Chunk{Title: "T " + u, URL: u, Category: "c"},
		})
	}

	sources := formatSources(chunks)
	if len(sources) != maxSources {
		t.Fatalf("expected %d sources, got %d", maxSources, len(sources))
	}
	want := []string{"u1", "u2", "u3", "u4", "u5"}
	for i, s := range sources {
		if s.URL != want[i] {
			t.Errorf("source %d = %s, want %s", i, s.URL, want[i])
		}
	}
}

func TestFormatSourcesSkipsEmptyURL(t *testing.T) {
	sources := formatSources([]SearchResult{
		{Chunk: corpus.Chunk{Title: "no url"}},
		{Chunk: corpus.Chunk{URL: "u1"}},
	})
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	if sources[0].Title != "Untitled" || sources[0].Category != "General" {
		t.Errorf("expected fallback title and category, got %+v", sources[0])
	}
}

func TestSynthesizeEmptyRetrieval(t *testing.T) {
	e := &engine{}
	resp := e.synthesize(context.Background(), AnswerRequest{Question: "anything"}, nil)

	if resp.Answer != notFoundAnswer {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if resp.Sources == nil || len(resp.Sources) != 0 {
		t.Errorf("expected empty non-nil sources, got %v", resp.Sources)
	}
	if resp.Metadata.Confidence != ConfidenceLow || resp.Metadata.ChunksRetrieved != 0 {
		t.Errorf("unexpected metadata: %+v", resp.Metadata)
	}
}

func TestSynthesizeSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockCompleter(ctrl)
	completer.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("To create a site, open the dashboard.", nil)

	e := &engine{completer: completer}
	chunks := []SearchResult{
		{
			Chunk:       corpus.Chunk{ChunkID: "c1", Title: "Sites", URL: "u1", Content: "create a site"},
			RerankScore: 0.8,
			Reranked:    true,
		},
	}

	resp := e.synthesize(context.Background(), AnswerRequest{Question: "how do I create a site"}, chunks)
	if resp.Answer != "To create a site, open the dashboard." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if resp.Metadata.Confidence != ConfidenceHigh {
		t.Errorf("expected high confidence, got %v", resp.Metadata.Confidence)
	}
	if resp.Metadata.TopScore != 0.8 || resp.Metadata.ChunksRetrieved != 1 {
		t.Errorf("unexpected metadata: %+v", resp.Metadata)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].URL != "u1" {
		t.Errorf("unexpected sources: %+v", resp.Sources)
	}
}

func TestSynthesizeModelFailureKeepsSources(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockCompleter(ctrl)
	completer.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("model unavailable"))

	e := &engine{completer: completer}
	chunks := []SearchResult{
		{
			Chunk:       corpus.Chunk{ChunkID: "c1", Title: "Sites", URL: "u1", Content: "create a site"},
			RerankScore: 0.6,
			Reranked:    true,
		},
	}

	resp := e.synthesize(context.Background(), AnswerRequest{Question: "q"}, chunks)
	if resp.Answer != synthesisFailedAnswer {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if len(resp.Sources) != 1 {
		t.Errorf("expected sources preserved on synthesis failure, got %v", resp.Sources)
	}
	if resp.Metadata.Error == "" {
		t.Error("expected error recorded in metadata")
	}
	if resp.Metadata.Confidence != ConfidenceMedium {
		t.Errorf("expected medium confidence, got %v", resp.Metadata.Confidence)
	}
}
