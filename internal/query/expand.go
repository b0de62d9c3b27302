package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"rocon-docs-ai/internal/contextutil"
	"rocon-docs-ai/internal/llm"
)

const (
	// maxVariants caps the model-generated phrasings, so Expand returns
	// between 1 and 4 queries.
	maxVariants = 3

	expansionTemperature = 0.3
	expansionMaxTokens   = 150
)

const expansionPromptTemplate = `Given this user question about ROCON documentation, generate 3 alternative phrasings or related queries that would help retrieve relevant documentation.

Original question: "%s"

Requirements:
- Keep queries concise (5-10 words each)
- Focus on different aspects or terminology
- Include technical and non-technical variations
- Don't change the core intent

Return only the 3 queries, one per line, without numbering or explanation.`

// Processor normalizes and expands user questions into search queries.
type Processor struct {
	completer llm.Completer
	model     string
	logger    *slog.Logger
}

// NewProcessor creates a query processor. model is the fast model used
// for expansion calls; completer may be nil to disable expansion.
func NewProcessor(completer llm.Completer, model string) *Processor {
	return &Processor{
		completer: completer,
		model:     model,
		logger:    slog.Default(),
	}
}

// Normalize applies the domain-term rewrites to a question.
func (p *Processor) Normalize(question string) string {
	return Normalize(question)
}

// Expand returns the normalized question plus up to three alternative
// phrasings generated by the model. Expansion is a quality enhancement,
// never a hard dependency: on any failure the normalized question alone
// is returned.
func (p *Processor) Expand(ctx context.Context, question string) []string {
	normalized := Normalize(question)
	if p.completer == nil {
		return []string{normalized}
	}

	logger := contextutil.LoggerFromContext(ctx)

	prompt := fmt.Sprintf(expansionPromptTemplate, normalized)
	out, err := p.completer.ChatWithMessages(ctx,
		[]llm.Message{{Role: "user", Content: prompt}},
		llm.ChatParams{
			Model:       p.model,
			Temperature: expansionTemperature,
			MaxTokens:   expansionMaxTokens,
		},
	)
	if err != nil {
		logger.WarnContext(ctx, "query expansion failed", "error", err)
		return []string{normalized}
	}

	variants := parseVariants(out)
	if len(variants) == 0 {
		logger.WarnContext(ctx, "query expansion returned no usable variants")
		return []string{normalized}
	}
	if len(variants) > maxVariants {
		variants = variants[:maxVariants]
	}

	queries := make([]string, 0, 1+len(variants))
	queries = append(queries, normalized)
	queries = append(queries, variants...)
	logger.DebugContext(ctx, "expanded queries", "queries", queries)
	return queries
}

// parseVariants splits the model output into trimmed, non-empty lines.
func parseVariants(out string) []string {
	lines := strings.Split(out, "\n")
	variants := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		variants = append(variants, line)
	}
	return variants
}
