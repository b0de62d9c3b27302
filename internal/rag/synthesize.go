package rag

import (
	"fmt"
	"strings"
)

const (
	confidenceHighThreshold   = 0.7
	confidenceMediumThreshold = 0.5

	maxSources         = 5
	synthesisMaxTokens = 1000
)

const notFoundAnswer = "I couldn't find relevant information in the ROCON documentation to answer your question. Please contact ROCON support for assistance."

const synthesisFailedAnswer = "I encountered an error while generating the answer. Please try again."

const systemPrompt = `You are the ROCON Docs Assistant, an expert on ROCON PaaS documentation.

Your role:
- Answer questions using ONLY the provided documentation context below
- Be precise, helpful, and conversational
- Provide step-by-step instructions when explaining processes
- If the documentation clearly describes a concept but uses different terminology than the user (e.g., "site" instead of "WordPress site"), answer based on the documentation and acknowledge the terminology
- If information is partially covered, answer what you can and clearly state what's missing
- If the documentation doesn't cover the topic at all, say: "I don't see this information in the ROCON documentation. You may want to contact support at [support URL]."

Formatting guidelines:
- Use markdown formatting for better readability
- Use bullet points for lists and steps
- Include code snippets in ` + "```" + ` when relevant
- Bold important terms with **text**
- Always cite sources at the end with the format:

**Sources:**

- [Document Title](URL)

- [Another Document](URL)

Important: Base your answer ONLY on the provided context. Do not use external knowledge.`

const userPromptTemplate = `User Question: %s

Documentation Context:

%s

Instructions:
1. Answer the user's question using ONLY the documentation context above
2. Be clear, concise, and helpful
3. Use markdown formatting for better readability
4. If the documentation uses different terminology than the user's question, acknowledge this in your answer
5. Include a "Sources" section at the end with markdown links
6. If the context doesn't fully answer the question, be explicit about what's missing

Your answer:`

// classifyConfidence maps the top chunk's final score to a coarse
// label. Thresholds are fixed constants, not call-time configurable.
func classifyConfidence(topScore float64) Confidence {
	switch {
	case topScore > confidenceHighThreshold:
		return ConfidenceHigh
	case topScore > confidenceMediumThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// buildContext renders the fused chunk set as a structured context
// block, numbered in rank order, with metadata the model can cite.
func buildContext(chunks []SearchResult) string {
	if len(chunks) == 0 {
		return "No relevant documentation found."
	}

	separator := strings.Repeat("=", 60)
	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		content := chunk.ContentWithContext
		if content == "" {
			content = chunk.Content
		}

		entry := fmt.Sprintf(`[Document %d]
Title: %s
Category: %s
Section: %s
URL: %s
Relevance Score: %.3f

Content:

%s

%s`,
			i+1,
			orDefault(chunk.Title, "Unknown"),
			orDefault(chunk.Category, "General"),
			orDefault(chunk.Heading, "N/A"),
			chunk.URL,
			chunk.FinalScore(),
			content,
			separator,
		)
		parts = append(parts, entry)
	}

	return strings.Join(parts, "\n\n")
}

// formatSources extracts up to maxSources unique cited pages in
// first-seen (rank) order.
func formatSources(chunks []SearchResult) []Source {
	sources := make([]Source, 0, maxSources)
	seenURLs := make(map[string]struct{}, len(chunks))

	for _, chunk := range chunks {
		if chunk.URL == "" {
			continue
		}
		if _, seen := seenURLs[chunk.URL]; seen {
			continue
		}
		seenURLs[chunk.URL] = struct{}{}
		sources = append(sources, Source{
			Title:    orDefault(chunk.Title, "Untitled"),
			URL:      chunk.URL,
			Category: orDefault(chunk.Category, "General"),
		})
		if len(sources) == maxSources {
			break
		}
	}

	return sources
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
