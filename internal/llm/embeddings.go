package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingsClient is an embeddings client. It satisfies Embedder.
type EmbeddingsClient struct {
	api          *openai.Client
	Model        string
	ExpectedSize int // Expected vector size for validation
	Timeout      time.Duration
}

// NewEmbeddingsClient creates a new embeddings client. All embeddings
// returned by EmbedTexts are validated against expectedSize, which must
// match the vector size the index was built with.
func NewEmbeddingsClient(apiKey, baseURL, model string, expectedSize int, timeout time.Duration) *EmbeddingsClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &EmbeddingsClient{
		api:          openai.NewClientWithConfig(cfg),
		Model:        model,
		ExpectedSize: expectedSize,
		Timeout:      timeout,
	}
}

// EmbedTexts generates embeddings for the given texts, one vector per
// input, in input order.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.Model),
		Input: texts,
	})
	if err != nil {
		return nil, classify("embeddings", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, malformed("embeddings", fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
	}

	result := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		if c.ExpectedSize > 0 && len(data.Embedding) != c.ExpectedSize {
			return nil, malformed("embeddings", fmt.Sprintf("embedding %d has size %d, expected %d", i, len(data.Embedding), c.ExpectedSize))
		}
		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		result[i] = vec
	}

	return result, nil
}
