package llm

import (
	"context"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Client is a chat-completions client. It satisfies Completer.
type Client struct {
	api     *openai.Client
	Model   string
	Timeout time.Duration
}

// NewClient creates a new chat client. baseURL may be empty to use the
// default OpenAI endpoint; model is the default model for requests that
// do not name one.
func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		Model:   model,
		Timeout: timeout,
	}
}

// ChatWithMessages sends a chat completion request. Failures are wrapped
// as CallError so callers can distinguish timeouts and malformed
// responses from plain failures.
func (c *Client) ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	model := params.Model
	if model == "" {
		model = c.Model
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    chatMessages,
		Temperature: effectiveTemperature(params.Temperature),
		MaxTokens:   params.MaxTokens,
	})
	if err != nil {
		return "", classify("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", malformed("chat completion", "no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// effectiveTemperature maps an explicit zero to the smallest positive
// float32. The request marshalling omits a zero temperature, which the
// API reads as "use the model default" (1.0); the smallest positive
// value survives marshalling and rounds to 0 on the server side.
func effectiveTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
