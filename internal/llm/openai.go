package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/DiogoHD/LLM-and-ODC/internal/logging"
)

// OpenAIClient talks to any OpenAI-compatible endpoint, including a local
// ollama server at http://localhost:11434/v1.
type OpenAIClient struct {
	client    *openai.Client
	maxTokens int
}

// NewOpenAIClient returns a client for opts.BaseURL, or the OpenAI API when
// it is empty.
func NewOpenAIClient(opts Options) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), maxTokens: opts.MaxTokens}
}

// Chat implements Client.
func (c *OpenAIClient) Chat(ctx context.Context, model, prompt string) (string, error) {
	logger := logging.New("llm")
	logger.Debug("chat request", "provider", ProviderOpenAI, "model", model, "prompt_bytes", len(prompt))

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if c.maxTokens > 0 {
		req.MaxTokens = c.maxTokens
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion %s: %w", model, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	logger.Debug("chat response", "model", model, "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// ListModels implements ModelLister.
func (c *OpenAIClient) ListModels(ctx context.Context) ([]string, error) {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return names, nil
}
