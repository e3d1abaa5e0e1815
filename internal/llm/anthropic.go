package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/DiogoHD/LLM-and-ODC/internal/logging"
)

const defaultAnthropicMaxTokens = 4096

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	maxTokens int64
}

// NewAnthropicClient returns a client. An empty APIKey falls back to
// ANTHROPIC_API_KEY.
func NewAnthropicClient(opts Options, extra ...option.RequestOption) *AnthropicClient {
	var ro []option.RequestOption
	if opts.APIKey != "" {
		ro = append(ro, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		ro = append(ro, option.WithBaseURL(opts.BaseURL))
	}
	ro = append(ro, extra...)

	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	return &AnthropicClient{client: anthropic.NewClient(ro...), maxTokens: maxTokens}
}

// Chat implements Client. Only the first text block of the reply is used.
func (c *AnthropicClient) Chat(ctx context.Context, model, prompt string) (string, error) {
	logger := logging.New("llm")
	logger.Debug("chat request", "provider", ProviderAnthropic, "model", model, "prompt_bytes", len(prompt))

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("create message %s: %w", model, err)
	}
	logger.Debug("chat response", "model", model, "stop_reason", msg.StopReason,
		"input_tokens", msg.Usage.InputTokens, "output_tokens", msg.Usage.OutputTokens)
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
