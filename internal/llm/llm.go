// Package llm sends classification prompts to chat models.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Providers understood by New.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NoResponse is written in place of an empty model answer.
const NoResponse = "[No Model Response]"

// Client sends one user prompt to a model and returns the reply text.
type Client interface {
	Chat(ctx context.Context, model, prompt string) (string, error)
}

// ModelLister is implemented by clients that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Options configures a client.
type Options struct {
	BaseURL   string
	APIKey    string
	MaxTokens int
}

// New returns the client for provider.
func New(provider string, opts Options) (Client, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(opts), nil
	case ProviderAnthropic:
		return NewAnthropicClient(opts), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// ModelName is the model identifier without its tag, e.g. "qwen3" for
// "qwen3:8b". It names response files.
func ModelName(model string) string {
	name, _, _ := strings.Cut(model, ":")
	return name
}
