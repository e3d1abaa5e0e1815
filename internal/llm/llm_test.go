package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/go-cmp/cmp"
)

func TestModelName(t *testing.T) {
	tests := map[string]string{
		"qwen3:8b":          "qwen3",
		"deepseek-r1:14b":   "deepseek-r1",
		"llama3":            "llama3",
		"claude-sonnet-4-5": "claude-sonnet-4-5",
		"":                  "",
	}
	for in, want := range tests {
		if got := ModelName(in); got != want {
			t.Errorf("ModelName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	if c, err := New(ProviderOpenAI, Options{}); err != nil {
		t.Errorf("openai: %v", err)
	} else if _, ok := c.(ModelLister); !ok {
		t.Error("openai client should list models")
	}
	if _, err := New(ProviderAnthropic, Options{APIKey: "k"}); err != nil {
		t.Errorf("anthropic: %v", err)
	}
	if _, err := New("gemini", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestOpenAIClient(t *testing.T) {
	var gotReq struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer ollama" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/v1/chat/completions":
			_ = json.NewDecoder(r.Body).Decode(&gotReq)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "c1", "object": "chat.completion", "model": gotReq.Model,
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": "<think>hm</think>Defect Type: Checking"},
				}},
			})
		case "/v1/models":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"object": "list",
				"data":   []map[string]any{{"id": "qwen3:8b"}, {"id": "llama3.1:8b"}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewOpenAIClient(Options{BaseURL: srv.URL + "/v1/", APIKey: "ollama", MaxTokens: 512})
	ctx := context.Background()

	reply, err := c.Chat(ctx, "qwen3:8b", "classify this")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "<think>hm</think>Defect Type: Checking" {
		t.Errorf("reply = %q", reply)
	}
	if gotReq.Model != "qwen3:8b" || gotReq.MaxTokens != 512 {
		t.Errorf("request model=%q max_tokens=%d", gotReq.Model, gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" || gotReq.Messages[0].Content != "classify this" {
		t.Errorf("request messages = %+v", gotReq.Messages)
	}

	models, err := c.ListModels(ctx)
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if diff := cmp.Diff([]string{"qwen3:8b", "llama3.1:8b"}, models); diff != "" {
		t.Errorf("ListModels mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenAIClient_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model not found"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOpenAIClient(Options{BaseURL: srv.URL, APIKey: "ollama"})
	if _, err := c.Chat(context.Background(), "missing", "p"); err == nil {
		t.Error("expected error")
	}
}

func TestAnthropicClient(t *testing.T) {
	var gotReq struct {
		Model     string `json:"model"`
		MaxTokens int64  `json:"max_tokens"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "msg_1", "type": "message", "role": "assistant", "model": gotReq.Model,
			"content": []map[string]any{
				{"type": "text", "text": "Defect Type: Interface\nDefect Qualifier: Incorrect"},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	defer srv.Close()

	c := NewAnthropicClient(Options{BaseURL: srv.URL, APIKey: "test-key"}, option.WithMaxRetries(0))
	reply, err := c.Chat(context.Background(), "claude-sonnet-4-5", "classify this")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "Defect Type: Interface\nDefect Qualifier: Incorrect" {
		t.Errorf("reply = %q", reply)
	}
	if gotReq.Model != "claude-sonnet-4-5" || gotReq.MaxTokens != defaultAnthropicMaxTokens {
		t.Errorf("request model=%q max_tokens=%d", gotReq.Model, gotReq.MaxTokens)
	}
}
