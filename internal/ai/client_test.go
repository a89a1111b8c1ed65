package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestAnswerOpenAI(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) == 2 {
			gotPrompt = req.Messages[1].Content
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]string{"role": "assistant", "content": "You have 12 days of leave left."},
				},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), Config{Provider: "openai", APIKey: "sk-test", BaseURL: server.URL}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	answer, err := client.Answer(context.Background(), "how many leaves do I have", "Leave balance: 12 days")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer != "You have 12 days of leave left." {
		t.Errorf("unexpected answer %q", answer)
	}
	if !strings.Contains(gotPrompt, "Leave balance: 12 days") || !strings.Contains(gotPrompt, "Question: how many leaves do I have") {
		t.Errorf("unexpected prompt %q", gotPrompt)
	}
}

func TestAnswerOpenAIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), Config{Provider: "openai", APIKey: "sk-test", BaseURL: server.URL}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Answer(context.Background(), "q", ""); err == nil {
		t.Error("expected an error from a failing provider")
	}
}

func TestNewClientNotConfigured(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{}, nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := NewClient(context.Background(), Config{Provider: "bedrock"}, nil); err == nil {
		t.Error("expected an error for an unknown provider")
	}
}

func TestBuildPrompt(t *testing.T) {
	if got := buildPrompt(" when is payday ", ""); got != "Question: when is payday" {
		t.Errorf("unexpected prompt %q", got)
	}
	got := buildPrompt("q", "line\x00one\nline two")
	if got != "Context:\nlineone\nline two\n\nQuestion: q" {
		t.Errorf("unexpected prompt %q", got)
	}
}

func TestStripMarkdownCodeFences(t *testing.T) {
	if got := stripMarkdownCodeFences("```text\nhello\n```"); got != "hello" {
		t.Errorf("unexpected %q", got)
	}
	if got := stripMarkdownCodeFences("plain"); got != "plain" {
		t.Errorf("unexpected %q", got)
	}
}

func TestResolveEnvVarKeyPointer(t *testing.T) {
	t.Setenv("HRASSIST_TEST_KEY", "sk-from-env")
	if got := resolveEnvVarKeyPointer("HRASSIST_TEST_KEY"); got != "sk-from-env" {
		t.Errorf("unexpected %q", got)
	}
	if got := resolveEnvVarKeyPointer("sk-literal"); got != "sk-literal" {
		t.Errorf("unexpected %q", got)
	}
}

func TestConfigFromViper(t *testing.T) {
	v := viper.New()
	v.Set("ai.default_provider", "openai")
	v.Set("ai.providers.openai.api_key_env", "OPENAI_API_KEY")
	v.Set("ai.providers.openai.model", "gpt-4o")

	cfg := ConfigFromViper(v, "")
	if cfg.Provider != "openai" || cfg.Model != "gpt-4o" || cfg.APIKey != "OPENAI_API_KEY" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if empty := ConfigFromViper(viper.New(), ""); empty.Provider != "" {
		t.Errorf("expected no provider, got %+v", empty)
	}
}
