// Package ai answers high-confidence HR questions through a hosted language
// model when one is configured.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

var ErrNotConfigured = errors.New("ai provider not configured")

const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.5-flash"

	maxContextChars = 6000
)

const systemPrompt = "You are an HR assistant for a company HR portal. " +
	"Answer the employee's question briefly and politely using only the provided context. " +
	"If the context does not contain the answer, say you are not sure and suggest contacting HR."

type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Debug    bool
}

type Client struct {
	provider     string
	model        string
	geminiClient *genai.Client
	openaiClient *openai.Client
	logger       *slog.Logger
	debug        bool
}

// NewClient builds a client for the configured provider. Gemini falls back to
// OpenAI when the Gemini client cannot be created and an OpenAI key exists.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	apiKey := resolveEnvVarKeyPointer(cfg.APIKey)

	client := &Client{
		provider: provider,
		model:    strings.TrimSpace(cfg.Model),
		logger:   logger,
		debug:    cfg.Debug,
	}

	switch provider {
	case "", "none":
		return nil, ErrNotConfigured
	case "gemini", "gemini-api":
		if client.model == "" {
			client.model = DefaultGeminiModel
		}
		gc, err := newGeminiClient(ctx, provider, apiKey)
		if err != nil {
			if fb := client.tryFallbackToOpenAI(cfg.BaseURL); fb {
				logger.Warn("gemini unavailable, using openai", "error", err)
				return client, nil
			}
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		client.geminiClient = gc
	case "openai":
		if apiKey == "" {
			apiKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		}
		if apiKey == "" {
			return nil, fmt.Errorf("openai api key is required: %w", ErrNotConfigured)
		}
		if client.model == "" {
			client.model = DefaultOpenAIModel
		}
		client.openaiClient = newOpenAIClient(apiKey, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
	return client, nil
}

func newGeminiClient(ctx context.Context, provider, apiKey string) (*genai.Client, error) {
	cc := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if provider == "gemini-api" || apiKey != "" {
		if apiKey == "" {
			apiKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini api key is required: %w", ErrNotConfigured)
		}
		cc.APIKey = apiKey
	} else {
		cc.Backend = genai.BackendVertexAI
		cc.Project = os.Getenv("GOOGLE_CLOUD_PROJECT")
		cc.Location = os.Getenv("GOOGLE_CLOUD_LOCATION")
	}
	return genai.NewClient(ctx, cc)
}

func newOpenAIClient(apiKey, baseURL string) *openai.Client {
	oc := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		oc.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return openai.NewClientWithConfig(oc)
}

func (c *Client) tryFallbackToOpenAI(baseURL string) bool {
	key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if key == "" {
		return false
	}
	c.provider = "openai"
	c.model = DefaultOpenAIModel
	c.openaiClient = newOpenAIClient(key, baseURL)
	return true
}

func (c *Client) Provider() string {
	return c.provider
}

// Answer asks the model to answer question grounded in contextText.
func (c *Client) Answer(ctx context.Context, question, contextText string) (string, error) {
	prompt := buildPrompt(question, contextText)
	if c.debug {
		c.logger.Debug("asking model", "provider", c.provider, "model", c.model, "prompt_chars", len(prompt))
	}

	var (
		answer string
		err    error
	)
	switch {
	case c.geminiClient != nil:
		answer, err = c.askGemini(ctx, prompt)
	case c.openaiClient != nil:
		answer, err = c.askOpenAI(ctx, prompt)
	default:
		return "", ErrNotConfigured
	}
	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(stripMarkdownCodeFences(answer))
	if answer == "" {
		return "", fmt.Errorf("%s returned an empty answer", c.provider)
	}
	return answer, nil
}

func (c *Client) askGemini(ctx context.Context, prompt string) (string, error) {
	content := genai.NewContentFromText(systemPrompt+"\n\n"+prompt, genai.RoleUser)
	resp, err := c.geminiClient.Models.GenerateContent(ctx, c.model, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to call gemini: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

func (c *Client) askOpenAI(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	}
	resp, err := c.openaiClient.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to call openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from openai")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildPrompt(question, contextText string) string {
	contextText = strings.TrimSpace(sanitizeASCII(contextText))
	if len(contextText) > maxContextChars {
		contextText = contextText[:maxContextChars]
	}

	var sb strings.Builder
	if contextText != "" {
		sb.WriteString("Context:\n")
		sb.WriteString(contextText)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(strings.TrimSpace(question))
	return sb.String()
}

// sanitizeASCII drops control characters that some providers reject.
func sanitizeASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

func stripMarkdownCodeFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.Index(t, "\n"); i >= 0 {
		t = t[i+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(t), "```")
}

func looksLikeEnvVarName(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 8 {
		return false
	}
	// Must be all caps/underscores/digits and start with a letter.
	for i, r := range s {
		if i == 0 {
			if r < 'A' || r > 'Z' {
				return false
			}
			continue
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			continue
		}
		return false
	}
	return true
}

// resolveEnvVarKeyPointer lets configs name an env var instead of embedding a key.
func resolveEnvVarKeyPointer(apiKey string) string {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ""
	}
	if !looksLikeEnvVarName(apiKey) {
		return apiKey
	}
	if v := strings.TrimSpace(os.Getenv(apiKey)); v != "" {
		return v
	}
	return apiKey
}
