// Package llm is the completion service behind the companion's chat, backed
// by the OpenAI chat completions API.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/robalobadob/companion/internal/chat"
)

// Client implements chat.Completer.
type Client struct {
	api         openai.Client
	configured  bool
	model       string
	maxTokens   int64
	temperature float64
}

// Config holds completion client configuration.
type Config struct {
	APIKey      string        // empty: every call returns chat.ErrNotConfigured
	BaseURL     string        // optional; OpenAI-compatible endpoint
	Model       string        // default: gpt-4o-mini
	MaxTokens   int64         // default: 500
	Temperature float64       // sent as given; DefaultConfig uses 0.7
	Timeout     time.Duration // per request (default: 30s)
	HTTPClient  *http.Client
}

// DefaultConfig returns the companion's completion parameters without a key.
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4o-mini",
		MaxTokens:   500,
		Temperature: 0.7,
		Timeout:     30 * time.Second,
	}
}

// NewClient creates a completion client. It never performs I/O. Zero Model,
// MaxTokens and Timeout take the DefaultConfig values; Temperature does not,
// since 0 is a valid setting.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}

	key := strings.TrimSpace(cfg.APIKey)
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{
		api:         openai.NewClient(opts...),
		configured:  key != "",
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.configured }

// Complete sends the conversation and returns the first choice's text.
// Single attempt, no streaming.
func (c *Client) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	if !c.configured {
		return "", chat.ErrNotConfigured
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case chat.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(t.Content))
		case chat.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(t.Content))
		default:
			msgs = append(msgs, openai.UserMessage(t.Content))
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    msgs,
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", chat.ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}
