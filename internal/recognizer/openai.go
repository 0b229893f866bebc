package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/roomgrabber/roomgrabber/internal/models"
)

const extractionSystemPrompt = `You extract meeting-room booking details from one user message.
Respond with strict JSON only, no prose and no code fences, in this shape:
{"topIntent":"Book_Meeting_Room","entities":[{"type":"location","value":"Seattle"},{"type":"datetime","value":"2024-05-01T14:00"},{"type":"duration","value":"3600"}]}
Rules:
- topIntent is "Book_Meeting_Room" when the message asks to book a meeting room, otherwise "None".
- Emit a "location" entity only when a city or site is named.
- Emit a "datetime" entity as a TIMEX-style value: "2024-05-01T14:00" when fully specified, "--05-01" when the year is unknown, "XXXX-WXX-3" for a weekday, "T14:00" for a time alone. Never invent missing parts.
- Emit a "duration" entity in seconds when a meeting length is given.
- Omit entities that are not present. Emit an empty entities array when none are.`

// Opts holds configuration options for the OpenAI-backed recognizer.
type Opts struct {
	APIKey string
	Model  string
}

// Option defines a configuration option for the OpenAI-backed recognizer.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model used for extraction.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// Client implements Recognizer using OpenAI chat completions for entity
// extraction.
type Client struct {
	client openai.Client
	model  string
}

// NewClient creates an OpenAI-backed recognizer, falling back to the
// OPENAI_API_KEY environment variable when no key option is given.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	slog.Debug("recognizer.NewClient: creating OpenAI recognizer", "model", cfg.Model)
	return &Client{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
	}, nil
}

// Recognize runs one extraction completion over the text and decodes the
// model's JSON answer.
func (c *Client) Recognize(ctx context.Context, text string) (Result, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractionSystemPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		slog.Error("recognizer.Client.Recognize: completion failed", "error", err)
		return Result{}, fmt.Errorf("%w: %v", models.ErrRecognizerUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("%w: no choices returned", models.ErrRecognizerUnavailable)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var result Result
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &result); err != nil {
		slog.Error("recognizer.Client.Recognize: undecodable extraction", "error", err, "content_length", len(content))
		return Result{}, fmt.Errorf("failed to decode extraction: %w", err)
	}
	slog.Debug("recognizer.Client.Recognize: extraction decoded", "topIntent", result.TopIntent, "entities", len(result.Entities))
	return result, nil
}

// Mock implements Recognizer with canned results for tests.
type Mock struct {
	Result Result
	Err    error
	// Texts records every recognized utterance.
	Texts []string
}

// Recognize returns the canned result.
func (m *Mock) Recognize(ctx context.Context, text string) (Result, error) {
	m.Texts = append(m.Texts, text)
	return m.Result, m.Err
}
