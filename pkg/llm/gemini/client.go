package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// generator is the part of genai.Models the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.ChatModel on top of the Gemini API.
type Client struct {
	models      generator
	model       string
	temperature float32
	maxTokens   int32
}

type Option func(*Client)

// WithMaxTokens caps the reply length. Zero leaves the API default.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = int32(n) }
}

func WithTemperature(t float32) Option {
	return func(c *Client) { c.temperature = t }
}

// New creates a Gemini client. Requests use temperature 0 unless overridden.
func New(ctx context.Context, apiKey, model string, timeout time.Duration, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return newClient(gc.Models, model, opts...), nil
}

func newClient(models generator, model string, opts ...Option) *Client {
	if model == "" {
		model = defaultModel
	}
	c := &Client{models: models, model: model}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Ask sends one user turn and returns the concatenated text of the first candidate.
func (c *Client) Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = c.maxTokens
	}
	if strings.TrimSpace(systemPrompt) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(userPrompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates returned by model")
	}
	return resp.Text(), nil
}
