package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ashureev/leadrelay/internal/domain"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// ProviderGroq selects Groq's OpenAI-compatible endpoint.
	ProviderGroq = "groq"

	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "llama-3.1-8b-instant"
)

// GroqConfig holds configuration for the Groq provider.
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LangChain adapts any langchaingo model to Generator.
type LangChain struct {
	model   llms.Model
	name    string
	timeout time.Duration
}

// NewLangChain wraps an existing langchaingo model.
func NewLangChain(model llms.Model, name string, timeout time.Duration) *LangChain {
	return &LangChain{model: model, name: name, timeout: timeout}
}

// NewGroq creates a Generator backed by Groq through langchaingo's OpenAI client.
func NewGroq(cfg GroqConfig) (*LangChain, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGroqBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultGroqModel
	}

	model, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}
	return NewLangChain(model, cfg.Model, cfg.Timeout), nil
}

// Generate implements Generator.
func (c *LangChain) Generate(ctx context.Context, p Prompt) (string, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	msgs := make([]llms.MessageContent, 0, len(p.Turns)+1)
	if p.System != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, p.System))
	}
	for _, t := range p.Turns {
		typ := llms.ChatMessageTypeHuman
		if t.Role == domain.RoleAssistant {
			typ = llms.ChatMessageTypeAI
		}
		msgs = append(msgs, llms.TextParts(typ, t.Content))
	}

	opts := []llms.CallOption{llms.WithTemperature(p.Temperature)}
	if p.JSON {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := c.model.GenerateContent(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("%s generate content: %w", c.name, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
