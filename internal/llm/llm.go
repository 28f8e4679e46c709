// Package llm provides the text-generation port used by the lead pipeline and
// its provider implementations.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/leadrelay/internal/domain"
)

var (
	// ErrUnavailable is returned when no provider credentials were configured.
	ErrUnavailable = errors.New("text generation unavailable")
	// ErrEmptyResponse is returned when the provider answered with no text.
	ErrEmptyResponse = errors.New("empty completion")
)

// Prompt is a single generation request.
type Prompt struct {
	System      string
	Turns       []domain.Turn
	JSON        bool // ask the provider for a JSON object
	Temperature float64
}

// Generator renders a prompt into text.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Unavailable is a Generator that always fails with ErrUnavailable.
type Unavailable struct {
	Reason string
}

// Generate implements Generator.
func (u Unavailable) Generate(context.Context, Prompt) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrUnavailable, u.Reason)
}

// Config selects and configures a provider.
type Config struct {
	Provider     string // "groq" or "gemini"
	Model        string
	GroqAPIKey   string
	GroqBaseURL  string
	GoogleAPIKey string
	Timeout      time.Duration
}

// New builds the configured Generator. Missing credentials are not an error:
// the returned Generator is Unavailable and every call short-circuits.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Provider {
	case "", ProviderGroq:
		if cfg.GroqAPIKey == "" {
			logger.Warn("GROQ_API_KEY not set, text generation disabled")
			return Unavailable{Reason: "GROQ_API_KEY not set"}, nil
		}
		g, err := NewGroq(GroqConfig{
			APIKey:  cfg.GroqAPIKey,
			BaseURL: cfg.GroqBaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("Text generation ready", "provider", ProviderGroq, "model", g.name)
		return g, nil
	case ProviderGemini:
		if cfg.GoogleAPIKey == "" {
			logger.Warn("GOOGLE_API_KEY not set, text generation disabled")
			return Unavailable{Reason: "GOOGLE_API_KEY not set"}, nil
		}
		g, err := NewGenAI(ctx, GenAIConfig{
			APIKey:  cfg.GoogleAPIKey,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("Text generation ready", "provider", ProviderGemini, "model", g.model)
		return g, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
