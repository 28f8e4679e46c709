package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ashureev/leadrelay/internal/domain"
	"google.golang.org/genai"
)

const (
	// ProviderGemini selects Google's Gemini API.
	ProviderGemini = "gemini"

	defaultGeminiModel = "gemini-2.0-flash"
)

// GenAIConfig holds configuration for the Gemini provider.
type GenAIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GenAI implements Generator with the Google GenAI SDK.
type GenAI struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGenAI creates a Gemini-backed Generator.
func NewGenAI(ctx context.Context, cfg GenAIConfig) (*GenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAI{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// Generate implements Generator.
func (g *GenAI) Generate(ctx context.Context, p Prompt) (string, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	contents, system := geminiContents(p)
	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(p.Temperature)),
		SystemInstruction: system,
	}
	if p.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// geminiContents maps a prompt onto Gemini contents. Gemini needs at least one
// content entry, so a system-only prompt is sent as the user content.
func geminiContents(p Prompt) ([]*genai.Content, *genai.Content) {
	if len(p.Turns) == 0 {
		return []*genai.Content{genai.NewContentFromText(p.System, genai.RoleUser)}, nil
	}

	contents := make([]*genai.Content, 0, len(p.Turns))
	for _, t := range p.Turns {
		role := genai.Role(genai.RoleUser)
		if t.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}

	var system *genai.Content
	if p.System != "" {
		system = genai.NewContentFromText(p.System, genai.RoleUser)
	}
	return contents, system
}
