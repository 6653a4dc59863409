package ai

import (
	"context"
	"errors"
	"fmt"

	"contentos/internal/modules"

	"google.golang.org/genai"
)

// ErrUnsupportedProvider is returned when a user's settings name a provider
// this build has no client for.
var ErrUnsupportedProvider = errors.New("unsupported AI provider")

// TextClient is the single seam the generation processors call through. One
// implementation per provider; the deterministic mock lives in the generator
// functions, not behind this interface.
type TextClient interface {
	// GenerateText sends one prompt and returns the raw model text.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// NewTextClient builds a provider client from resolved credentials.
func NewTextClient(ctx context.Context, cfg modules.AIConfig) (TextClient, error) {
	switch cfg.Provider {
	case "gemini", "":
		return newGeminiClient(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

type geminiClient struct {
	client *genai.Client
	model  string
}

func newGeminiClient(ctx context.Context, apiKey, model string) (*geminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = modules.DefaultModel("gemini")
	}
	return &geminiClient{client: client, model: model}, nil
}

func (g *geminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}
