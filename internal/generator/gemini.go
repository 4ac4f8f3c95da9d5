package generator

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// Gemini generates text with Google's Gemini models through langchaingo.
type Gemini struct {
	llm llms.Model
}

// NewGemini creates a Gemini generator.
// Parameters:
//   - ctx: used to construct the underlying client
//   - apiKey: GOOGLE_API_KEY
//   - model: e.g. gemini-2.5-pro
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{llm: llm}, nil
}

// NewGeminiFromModel wraps any langchaingo model.
func NewGeminiFromModel(llm llms.Model) *Gemini {
	return &Gemini{llm: llm}
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return clean(completion)
}
