// Package generator produces story text from a prompt using a hosted model.
// Calls are synchronous and are neither retried nor given an extra timeout;
// the caller's context is the only bound.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mindweaver-server/internal/config"
)

// ErrEmptyResponse means the model answered with no usable text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Default model per provider, used when ai.model is empty.
const (
	DefaultGeminiModel    = "gemini-2.5-pro"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-7-sonnet-latest"
)

// New builds the generator selected by cfg.Provider.
// Parameters:
//   - ctx: used while constructing clients that dial eagerly
//   - cfg: provider, model and credentials
//
// Returns:
//   - Generator: ready to use
//   - error: unknown provider or client construction error
func New(ctx context.Context, cfg config.AIConfig) (Generator, error) {
	model := cfg.Model
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini", "google":
		if model == "" {
			model = DefaultGeminiModel
		}
		return NewGemini(ctx, cfg.GeminiAPIKey, model)
	case "openai":
		if model == "" || strings.HasPrefix(model, "gemini") {
			model = DefaultOpenAIModel
		}
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, model), nil
	case "anthropic", "claude":
		if model == "" || strings.HasPrefix(model, "gemini") {
			model = DefaultAnthropicModel
		}
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, model, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

// clean trims model output and rejects blank answers.
func clean(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
