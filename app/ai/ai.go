// Package ai wraps the text and image generation providers used for copywriting.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned when no provider credentials are available.
var ErrNotConfigured = errors.New("ai provider not configured")

// Providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Prompt is one system + user exchange.
type Prompt struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// TextGenerator produces text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// ImageGenerator produces an image for a prompt and returns its URL.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, size string) (string, error)
}

// Settings selects and configures providers.
type Settings struct {
	Provider    string
	OpenAIKey   string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string
}

// NewTextGenerator returns the configured text provider. An explicit provider
// must have its key; otherwise OpenAI is preferred over Gemini.
func NewTextGenerator(ctx context.Context, s Settings) (TextGenerator, error) {
	switch strings.ToLower(s.Provider) {
	case ProviderOpenAI:
		if s.OpenAIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is empty", ErrNotConfigured)
		}
		return NewOpenAI(s.OpenAIKey, s.OpenAIModel), nil
	case ProviderGemini:
		if s.GeminiKey == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY is empty", ErrNotConfigured)
		}
		return NewGemini(ctx, s.GeminiKey, s.GeminiModel)
	case "":
	default:
		return nil, fmt.Errorf("unknown ai provider %q", s.Provider)
	}
	if s.OpenAIKey != "" {
		return NewOpenAI(s.OpenAIKey, s.OpenAIModel), nil
	}
	if s.GeminiKey != "" {
		return NewGemini(ctx, s.GeminiKey, s.GeminiModel)
	}
	return nil, ErrNotConfigured
}

// NewImageGenerator returns the OpenAI image client; only OpenAI serves images.
func NewImageGenerator(s Settings) (ImageGenerator, error) {
	if s.OpenAIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is empty", ErrNotConfigured)
	}
	return NewOpenAI(s.OpenAIKey, s.OpenAIModel), nil
}
