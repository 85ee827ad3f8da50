package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini generates text through Google's Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini text client.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate implements TextGenerator.
func (g *Gemini) Generate(ctx context.Context, p Prompt) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if p.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}
	if p.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(p.Temperature))
	}
	if p.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(p.MaxTokens)
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(p.User), cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", errors.New("no content in response message")
	}
	return text, nil
}
