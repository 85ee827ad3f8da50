package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultOpenAIURL   = "https://api.openai.com/v1"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultImageModel  = "dall-e-3"
)

// ChatMessage represents a single message in the chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequestBody represents the request payload for the chat completions API.
type ChatRequestBody struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type imageRequestBody struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

// OpenAI calls the chat completions and image generation endpoints.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAI creates a client for model, defaulting to gpt-4o-mini.
func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultOpenAIURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// WithBaseURL points the client at another endpoint, e.g. a test server.
func (o *OpenAI) WithBaseURL(u string) *OpenAI {
	o.baseURL = strings.TrimRight(u, "/")
	return o
}

// Generate sends the prompt to the chat completions API and returns the reply.
func (o *OpenAI) Generate(ctx context.Context, p Prompt) (string, error) {
	var messages []ChatMessage
	if p.System != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: p.System})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: p.User})

	body, err := o.post(ctx, "/chat/completions", ChatRequestBody{
		Model:       o.model,
		Messages:    messages,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	if gjson.GetBytes(body, "choices.#").Int() == 0 {
		return "", errors.New("no completions returned")
	}
	content := strings.TrimSpace(gjson.GetBytes(body, "choices.0.message.content").String())
	if content == "" {
		return "", errors.New("no content in response message")
	}
	return content, nil
}

// GenerateImage creates one image and returns its URL.
func (o *OpenAI) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	if size == "" {
		size = "1024x1024"
	}
	body, err := o.post(ctx, "/images/generations", imageRequestBody{
		Model:  defaultImageModel,
		Prompt: prompt,
		N:      1,
		Size:   size,
	})
	if err != nil {
		return "", err
	}
	u := gjson.GetBytes(body, "data.0.url").String()
	if u == "" {
		return "", errors.New("no image returned")
	}
	return u, nil
}

func (o *OpenAI) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	reqBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from OpenAI API: %d; response: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
