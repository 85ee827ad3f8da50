package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"fairway/app/ai"
	"fairway/app/brand"
	"fairway/app/messaging"
	"fairway/app/metrics"
)

const (
	summaryFallbackLength = 150
	defaultImageSize      = "1024x1024"
	psychologyVariants    = 3
)

// BlogDraft is an AI written blog post.
type BlogDraft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt"`
	Slug    string `json:"slug"`
}

// SummaryResult is a post excerpt and how it was produced.
type SummaryResult struct {
	Summary string `json:"summary"`
	Method  string `json:"method"`
}

// CompressResponse is a compressed message with its length against the limit.
type CompressResponse struct {
	messaging.CompressResult
	Method string                 `json:"method"`
	Target int                    `json:"target_length"`
	Status messaging.LengthStatus `json:"status"`
}

// ImproveResult is a rewritten message measured against its type.
type ImproveResult struct {
	Text   string                 `json:"improved_text"`
	Length int                    `json:"length"`
	Limit  int                    `json:"limit"`
	Status messaging.LengthStatus `json:"status"`
}

// PsychologyVariant is one rewrite built on a persuasion principle.
type PsychologyVariant struct {
	Principle string                 `json:"principle"`
	Message   string                 `json:"message"`
	Length    int                    `json:"length"`
	Limit     int                    `json:"limit"`
	Status    messaging.LengthStatus `json:"status"`
}

// Generation methods.
const (
	MethodAI   = "ai"
	MethodRule = "rule"
)

// ContentService drafts and rewrites marketing copy with the AI providers.
// Either generator may be nil when its provider is not configured.
type ContentService struct {
	brand *brand.Data
	text  ai.TextGenerator
	image ai.ImageGenerator
	log   *zap.Logger
}

// NewContentService creates a new ContentService
func NewContentService(b *brand.Data, text ai.TextGenerator, image ai.ImageGenerator, log *zap.Logger) *ContentService {
	return &ContentService{brand: b, text: text, image: image, log: log}
}

func (s *ContentService) generate(ctx context.Context, kind string, p ai.Prompt) (string, error) {
	if s.text == nil {
		return "", notConfigured("AI API 키가 설정되지 않았습니다.")
	}
	out, err := s.text.Generate(ctx, p)
	metrics.RecordAI(kind, err)
	if err != nil {
		return "", fmt.Errorf("%s generation failed: %w", kind, err)
	}
	return strings.TrimSpace(stripFences(out)), nil
}

// GenerateBlog writes a blog draft for req.
func (s *ContentService) GenerateBlog(ctx context.Context, req brand.BlogRequest) (*BlogDraft, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, invalid("제목은 필수입니다.")
	}
	out, err := s.generate(ctx, "blog", s.brand.BlogPrompt(req))
	if err != nil {
		return nil, err
	}

	title, body := splitHeading(out)
	if title == "" {
		title = strings.TrimSpace(req.Topic)
	}
	return &BlogDraft{
		Title:   title,
		Content: body,
		Excerpt: plainExcerpt(body, summaryFallbackLength),
		Slug:    BaseSlug(s.brand.Romanize(title), time.Now().UnixMilli()),
	}, nil
}

// Summarize returns a short excerpt of a post. Without a working text
// provider the first sentences of the content are used.
func (s *ContentService) Summarize(ctx context.Context, title, content, custom string) (*SummaryResult, error) {
	if strings.TrimSpace(content) == "" && custom == "" {
		return nil, invalid("요약할 내용이 없습니다.")
	}
	out, err := s.generate(ctx, "summary", s.brand.SummaryPrompt(title, content, custom))
	if err == nil && out != "" {
		return &SummaryResult{Summary: out, Method: MethodAI}, nil
	}
	if err != nil {
		s.log.Warn("summary generation failed, using excerpt", zap.Error(err))
	}
	return &SummaryResult{Summary: plainExcerpt(content, summaryFallbackLength), Method: MethodRule}, nil
}

// Compress shortens text to target characters, or to the limit of
// messageType when target is zero. The AI result is used only when it fits;
// otherwise the rule based compressor runs.
func (s *ContentService) Compress(ctx context.Context, text, messageType string, target int, preserve []string) (*CompressResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("압축할 텍스트가 없습니다.")
	}
	if target <= 0 {
		target = messaging.Limit(messageType)
	}
	res := &CompressResponse{Target: target}

	if messaging.RuneLen(text) > target && s.text != nil {
		out, err := s.generate(ctx, "compress", s.brand.CompressPrompt(text, target, preserve))
		switch {
		case err != nil:
			s.log.Warn("ai compression failed, using rules", zap.Error(err))
		case out != "" && messaging.RuneLen(out) <= target && keepsAll(out, preserve):
			res.CompressResult = messaging.CompressResult{
				Text:     out,
				Original: messaging.RuneLen(text),
				Length:   messaging.RuneLen(out),
				Steps:    []string{MethodAI},
			}
			res.Method = MethodAI
			res.Status = messaging.StatusOf(res.Length, target)
			return res, nil
		default:
			s.log.Debug("ai compression did not fit", zap.Int("length", messaging.RuneLen(out)), zap.Int("target", target))
		}
	}

	res.CompressResult = messaging.Compress(text, target, preserve)
	res.Method = MethodRule
	res.Status = messaging.StatusOf(res.Length, target)
	return res, nil
}

// Improve rewrites a message toward goal.
func (s *ContentService) Improve(ctx context.Context, text, messageType, goal string) (*ImproveResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("개선할 텍스트가 없습니다.")
	}
	if messageType == "" {
		messageType = "SMS"
	}
	out, err := s.generate(ctx, "improve", s.brand.ImprovePrompt(text, messageType, goal))
	if err != nil {
		return nil, err
	}
	limit := messaging.Limit(messageType)
	return &ImproveResult{
		Text:   out,
		Length: messaging.RuneLen(out),
		Limit:  limit,
		Status: messaging.StatusOf(messaging.RuneLen(out), limit),
	}, nil
}

// PsychologyMessages returns three rewrites of text, each applying a
// different persuasion principle, with their lengths.
func (s *ContentService) PsychologyMessages(ctx context.Context, text, messageType string) ([]PsychologyVariant, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("원본 메시지가 없습니다.")
	}
	if messageType == "" {
		messageType = "SMS"
	}
	limit := messaging.Limit(messageType)
	out, err := s.generate(ctx, "psychology", s.brand.PsychologyPrompt(text, messageType, limit))
	if err != nil {
		return nil, err
	}

	variants := ParseVariants(out, limit)
	if len(variants) < psychologyVariants {
		return nil, fmt.Errorf("expected %d variants, got %d", psychologyVariants, len(variants))
	}
	return variants[:psychologyVariants], nil
}

// ParseVariants reads a JSON array of {"principle","message"} objects from
// model output, ignoring any text around the array.
func ParseVariants(out string, limit int) []PsychologyVariant {
	start, end := strings.Index(out, "["), strings.LastIndex(out, "]")
	if start < 0 || end <= start {
		return nil
	}
	raw := out[start : end+1]
	if !gjson.Valid(raw) {
		return nil
	}

	var variants []PsychologyVariant
	for _, item := range gjson.Parse(raw).Array() {
		msg := strings.TrimSpace(item.Get("message").String())
		if msg == "" {
			continue
		}
		n := messaging.RuneLen(msg)
		variants = append(variants, PsychologyVariant{
			Principle: item.Get("principle").String(),
			Message:   msg,
			Length:    n,
			Limit:     limit,
			Status:    messaging.StatusOf(n, limit),
		})
	}
	return variants
}

// GenerateImage renders a product image for topic and returns its URL.
func (s *ContentService) GenerateImage(ctx context.Context, topic, size string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", invalid("이미지 주제가 필요합니다.")
	}
	if s.image == nil {
		return "", notConfigured("OPENAI_API_KEY가 설정되지 않았습니다.")
	}
	if size == "" {
		size = defaultImageSize
	}
	url, err := s.image.GenerateImage(ctx, s.brand.ImagePrompt(topic), size)
	metrics.RecordAI("image", err)
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}
	return url, nil
}

// splitHeading separates a leading "# Title" line from the body.
func splitHeading(md string) (string, string) {
	first, rest, _ := strings.Cut(md, "\n")
	first = strings.TrimSpace(first)
	if !strings.HasPrefix(first, "# ") {
		return "", md
	}
	return strings.TrimSpace(strings.TrimPrefix(first, "# ")), strings.TrimSpace(rest)
}

// plainExcerpt drops markdown markers and cuts to n characters.
func plainExcerpt(s string, n int) string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(l), "#>*- "))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return messaging.Truncate(strings.Join(lines, " "), n)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}

func keepsAll(s string, words []string) bool {
	for _, w := range words {
		if w != "" && !strings.Contains(s, w) {
			return false
		}
	}
	return true
}
