package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fairway/app/brand"
	"fairway/app/messaging"
)

type fakeImage struct {
	url    string
	err    error
	prompt string
	size   string
}

func (f *fakeImage) GenerateImage(_ context.Context, prompt, size string) (string, error) {
	f.prompt, f.size = prompt, size
	return f.url, f.err
}

func newContent(text *fakeText, image *fakeImage) *ContentService {
	svc := NewContentService(brand.Default(), nil, nil, zap.NewNop())
	if text != nil {
		svc.text = text
	}
	if image != nil {
		svc.image = image
	}
	return svc
}

func TestGenerateBlog(t *testing.T) {
	text := &fakeText{reply: "```markdown\n# 비거리를 되찾는 법\n\n## 도입\n시니어 골퍼를 위한 이야기입니다.\n```"}
	svc := newContent(text, nil)

	draft, err := svc.GenerateBlog(context.Background(), brand.BlogRequest{Topic: "비거리"})
	require.NoError(t, err)
	assert.Equal(t, "비거리를 되찾는 법", draft.Title)
	assert.Equal(t, "## 도입\n시니어 골퍼를 위한 이야기입니다.", draft.Content)
	assert.Equal(t, "도입 시니어 골퍼를 위한 이야기입니다.", draft.Excerpt)
	assert.NotEmpty(t, draft.Slug)
	assert.Contains(t, text.prompts[0].User, "주제: 비거리")

	text.reply = "제목 줄 없이 바로 본문"
	draft, err = svc.GenerateBlog(context.Background(), brand.BlogRequest{Topic: "드라이버 고르기"})
	require.NoError(t, err)
	assert.Equal(t, "드라이버 고르기", draft.Title)

	_, err = svc.GenerateBlog(context.Background(), brand.BlogRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = newContent(nil, nil).GenerateBlog(context.Background(), brand.BlogRequest{Topic: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSummarize(t *testing.T) {
	res, err := newContent(&fakeText{reply: "짧은 요약"}, nil).Summarize(context.Background(), "제목", "본문", "")
	require.NoError(t, err)
	assert.Equal(t, SummaryResult{Summary: "짧은 요약", Method: MethodAI}, *res)

	long := "# 제목\n" + strings.Repeat("가", 200)
	res, err = newContent(nil, nil).Summarize(context.Background(), "제목", long, "")
	require.NoError(t, err)
	assert.Equal(t, MethodRule, res.Method)
	assert.Equal(t, 150, messaging.RuneLen(res.Summary))

	res, err = newContent(&fakeText{err: errors.New("timeout")}, nil).Summarize(context.Background(), "제목", "짧은 본문", "")
	require.NoError(t, err)
	assert.Equal(t, SummaryResult{Summary: "짧은 본문", Method: MethodRule}, *res)

	_, err = newContent(nil, nil).Summarize(context.Background(), "제목", " ", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCompress(t *testing.T) {
	long := "고객님께서는 정말 좋은 드라이버를 만나실 수 있습니다. 매장에 방문해 주시기 바랍니다."

	tests := []struct {
		name       string
		text       *fakeText
		target     int
		preserve   []string
		wantMethod string
		wantText   string
	}{
		{name: "ai fits", text: &fakeText{reply: "좋은 드라이버 만나보세요"}, target: 30, wantMethod: MethodAI, wantText: "좋은 드라이버 만나보세요"},
		{name: "ai too long", text: &fakeText{reply: long}, target: 30, wantMethod: MethodRule},
		{name: "ai dropped keyword", text: &fakeText{reply: "좋은 클럽"}, target: 30, preserve: []string{"드라이버"}, wantMethod: MethodRule},
		{name: "ai error", text: &fakeText{err: errors.New("boom")}, target: 30, wantMethod: MethodRule},
		{name: "no provider", target: 30, wantMethod: MethodRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newContent(tt.text, nil).Compress(context.Background(), long, "", tt.target, tt.preserve)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, res.Method)
			assert.Equal(t, tt.target, res.Target)
			assert.LessOrEqual(t, res.Length, tt.target)
			assert.Equal(t, messaging.RuneLen(long), res.Original)
			if tt.wantText != "" {
				assert.Equal(t, tt.wantText, res.Text)
			}
		})
	}

	t.Run("target from message type", func(t *testing.T) {
		res, err := newContent(nil, nil).Compress(context.Background(), "짧은 문자", "SMS", 0, nil)
		require.NoError(t, err)
		assert.Equal(t, messaging.SMSLimit, res.Target)
		assert.Equal(t, "짧은 문자", res.Text)
		assert.Equal(t, messaging.StatusOK, res.Status)
	})

	_, err := newContent(nil, nil).Compress(context.Background(), "", "SMS", 0, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestImprove(t *testing.T) {
	text := &fakeText{reply: strings.Repeat("가", 80)}
	res, err := newContent(text, nil).Improve(context.Background(), "원본", "", "")
	require.NoError(t, err)
	assert.Equal(t, 80, res.Length)
	assert.Equal(t, messaging.SMSLimit, res.Limit)
	assert.Equal(t, messaging.StatusWarning, res.Status)
	assert.Contains(t, text.prompts[0].User, "클릭률과 전환율 향상")

	_, err = newContent(text, nil).Improve(context.Background(), "", "LMS", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPsychologyMessages(t *testing.T) {
	reply := `다음은 결과입니다:
[
  {"principle": "희소성", "message": "이번 주 10명 한정 무료 시타"},
  {"principle": "사회적 증거", "message": "3,000명이 선택한 드라이버"},
  {"principle": "권위", "message": "프로가 인정한 반발력"},
  {"principle": "호감", "message": "늘 감사드립니다"}
]`
	variants, err := newContent(&fakeText{reply: reply}, nil).PsychologyMessages(context.Background(), "원본 메시지", "")
	require.NoError(t, err)
	require.Len(t, variants, 3)
	assert.Equal(t, "희소성", variants[0].Principle)
	assert.Equal(t, messaging.RuneLen("이번 주 10명 한정 무료 시타"), variants[0].Length)
	assert.Equal(t, messaging.SMSLimit, variants[0].Limit)
	assert.Equal(t, messaging.StatusOK, variants[0].Status)

	_, err = newContent(&fakeText{reply: `[{"principle": "희소성", "message": "하나뿐"}]`}, nil).PsychologyMessages(context.Background(), "원본", "")
	assert.Error(t, err)

	_, err = newContent(nil, nil).PsychologyMessages(context.Background(), "원본", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestParseVariants(t *testing.T) {
	assert.Nil(t, ParseVariants("no json here", 90))
	assert.Nil(t, ParseVariants("[not valid", 90))
	assert.Len(t, ParseVariants(`[{"message": ""}, {"message": "ok"}]`, 90), 1)
}

func TestGenerateImage(t *testing.T) {
	image := &fakeImage{url: "https://img.example.com/a.png"}
	url, err := newContent(nil, image).GenerateImage(context.Background(), "티타늄 드라이버", "")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/a.png", url)
	assert.Equal(t, "1024x1024", image.size)
	assert.Contains(t, image.prompt, "티타늄 드라이버")

	image.err = errors.New("content policy")
	_, err = newContent(nil, image).GenerateImage(context.Background(), "x", "512x512")
	assert.Error(t, err)

	_, err = newContent(nil, nil).GenerateImage(context.Background(), "x", "")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = newContent(nil, image).GenerateImage(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrValidation)
}
