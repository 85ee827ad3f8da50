package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreTitle(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		keywords  []string
		wantScore int
		wantLabel string
	}{
		{"all rules hit", "[후기] MASSGOO 드라이버로 비거리 20m 늘린 비밀!", nil, 100, LabelExcellent},
		{"short keyword only", "골프", nil, 25, LabelPoor},
		{"custom keywords", "가을 라운딩 준비 체크리스트 7가지 정리", []string{"라운딩"}, 60, LabelGood},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreTitle(tt.title, tt.keywords)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.Len(t, got.Rules, 7)
		})
	}
}

func TestScoreTitleSuggestions(t *testing.T) {
	got := ScoreTitle("골프", nil)
	assert.Len(t, got.Suggestions, 6)
	assert.Equal(t, 2, got.Length)
}

func TestTitleLabel(t *testing.T) {
	assert.Equal(t, LabelExcellent, TitleLabel(80))
	assert.Equal(t, LabelGood, TitleLabel(79))
	assert.Equal(t, LabelGood, TitleLabel(60))
	assert.Equal(t, LabelPoor, TitleLabel(59))
}

func TestCheckQualityEmpty(t *testing.T) {
	r, err := CheckQuality(context.Background(), Content{})
	require.NoError(t, err)

	assert.Equal(t, 89, r.Score)
	assert.True(t, r.Passed)
	require.Len(t, r.Categories, 6)
	assert.Equal(t, 75, r.Categories[0].Score)
	assert.Equal(t, 95, r.Categories[1].Score)
	assert.Equal(t, 80, r.Categories[2].Score)
	assert.Equal(t, 100, r.Categories[3].Score)

	require.Len(t, r.Issues, 2)
	assert.Equal(t, Issue{Severity: SeverityLow, Category: "브랜드 준수", Message: "브랜드명이 언급되지 않았습니다"}, r.Issues[0])
	assert.Equal(t, "SEO", r.Issues[1].Category)

	assert.Equal(t, []string{
		"브랜드 파워 워드를 더 많이 사용하세요",
		"시니어 타겟에 맞는 키워드를 추가하세요",
		"감정적 연결을 강화하는 표현을 추가하세요",
		"더 상세한 제목을 사용하세요 (30자 이상 권장)",
	}, r.Suggestions)
}

func TestCheckQualityViolations(t *testing.T) {
	r, err := CheckQuality(context.Background(), Content{
		Title:       "이벤트",
		Body:        "노인도 치료 가능한 최고의 유일한 1등 드라이버. 문의 010-1234-5678",
		ContentType: "email",
	})
	require.NoError(t, err)
	// Weighted total clears the bar even though legal compliance fails on its own.
	assert.Equal(t, 78, r.Score)
	assert.True(t, r.Passed)

	byKey := map[string]Category{}
	for _, c := range r.Categories {
		byKey[c.Key] = c
	}
	assert.Equal(t, 60, byKey["brandCompliance"].Score)
	assert.Equal(t, 40, byKey["legalCompliance"].Score)
	assert.False(t, byKey["legalCompliance"].Passed)

	var legal []Issue
	for _, is := range r.Issues {
		if is.Category == "법적 준수" {
			legal = append(legal, is)
		}
	}
	require.Len(t, legal, 3)
	for _, is := range legal {
		assert.Equal(t, SeverityHigh, is.Severity)
	}

	assert.Contains(t, r.Suggestions, "이메일 제목은 호기심을 자극해야 합니다")
	assert.LessOrEqual(t, len(r.Suggestions), 10)
	seen := map[string]bool{}
	for _, s := range r.Suggestions {
		assert.False(t, seen[s], "duplicate suggestion %q", s)
		seen[s] = true
	}
}

func TestCheckQualityCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CheckQuality(ctx, Content{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckFacts(t *testing.T) {
	score, issues, suggestions := checkFacts(Content{Body: `2024년 13월 5일 판매량 25000000개 "최고의 선택"`})
	assert.Equal(t, 80, score)
	assert.Equal(t, []string{"유효하지 않은 날짜: 2024년 13월 5일"}, issues)
	assert.Len(t, suggestions, 2)

	score, _, _ = checkFacts(Content{Body: `판매량 25000000개* "좋다"고 말했다`})
	assert.Equal(t, 100, score)
}

func TestCheckReadabilityPassive(t *testing.T) {
	score, _, suggestions := checkReadability(Content{Body: "성능이 개선되어 좋다. 만족도가 높다."})
	assert.Equal(t, 95, score)
	assert.Equal(t, []string{"능동태를 더 많이 사용하세요"}, suggestions)
}

func TestImages(t *testing.T) {
	html := `<img src="/a.png"><img src="https://cdn.x.com/b.png" alt="b"><img src='https://massgoo.com/c.png'>`
	assert.Equal(t, []string{"https://cdn.x.com/b.png"}, ExternalImages(html))

	_, issues, _ := checkSEO(Content{Title: "MASSGOO 드라이버 비거리 증가의 비밀을 알려드립니다 지금 바로 확인", MetaDescription: "x", HTML: html})
	assert.Contains(t, issues, "2개 이미지에 alt 텍스트가 없습니다")
}

func TestKeywordDensity(t *testing.T) {
	assert.InDelta(t, 50.0, KeywordDensity("드라이버 비거리 드라이버 테스트", []string{"드라이버"}), 0.001)
	assert.InDelta(t, 0.0, KeywordDensity("골프 연습", []string{"피팅"}), 0.001)
}

func TestDetectTone(t *testing.T) {
	assert.Equal(t, "professional", DetectTone("전문 피터가 제안하는"))
	assert.Equal(t, "casual", DetectTone("친구와 편안하게"))
	assert.Equal(t, "encouraging", DetectTone("여러분을 응원합니다"))
	assert.Equal(t, "neutral", DetectTone("드라이버"))
}
