package scoring

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// PassScore is the minimum total and per-category score that passes.
const PassScore = 70

// Issue severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Content is what the quality checker inspects.
type Content struct {
	Title           string   `json:"title"`
	Subtitle        string   `json:"subtitle"`
	Body            string   `json:"content_body"`
	HTML            string   `json:"content_html"`
	MetaDescription string   `json:"meta_description"`
	Keywords        []string `json:"keywords"`
	ContentType     string   `json:"content_type"`
	Tone            string   `json:"tone"`
}

// Category is the outcome of one check.
type Category struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Weight      float64  `json:"weight"`
	Score       int      `json:"score"`
	Passed      bool     `json:"passed"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// Issue is a category issue annotated with severity.
type Issue struct {
	Severity string `json:"severity"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Report is the full quality check result.
type Report struct {
	Score       int        `json:"score"`
	Passed      bool       `json:"passed"`
	Issues      []Issue    `json:"issues"`
	Suggestions []string   `json:"suggestions"`
	Categories  []Category `json:"details"`
}

type check struct {
	key    string
	label  string
	weight float64
	run    func(Content) (int, []string, []string)
}

var checks = []check{
	{"brandCompliance", "브랜드 준수", 0.25, checkBrand},
	{"toneConsistency", "톤 일관성", 0.20, checkTone},
	{"seoOptimization", "SEO", 0.20, checkSEO},
	{"readability", "가독성", 0.15, checkReadability},
	{"factAccuracy", "정확성", 0.10, checkFacts},
	{"legalCompliance", "법적 준수", 0.10, checkLegal},
}

var typeSuggestions = map[string]string{
	"blog":   "블로그 포스트는 1500-2000자가 적절합니다",
	"social": "소셜 미디어는 시각적 요소를 포함하세요",
	"email":  "이메일 제목은 호기심을 자극해야 합니다",
	"funnel": "퍼널 페이지는 명확한 CTA가 필요합니다",
}

// CheckQuality runs every category check concurrently and aggregates a weighted score.
func CheckQuality(ctx context.Context, c Content) (*Report, error) {
	cats := make([]Category, len(checks))
	g, ctx := errgroup.WithContext(ctx)
	for i, ch := range checks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			score, issues, suggestions := ch.run(c)
			if score < 0 {
				score = 0
			}
			cats[i] = Category{
				Key:         ch.key,
				Label:       ch.label,
				Weight:      ch.weight,
				Score:       score,
				Passed:      score >= PassScore,
				Issues:      issues,
				Suggestions: suggestions,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("quality check: %w", err)
	}

	r := &Report{Categories: cats, Issues: []Issue{}}
	var total float64
	var suggestions []string
	for _, cat := range cats {
		total += float64(cat.Score) * cat.Weight
		for _, msg := range cat.Issues {
			r.Issues = append(r.Issues, Issue{Severity: severity(cat.Score), Category: cat.Label, Message: msg})
		}
		suggestions = append(suggestions, cat.Suggestions...)
	}
	if s, ok := typeSuggestions[c.ContentType]; ok {
		suggestions = append(suggestions, s)
	}
	r.Score = int(math.Round(total))
	r.Passed = r.Score >= PassScore
	r.Suggestions = dedupe(suggestions, 10)
	return r, nil
}

func severity(score int) string {
	switch {
	case score < 50:
		return SeverityHigh
	case score < 70:
		return SeverityMedium
	}
	return SeverityLow
}

func dedupe(in []string, max int) []string {
	seen := make(map[string]bool, len(in))
	out := []string{}
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}

var (
	forbiddenWords = []string{"노인", "늙은", "쇠퇴", "한계", "싸구려", "저렴한", "복제품"}
	brandPower     = []string{"프리미엄", "혁신", "비거리", "파워", "장인정신", "일본산", "특허", "검증된"}
	seniorWords    = []string{"시니어", "경험", "프리미엄", "품격"}
	emotionalWords = []string{"자신감", "성취", "즐거움", "만족", "도전"}
	technicalTerms = []string{"티타늄", "탄성계수", "무게중심", "스윗스팟", "토크", "플렉스", "MOI", "COR", "반발력"}
	slangMarkers   = []string{"ㅋㅋ", "ㅎㅎ", "ㅠㅠ", "헐", "대박"}
	passiveMarkers = []string{"되다", "되어", "되는", "받다", "당하다"}
	healthClaims   = []string{"치료", "완치", "의학적", "처방", "진단"}
	exaggerations  = []string{"최고", "유일한", "1등", "독점", "완벽한"}
)

var (
	internalLink  = regexp.MustCompile(`(?i)href=["'](/[^"']*|https?://massgoo\.com[^"']*)`)
	imgTag        = regexp.MustCompile(`(?i)<img[^>]*>`)
	imgSrc        = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)`)
	sentenceBreak = regexp.MustCompile(`[.!?]+`)
	heading       = regexp.MustCompile(`#{1,3}\s`)
	whitespace    = regexp.MustCompile(`\s+`)
	number        = regexp.MustCompile(`\d+`)
	koreanDate    = regexp.MustCompile(`\d{4}년\s*\d{1,2}월\s*\d{1,2}일`)
	quoted        = regexp.MustCompile(`"([^"]+)"`)
	piiPatterns   = []*regexp.Regexp{
		regexp.MustCompile(`\d{6}-\d{7}`),
		regexp.MustCompile(`\d{3}-\d{3,4}-\d{4}`),
		regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	}
)

func checkBrand(c Content) (int, []string, []string) {
	score := 100
	var issues, suggestions []string
	text := c.Body
	if text == "" {
		text = c.Title + " " + c.Subtitle
	}
	for _, w := range forbiddenWords {
		if strings.Contains(text, w) {
			issues = append(issues, fmt.Sprintf("금지된 표현 발견: %q", w))
			score -= 15
		}
	}
	if countPresent(text, brandPower) < 2 {
		suggestions = append(suggestions, "브랜드 파워 워드를 더 많이 사용하세요")
		score -= 10
	}
	if !strings.Contains(text, "MASSGOO") && !strings.Contains(text, "마스구") && !strings.Contains(text, "마쓰구") {
		issues = append(issues, "브랜드명이 언급되지 않았습니다")
		score -= 10
	}
	if countPresent(text, seniorWords) < 1 {
		suggestions = append(suggestions, "시니어 타겟에 맞는 키워드를 추가하세요")
		score -= 5
	}
	return score, issues, suggestions
}

// DetectTone classifies text by its marker words.
func DetectTone(text string) string {
	switch {
	case strings.Contains(text, "전문") || strings.Contains(text, "기술"):
		return "professional"
	case strings.Contains(text, "친구") || strings.Contains(text, "편안"):
		return "casual"
	case strings.Contains(text, "격려") || strings.Contains(text, "응원"):
		return "encouraging"
	}
	return "neutral"
}

// baseTone grades brand voice: slang and stacked exclamations cost points.
func baseTone(text string) (int, []string, []string) {
	score := 100
	var issues, suggestions []string
	for _, m := range slangMarkers {
		if strings.Contains(text, m) {
			issues = append(issues, fmt.Sprintf("브랜드 톤에 맞지 않는 표현: %q", m))
			score -= 5
		}
	}
	if strings.Count(text, "!") > 5 {
		suggestions = append(suggestions, "느낌표 사용을 줄여 품격 있는 톤을 유지하세요")
		score -= 5
	}
	return score, issues, suggestions
}

func checkTone(c Content) (int, []string, []string) {
	text := c.Body
	if text == "" {
		text = c.Title
	}
	score, baseIssues, baseSuggestions := baseTone(text)
	var issues, suggestions []string
	if c.Tone != "" {
		if detected := DetectTone(c.Body); detected != c.Tone {
			issues = append(issues, fmt.Sprintf("톤 불일치: 기대(%s) vs 실제(%s)", c.Tone, detected))
			score -= 10
		}
	}
	if countPresent(c.Body, emotionalWords) < 2 {
		suggestions = append(suggestions, "감정적 연결을 강화하는 표현을 추가하세요")
		score -= 5
	}
	if c.ContentType == "blog" || c.ContentType == "email" {
		if countPresent(c.Body, technicalTerms) < 3 {
			suggestions = append(suggestions, "전문적인 기술 용어를 적절히 사용하세요")
			score -= 5
		}
	}
	return score, append(issues, baseIssues...), append(suggestions, baseSuggestions...)
}

func checkSEO(c Content) (int, []string, []string) {
	score := 100
	var issues, suggestions []string

	switch n := utf8.RuneCountInString(c.Title); {
	case n > 60:
		issues = append(issues, "제목이 너무 깁니다 (60자 초과)")
		score -= 10
	case n < 30:
		suggestions = append(suggestions, "더 상세한 제목을 사용하세요 (30자 이상 권장)")
		score -= 5
	}

	if c.MetaDescription != "" {
		switch n := utf8.RuneCountInString(c.MetaDescription); {
		case n > 160:
			issues = append(issues, "메타 설명이 너무 깁니다 (160자 초과)")
			score -= 10
		case n < 120:
			suggestions = append(suggestions, "메타 설명을 더 상세하게 작성하세요")
			score -= 5
		}
	} else {
		issues = append(issues, "메타 설명이 없습니다")
		score -= 15
	}

	if len(c.Keywords) > 0 && c.Body != "" {
		switch d := KeywordDensity(c.Body, c.Keywords); {
		case d < 1:
			suggestions = append(suggestions, "키워드 밀도가 너무 낮습니다 (1% 이상 권장)")
			score -= 10
		case d > 3:
			issues = append(issues, "키워드 밀도가 너무 높습니다 (3% 이하 권장)")
			score -= 10
		}
	}

	if c.ContentType == "blog" && len(internalLink.FindAllString(c.Body, -1)) == 0 {
		suggestions = append(suggestions, "내부 링크를 추가하여 사이트 내 체류시간을 늘리세요")
		score -= 5
	}

	if c.HTML != "" {
		missing := 0
		for _, img := range imgTag.FindAllString(c.HTML, -1) {
			if !strings.Contains(img, "alt=") {
				missing++
			}
		}
		if missing > 0 {
			issues = append(issues, fmt.Sprintf("%d개 이미지에 alt 텍스트가 없습니다", missing))
			score -= missing * 5
		}
	}
	return score, issues, suggestions
}

// KeywordDensity is keyword occurrences per hundred whitespace separated words.
func KeywordDensity(body string, keywords []string) float64 {
	words := len(whitespace.Split(body, -1))
	if words == 0 {
		return 0
	}
	lower := strings.ToLower(body)
	count := 0
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			count += strings.Count(lower, k)
		}
	}
	return float64(count) / float64(words) * 100
}

func checkReadability(c Content) (int, []string, []string) {
	if c.Body == "" {
		return 100, nil, nil
	}
	score := 100
	var issues, suggestions []string

	sentences := sentenceBreak.Split(c.Body, -1)
	total := 0
	for _, s := range sentences {
		total += utf8.RuneCountInString(s)
	}
	if float64(total)/float64(len(sentences)) > 100 {
		issues = append(issues, "문장이 너무 깁니다")
		score -= 15
	}

	long := 0
	for _, p := range strings.Split(c.Body, "\n\n") {
		if utf8.RuneCountInString(p) > 500 {
			long++
		}
	}
	if long > 0 {
		suggestions = append(suggestions, fmt.Sprintf("%d개 단락이 너무 깁니다 (500자 이하 권장)", long))
		score -= long * 5
	}

	if c.ContentType == "blog" && utf8.RuneCountInString(c.Body) > 1000 {
		if len(heading.FindAllString(c.Body, -1)) < 3 {
			suggestions = append(suggestions, "더 많은 부제목을 사용하여 구조를 개선하세요")
			score -= 10
		}
	}

	complexWords := 0
	for _, w := range whitespace.Split(c.Body, -1) {
		if utf8.RuneCountInString(w) > 10 {
			complexWords++
		}
	}
	if complexWords > 10 {
		suggestions = append(suggestions, "더 쉬운 단어를 사용하여 가독성을 높이세요")
		score -= 10
	}

	passive := 0
	for _, s := range sentences {
		if containsAny(s, passiveMarkers) {
			passive++
		}
	}
	if float64(passive)/float64(len(sentences))*100 > 30 {
		suggestions = append(suggestions, "능동태를 더 많이 사용하세요")
		score -= 5
	}
	return score, issues, suggestions
}

func checkFacts(c Content) (int, []string, []string) {
	score := 100
	var issues, suggestions []string
	body := c.Body

	sourced := strings.Contains(body, "출처") || strings.Contains(body, "*")
	for _, m := range number.FindAllString(body, -1) {
		v, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			// too long for int64, certainly above the threshold
			v = math.MaxInt64
		}
		if v > 1000000 && !sourced {
			suggestions = append(suggestions, fmt.Sprintf("큰 숫자(%s)에 대한 출처를 명시하세요", m))
			score -= 5
		}
	}

	for _, d := range koreanDate.FindAllString(body, -1) {
		if !validKoreanDate(d) {
			issues = append(issues, fmt.Sprintf("유효하지 않은 날짜: %s", d))
			score -= 10
		}
	}

	attributed := strings.Contains(body, "말했다") || strings.Contains(body, "전했다")
	for range quoted.FindAllString(body, -1) {
		if !attributed {
			suggestions = append(suggestions, "인용문에 출처를 명시하세요")
			score -= 5
		}
	}
	return score, issues, suggestions
}

func validKoreanDate(s string) bool {
	parts := number.FindAllString(s, -1)
	if len(parts) != 3 {
		return false
	}
	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

func checkLegal(c Content) (int, []string, []string) {
	score := 100
	var issues, suggestions []string
	body := c.Body

	for _, claim := range healthClaims {
		if strings.Contains(body, claim) {
			issues = append(issues, fmt.Sprintf("의료 관련 주장 발견: %q - 법적 검토 필요", claim))
			score -= 20
		}
	}

	if countPresent(body, exaggerations) > 2 {
		issues = append(issues, "과장 광고 표현이 너무 많습니다")
		score -= 15
	}

	if c.HTML != "" && len(ExternalImages(c.HTML)) > 0 {
		suggestions = append(suggestions, "외부 이미지 사용 시 저작권을 확인하세요")
		score -= 10
	}

	for _, p := range piiPatterns {
		if p.MatchString(body) {
			issues = append(issues, "개인정보가 포함되어 있을 수 있습니다")
			score -= 20
		}
	}

	if c.ContentType == "funnel" || c.ContentType == "email" {
		if !strings.Contains(body, "면책") && !strings.Contains(body, "약관") {
			suggestions = append(suggestions, "면책 조항 또는 이용약관 링크를 추가하세요")
			score -= 5
		}
	}
	return score, issues, suggestions
}

// ExternalImages lists image sources hosted outside the brand's own site.
func ExternalImages(html string) []string {
	var out []string
	for _, m := range imgSrc.FindAllStringSubmatch(html, -1) {
		src := m[1]
		if strings.HasPrefix(src, "/") || strings.Contains(src, "massgoo.com") {
			continue
		}
		out = append(out, src)
	}
	return out
}
