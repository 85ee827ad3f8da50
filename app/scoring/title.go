package scoring

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Title grades.
const (
	LabelExcellent = "우수"
	LabelGood      = "양호"
	LabelPoor      = "개선 필요"
)

// DefaultKeywords are used when a title is scored without explicit keywords.
var DefaultKeywords = []string{"드라이버", "비거리", "골프", "고반발", "피팅"}

var (
	hasDigit   = regexp.MustCompile(`\d`)
	bracketTag = regexp.MustCompile(`[\[【(].+?[\]】)]`)
	powerWords = []string{"비밀", "놀라운", "필수", "최신", "완벽", "무료", "특별", "한정", "프리미엄", "혁신", "증명"}
	brandNames = []string{"MASSGOO", "마쓰구", "마스구"}
)

// TitleRule is one scored criterion.
type TitleRule struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Max    int    `json:"max"`
}

// TitleScore is the result of scoring a blog or message title.
type TitleScore struct {
	Title       string      `json:"title"`
	Score       int         `json:"score"`
	Label       string      `json:"label"`
	Length      int         `json:"length"`
	Rules       []TitleRule `json:"rules"`
	Suggestions []string    `json:"suggestions"`
}

// ScoreTitle applies the title rule set. The maximum is 100.
func ScoreTitle(title string, keywords []string) TitleScore {
	title = strings.TrimSpace(title)
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	res := TitleScore{Title: title, Length: utf8.RuneCountInString(title)}

	add := func(name string, points, max int, suggestion string) {
		res.Rules = append(res.Rules, TitleRule{Name: name, Points: points, Max: max})
		res.Score += points
		if points < max && suggestion != "" {
			res.Suggestions = append(res.Suggestions, suggestion)
		}
	}

	switch n := res.Length; {
	case n >= 15 && n <= 40:
		add("length", 25, 25, "")
	case n >= 10 && n <= 50:
		add("length", 15, 25, "제목은 15-40자가 가장 효과적입니다")
	default:
		add("length", 5, 25, "제목 길이를 15-40자로 조정하세요")
	}

	if hasDigit.MatchString(title) {
		add("number", 15, 15, "")
	} else {
		add("number", 0, 15, "구체적인 숫자를 넣으면 클릭률이 높아집니다 (예: 20m 비거리 증가)")
	}

	lower := strings.ToLower(title)
	kw := 0
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" && strings.Contains(lower, strings.ToLower(k)) {
			kw = 20
			break
		}
	}
	add("keyword", kw, 20, "핵심 키워드를 제목에 포함하세요")

	add("brand", pointsIf(containsAny(title, brandNames), 10), 10, "브랜드명(MASSGOO)을 넣어 신뢰도를 높이세요")
	add("hook", pointsIf(strings.ContainsAny(title, "?!？！"), 10), 10, "질문이나 감탄으로 호기심을 유발하세요")
	add("power_word", pointsIf(containsAny(title, powerWords), 10), 10, "'비밀', '놀라운', '한정' 같은 감성 단어를 활용하세요")
	add("tag", pointsIf(bracketTag.MatchString(title), 10), 10, "[후기], [이벤트] 같은 말머리를 붙여보세요")

	res.Label = TitleLabel(res.Score)
	return res
}

// TitleLabel grades a title score.
func TitleLabel(score int) string {
	switch {
	case score >= 80:
		return LabelExcellent
	case score >= 60:
		return LabelGood
	}
	return LabelPoor
}

func pointsIf(ok bool, points int) int {
	if ok {
		return points
	}
	return 0
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func countPresent(s string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(s, w) {
			n++
		}
	}
	return n
}
