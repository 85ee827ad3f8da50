package messaging

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	multiSpace   = regexp.MustCompile(`[ \t]+`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
	spaceNewline = regexp.MustCompile(` *\n *`)
)

// Phrase rewrites applied in order, longest first.
var abbreviations = []struct{ long, short string }{
	{"문의해 주시기 바랍니다", "문의주세요"},
	{"방문해 주시기 바랍니다", "방문주세요"},
	{"확인해 주시기 바랍니다", "확인주세요"},
	{"하실 수 있습니다", "가능합니다"},
	{"할 수 있습니다", "가능합니다"},
	{"진행하고 있습니다", "진행중입니다"},
	{"말씀드리겠습니다", "드립니다"},
	{"안내해 드립니다", "안내드립니다"},
	{"감사드립니다", "감사합니다"},
	{"고객님께서는", "고객님은"},
	{"그리고 ", ""},
	{"또한 ", ""},
	{"드라이버", "DR"},
}

var fillers = []string{"정말 ", "매우 ", "아주 ", "너무 ", "진짜 ", "특히 ", "바로 "}

// CompressResult describes a rule based compression.
type CompressResult struct {
	Text      string   `json:"compressed_text"`
	Original  int      `json:"original_length"`
	Length    int      `json:"compressed_length"`
	Steps     []string `json:"steps"`
	Truncated bool     `json:"truncated"`
}

// Compress shortens text toward target characters. Rules are applied one at a
// time and compression stops as soon as the text fits; truncation is the last resort.
func Compress(text string, target int, preserve []string) CompressResult {
	res := CompressResult{Text: text, Original: RuneLen(text)}
	if target <= 0 || res.Original <= target {
		res.Length = res.Original
		return res
	}

	steps := []struct {
		name string
		fn   func(string) string
	}{
		{"whitespace", collapseWhitespace},
		{"abbreviate", func(s string) string { return abbreviate(s, preserve) }},
		{"fillers", func(s string) string { return dropFillers(s, preserve) }},
		{"emoji", stripEmoji},
	}
	for _, step := range steps {
		next := step.fn(res.Text)
		if next != res.Text {
			res.Text = next
			res.Steps = append(res.Steps, step.name)
		}
		if RuneLen(res.Text) <= target {
			res.Length = RuneLen(res.Text)
			return res
		}
	}

	res.Text = truncatePreserving(res.Text, target, preserve)
	res.Truncated = true
	res.Steps = append(res.Steps, "truncate")
	res.Length = RuneLen(res.Text)
	return res
}

// Truncate cuts s to at most n characters, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return strings.TrimRightFunc(string(r[:n-1]), unicode.IsSpace) + "…"
}

// truncatePreserving truncates like Truncate but never splits a preserved
// keyword. A keyword crossing the cut is moved to the end of the result when
// it fits and is dropped whole otherwise.
func truncatePreserving(s string, n int, preserve []string) string {
	r := []rune(s)
	if len(r) <= n || n <= 1 {
		return Truncate(s, n)
	}
	spans := keywordSpans(r, preserve)
	cut := safeCut(n-1, spans)
	for _, sp := range spans {
		if sp.start >= n-1 || sp.end <= n-1 {
			continue
		}
		kw := sp.end - sp.start
		if kw+1 > n {
			break
		}
		head := safeCut(n-1-kw, spans)
		prefix := strings.TrimRightFunc(string(r[:head]), unicode.IsSpace)
		return prefix + "…" + string(r[sp.start:sp.end])
	}
	return strings.TrimRightFunc(string(r[:cut]), unicode.IsSpace) + "…"
}

type span struct{ start, end int }

// keywordSpans returns the rune ranges of every preserved keyword in r,
// ordered by position.
func keywordSpans(r []rune, preserve []string) []span {
	var spans []span
	for _, kw := range preserve {
		k := []rune(strings.TrimSpace(kw))
		if len(k) == 0 {
			continue
		}
		for i := 0; i+len(k) <= len(r); i++ {
			if string(r[i:i+len(k)]) == string(k) {
				spans = append(spans, span{i, i + len(k)})
			}
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}

// safeCut moves cut back to the start of any keyword it would split.
func safeCut(cut int, spans []span) int {
	for _, sp := range spans {
		if sp.start < cut && cut < sp.end {
			cut = sp.start
		}
	}
	return cut
}

func collapseWhitespace(s string) string {
	s = multiSpace.ReplaceAllString(s, " ")
	s = spaceNewline.ReplaceAllString(s, "\n")
	s = multiNewline.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func abbreviate(s string, preserve []string) string {
	for _, a := range abbreviations {
		if protected(a.long, preserve) {
			continue
		}
		s = strings.ReplaceAll(s, a.long, a.short)
	}
	return s
}

func dropFillers(s string, preserve []string) string {
	for _, f := range fillers {
		if protected(f, preserve) {
			continue
		}
		s = strings.ReplaceAll(s, f, "")
	}
	return s
}

// protected reports whether a rewrite of phrase would touch a preserved keyword.
func protected(phrase string, preserve []string) bool {
	p := strings.TrimSpace(phrase)
	for _, kw := range preserve {
		kw = strings.TrimSpace(kw)
		if kw != "" && (strings.Contains(p, kw) || strings.Contains(kw, p)) {
			return true
		}
	}
	return false
}

func stripEmoji(s string) string {
	return strings.Map(func(r rune) rune {
		if isEmoji(r) {
			return -1
		}
		return r
	}, s)
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r == 0xFE0F || r == 0x200D:
		return true
	}
	return false
}
