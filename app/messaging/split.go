package messaging

import (
	"fmt"
	"strings"
)

type piece struct {
	text string
	sep  string
}

// Split breaks text into parts of at most limit characters. Paragraph
// boundaries are preferred, then sentence boundaries, then a hard cut.
// With numbered set every part is prefixed "(i/n) " within the limit.
func Split(text string, limit int, numbered bool) []string {
	text = strings.TrimSpace(text)
	if text == "" || limit <= 0 {
		return nil
	}
	if RuneLen(text) <= limit {
		return []string{text}
	}
	if !numbered {
		return pack(pieces(text, limit), limit)
	}

	n := (RuneLen(text) + limit - 1) / limit
	var parts []string
	for i := 0; i < 5; i++ {
		width := RuneLen(prefix(n, n))
		if width >= limit {
			return pack(pieces(text, limit), limit)
		}
		parts = pack(pieces(text, limit-width), limit-width)
		if len(parts) <= n {
			break
		}
		n = len(parts)
	}
	for i := range parts {
		parts[i] = prefix(i+1, len(parts)) + parts[i]
	}
	return parts
}

func prefix(i, n int) string {
	return fmt.Sprintf("(%d/%d) ", i, n)
}

func pack(ps []piece, limit int) []string {
	var out []string
	var cur string
	for _, p := range ps {
		if cur == "" {
			cur = p.text
			continue
		}
		candidate := cur + p.sep + p.text
		if RuneLen(candidate) <= limit {
			cur = candidate
			continue
		}
		out = append(out, cur)
		cur = p.text
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func pieces(text string, limit int) []piece {
	var out []piece
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if RuneLen(para) <= limit {
			out = append(out, piece{para, "\n\n"})
			continue
		}
		for j, s := range sentences(para) {
			sep := " "
			if j == 0 {
				sep = "\n\n"
			}
			if RuneLen(s) <= limit {
				out = append(out, piece{s, sep})
				continue
			}
			for k, c := range hardCut(s, limit) {
				csep := ""
				if k == 0 {
					csep = sep
				}
				out = append(out, piece{c, csep})
			}
		}
	}
	return out
}

// sentences splits after ., !, ?, 。 or a newline.
func sentences(para string) []string {
	var out []string
	r := []rune(para)
	start := 0
	for i := 0; i < len(r); i++ {
		switch r[i] {
		case '.', '!', '?', '。', '\n':
			if i+1 < len(r) && r[i+1] != ' ' && r[i+1] != '\n' && r[i] != '\n' {
				continue
			}
			if s := strings.TrimSpace(string(r[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(string(r[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func hardCut(s string, limit int) []string {
	r := []rune(s)
	var out []string
	for len(r) > limit {
		out = append(out, string(r[:limit]))
		r = r[limit:]
	}
	if len(r) > 0 {
		out = append(out, string(r))
	}
	return out
}
