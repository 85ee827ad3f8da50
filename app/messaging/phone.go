package messaging

import (
	"regexp"
	"strings"
)

var (
	dashedMobile = regexp.MustCompile(`^010-\d{4}-\d{4}$`)
	plainMobile  = regexp.MustCompile(`^010\d{8}$`)
	nonDigit     = regexp.MustCompile(`[^0-9]`)
	phoneLike    = regexp.MustCompile(`^[0-9-]+$`)
)

// NormalizePhone strips everything but digits.
func NormalizePhone(raw string) string {
	return nonDigit.ReplaceAllString(raw, "")
}

// IsMobile accepts 010-dddd-dddd or 010dddddddd.
func IsMobile(raw string) bool {
	return dashedMobile.MatchString(raw) || plainMobile.MatchString(raw)
}

// LooksLikePhone reports whether s consists of digits and dashes only, which is
// how phone numbers are told apart from Kakao friend UUIDs.
func LooksLikePhone(s string) bool {
	return phoneLike.MatchString(s)
}

// FormatPhone renders a digit string with dashes, 010-1234-5678 style.
func FormatPhone(raw string) string {
	d := NormalizePhone(raw)
	switch len(d) {
	case 11:
		return d[:3] + "-" + d[3:7] + "-" + d[7:]
	case 10:
		if strings.HasPrefix(d, "02") {
			return d[:2] + "-" + d[2:6] + "-" + d[6:]
		}
		return d[:3] + "-" + d[3:6] + "-" + d[6:]
	case 9:
		return d[:2] + "-" + d[2:5] + "-" + d[5:]
	}
	return d
}

// ValidMobiles filters raw numbers down to well formed mobile numbers, normalized
// and de-duplicated in input order.
func ValidMobiles(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if !IsMobile(r) {
			continue
		}
		n := NormalizePhone(r)
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
