package messaging

import (
	"unicode/utf8"
)

// linkOverhead accounts for the "\n\n링크: " prefix added in front of a short link.
const linkOverhead = 8

const (
	SMSLimit    = 90
	SMS300Limit = 300
	LMSLimit    = 2000
	MMSLimit    = 2000
)

// LengthStatus grades a message length against its type's limit.
type LengthStatus string

const (
	StatusOK      LengthStatus = "ok"
	StatusWarning LengthStatus = "warning"
	StatusOver    LengthStatus = "over"
)

// Limit returns the character ceiling for a message type. Unknown types get the SMS limit.
func Limit(messageType string) int {
	switch messageType {
	case "SMS300":
		return SMS300Limit
	case "LMS":
		return LMSLimit
	case "MMS":
		return MMSLimit
	default:
		return SMSLimit
	}
}

// RuneLen counts characters the way the editor does.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// MessageLength is the content length plus the short link and its label when present.
func MessageLength(content, shortLink string) int {
	n := RuneLen(content)
	if shortLink != "" {
		n += RuneLen(shortLink) + linkOverhead
	}
	return n
}

// StatusOf is over above 100% of the limit, warning above 80%, ok otherwise.
func StatusOf(length, limit int) LengthStatus {
	if limit <= 0 {
		return StatusOver
	}
	pct := float64(length) / float64(limit) * 100
	switch {
	case pct > 100:
		return StatusOver
	case pct > 80:
		return StatusWarning
	}
	return StatusOK
}

// ComposeText builds the final text sent to the provider.
func ComposeText(content, shortLink string) string {
	if shortLink == "" {
		return content
	}
	return content + "\n\n링크: " + shortLink
}

// ProviderType maps an editor message type to what the provider accepts.
// SMS300 goes out as LMS, and MMS without an uploaded image degrades to LMS.
func ProviderType(messageType string, hasImage bool) string {
	switch messageType {
	case "SMS300":
		return "LMS"
	case "MMS":
		if !hasImage {
			return "LMS"
		}
		return "MMS"
	case "":
		return "LMS"
	}
	return messageType
}

// SuggestType picks the cheapest type that fits length characters.
func SuggestType(length int, hasImage bool) string {
	switch {
	case hasImage:
		return "MMS"
	case length <= SMSLimit:
		return "SMS"
	default:
		return "LMS"
	}
}

// Analysis summarizes how a draft fits its message type.
type Analysis struct {
	Length        int          `json:"length"`
	Limit         int          `json:"limit"`
	Percent       float64      `json:"percent"`
	Status        LengthStatus `json:"status"`
	SuggestedType string       `json:"suggested_type"`
	Parts         []string     `json:"parts,omitempty"`
}

// Analyze measures content against messageType and, when it does not fit,
// previews how it would be split.
func Analyze(content, shortLink, messageType string, hasImage bool) Analysis {
	limit := Limit(messageType)
	length := MessageLength(content, shortLink)
	a := Analysis{
		Length:        length,
		Limit:         limit,
		Percent:       float64(length) / float64(limit) * 100,
		Status:        StatusOf(length, limit),
		SuggestedType: SuggestType(length, hasImage),
	}
	if a.Status == StatusOver {
		a.Parts = Split(ComposeText(content, shortLink), limit, true)
	}
	return a
}
