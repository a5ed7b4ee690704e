// Package answer normalizes and compares the answer tokens used by
// five-choice exam questions. Source PDFs mark answers with the circled
// digits ①-⑤, while pasted answer keys and model output often use plain
// digits; both families map to the same canonical rank.
package answer

import (
	"regexp"
	"strings"
)

// glyphToDigit maps a circled-digit glyph to its plain-digit form.
var glyphToDigit = map[string]string{
	"①": "1",
	"②": "2",
	"③": "3",
	"④": "4",
	"⑤": "5",
}

// digitToGlyph maps a plain digit back to the canonical on-page glyph.
var digitToGlyph = map[string]string{
	"1": "①",
	"2": "②",
	"3": "③",
	"4": "④",
	"5": "⑤",
}

// answerPrefixes are labels that may precede the answer in an assistant
// message. Only the text after the label, up to the next line break, is
// considered.
var answerPrefixes = []string{"정답:", "최종정답:"}

var (
	glyphPattern = regexp.MustCompile(`[①②③④⑤]`)
	// A digit 1-5 counts as an answer only when it is not part of a larger
	// number, e.g. the 4 in "45" is not an answer.
	bareDigitPattern = regexp.MustCompile(`(^|[^0-9])([1-5])($|[^0-9])`)
)

// Normalize maps any recognized answer token to its plain-digit form
// "1".."5". Unrecognized input is returned trimmed but otherwise
// unchanged, so a failed normalization shows up as an inequality rather
// than an error.
func Normalize(token string) string {
	t := strings.TrimSpace(token)
	if t == "" {
		return ""
	}
	if d, ok := glyphToDigit[t]; ok {
		return d
	}
	if _, ok := digitToGlyph[t]; ok {
		return t
	}
	return t
}

// Glyph returns the canonical circled-digit form of a recognized token, or
// the trimmed input unchanged when it is not recognized.
func Glyph(token string) string {
	t := Normalize(token)
	if g, ok := digitToGlyph[t]; ok {
		return g
	}
	return t
}

// CompareState is the tri-state outcome of comparing two answer tokens.
type CompareState int

const (
	// NotApplicable means at least one side was empty; the comparison is
	// neither a match nor a mismatch.
	NotApplicable CompareState = iota
	Match
	Mismatch
)

// String returns the snake_case name used in results and logs.
func (s CompareState) String() string {
	switch s {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	default:
		return "not_applicable"
	}
}

// Compare normalizes both tokens and reports whether they denote the same
// answer. An empty side yields NotApplicable, never Mismatch.
func Compare(a, b string) CompareState {
	na := Normalize(a)
	nb := Normalize(b)
	if na == "" || nb == "" {
		return NotApplicable
	}
	if na == nb {
		return Match
	}
	return Mismatch
}

// Extract pulls a single answer token out of free-form assistant text.
// A recognized label prefix is stripped first (keeping only the remainder
// of that line), then the first circled-digit glyph wins, then the first
// standalone digit 1-5, then the first 20 characters of the trimmed text.
// The precedence order matters: real inputs are inconsistently formatted
// and downstream comparison relies on glyph beating digit beating raw text.
func Extract(content string) string {
	s := strings.TrimSpace(content)
	if s == "" {
		return ""
	}
	for _, prefix := range answerPrefixes {
		idx := strings.LastIndex(s, prefix)
		if idx < 0 {
			continue
		}
		s = s[idx+len(prefix):]
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[:nl]
		}
		s = strings.TrimSpace(s)
		break
	}
	if m := glyphPattern.FindString(s); m != "" {
		return m
	}
	if m := bareDigitPattern.FindStringSubmatch(s); m != nil {
		return m[2]
	}
	runes := []rune(s)
	if len(runes) > 20 {
		runes = runes[:20]
	}
	return string(runes)
}
