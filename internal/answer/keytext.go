package answer

import (
	"regexp"
	"strconv"
	"strings"
)

var leadingNumberPattern = regexp.MustCompile(`^\d+`)

// ParseKeyText parses a pasted answer-key blob, one logical answer per
// line, e.g. "1 ①", "2. ②", "3:③" or "4 4". The leading run of digits is
// the question number; the answer is the first glyph in the remainder,
// else the first standalone digit 1-5, mapped to its glyph form. Lines
// without a leading number or without an answer are skipped silently, and
// a repeated question number keeps the last occurrence: the input is
// hand-pasted text of very uneven quality.
func ParseKeyText(text string) map[int]string {
	result := make(map[int]string)
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := leadingNumberPattern.FindString(line)
		if m == "" {
			continue
		}
		num, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		rest := strings.TrimSpace(line[len(m):])
		token := glyphPattern.FindString(rest)
		if token == "" {
			if dm := bareDigitPattern.FindStringSubmatch(rest); dm != nil {
				token = dm[2]
			}
		}
		if token == "" {
			continue
		}
		if g, ok := digitToGlyph[token]; ok {
			token = g
		}
		result[num] = token
	}
	return result
}
