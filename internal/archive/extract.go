package archive

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// maxTextSize caps extracted text so a pathological PDF cannot balloon a
// response.
const maxTextSize = 10 * 1024 * 1024

// TextExtractor pulls plain text out of archive PDFs.
type TextExtractor struct {
	maxFileSize int64
}

// NewTextExtractor creates a text extractor that refuses files larger
// than maxFileSize bytes.
func NewTextExtractor(maxFileSize int64) *TextExtractor {
	return &TextExtractor{maxFileSize: maxFileSize}
}

// ExtractText returns the full plain text of a PDF. Pages that fail to
// decode are skipped so one bad page never loses the rest of the paper.
func (e *TextExtractor) ExtractText(path string) (string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return "", fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if info.Size() > e.maxFileSize {
		return "", fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), e.maxFileSize)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	var builder strings.Builder
	total := 0
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if total+len(content) > maxTextSize {
			if remaining := maxTextSize - total; remaining > 0 {
				builder.WriteString(truncateAtRune(content, remaining))
			}
			break
		}
		if total > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(content)
		total += len(content)
	}

	text := builder.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content could be extracted from %s", path)
	}
	return text, nil
}

// truncateAtRune cuts s to at most limit bytes without splitting a
// multi-byte rune at the cut point.
func truncateAtRune(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// WindowAround returns a slice of extracted text surrounding the first
// occurrence of query: contextBefore runes before it and contextAfter
// runes after. With an empty query the first fallbackLen runes are
// returned instead.
func WindowAround(text, query string, contextBefore, contextAfter, fallbackLen int) string {
	runes := []rune(text)
	if query == "" {
		if len(runes) <= fallbackLen {
			return text
		}
		return string(runes[:fallbackLen])
	}

	idx := strings.Index(text, query)
	if idx < 0 {
		if len(runes) <= fallbackLen {
			return text
		}
		return string(runes[:fallbackLen])
	}

	runeIdx := len([]rune(text[:idx]))
	start := runeIdx - contextBefore
	if start < 0 {
		start = 0
	}
	end := runeIdx + contextAfter
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}
