// Package archive locates, validates, and extracts text from the exam PDF
// archive: one folder per exam year holding question papers and answer
// keys with loosely consistent Korean file names.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// subjectKeywords maps a dataset subject to the name variants seen in PDF
// file names. Commercial and tax law share keywords because older exams
// combine them in one paper.
var subjectKeywords = map[string][]string{
	"경제원론": {"경제원론", "경제학", "경제"},
	"상법":   {"상법", "세법", "상법 세법"},
	"세법":   {"세법", "상법", "세법개론"},
	"세법개론": {"세법개론", "세법"},
	"경영학":  {"경영학", "경영"},
	"회계학":  {"회계학", "회계"},
}

// answerKeyMarkers order answer-key files from most to least authoritative.
var answerKeyMarkers = []string{"확정정답", "전체정답", "최종정답", "정답", "답안", "가답안"}

// Locator finds exam and answer-key PDFs in the archive directory.
type Locator struct {
	archiveDir string
}

// NewLocator creates a locator over the given archive directory.
func NewLocator(archiveDir string) *Locator {
	return &Locator{archiveDir: archiveDir}
}

// FindExamPDF locates the question paper for one year and subject,
// skipping answer-key files. Among candidates the highest keyword score
// wins; ties keep the first candidate in directory order.
func (l *Locator) FindExamPDF(year, subject string) (string, error) {
	dir, err := l.yearFolder(year)
	if err != nil {
		return "", err
	}
	pdfs, err := listPDFs(dir)
	if err != nil {
		return "", err
	}

	best := ""
	bestScore := 0
	for _, path := range pdfs {
		name := filepath.Base(path)
		if isAnswerKeyName(name) {
			continue
		}
		score := subjectScore(name, subject)
		if score > bestScore {
			best = path
			bestScore = score
		}
	}
	if best == "" {
		return "", fmt.Errorf("no exam PDF for subject %s in %s (%s)", subject, dir, sampleNames(pdfs))
	}
	return best, nil
}

// FindAnswerKeyPDF locates the answer key for one year. Candidates only
// need an answer-key marker in their name; official keys usually cover
// every subject of the year in one file (전체정답), so a subject match is
// a tie-breaker between equally ranked markers, never a requirement.
func (l *Locator) FindAnswerKeyPDF(year, subject string) (string, error) {
	dir, err := l.yearFolder(year)
	if err != nil {
		return "", err
	}
	pdfs, err := listPDFs(dir)
	if err != nil {
		return "", err
	}

	best := ""
	bestRank := 0
	bestScore := 0
	for _, path := range pdfs {
		name := filepath.Base(path)
		rank := answerKeyRank(name)
		if rank == 0 {
			continue
		}
		score := subjectScore(name, subject)
		if rank > bestRank || (rank == bestRank && score > bestScore) {
			best = path
			bestRank = rank
			bestScore = score
		}
	}
	if best == "" {
		return "", fmt.Errorf("no answer key PDF for year %s in %s (%s)", year, dir, sampleNames(pdfs))
	}
	return best, nil
}

// yearFolder resolves the archive folder for a year, trying the two-digit
// form first ("16년 ...") and the four-digit form second ("2016년 ...").
func (l *Locator) yearFolder(year string) (string, error) {
	patterns := []string{}
	if len(year) == 4 {
		patterns = append(patterns, year[2:]+"년*")
	}
	patterns = append(patterns, year+"년*")

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(l.archiveDir, pattern))
		if err != nil {
			return "", fmt.Errorf("failed to scan archive directory %s: %w", l.archiveDir, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err == nil && info.IsDir() {
				return m, nil
			}
		}
	}
	return "", fmt.Errorf("no archive folder for year %s under %s", year, l.archiveDir)
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive folder %s: %w", dir, err)
	}
	var pdfs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(dir, e.Name()))
		}
	}
	return pdfs, nil
}

func isAnswerKeyName(name string) bool {
	return strings.Contains(name, "정답") || strings.Contains(name, "가답안")
}

// answerKeyRank returns how authoritative a file name's answer-key marker
// is; higher is better, zero means no marker at all.
func answerKeyRank(name string) int {
	for i, marker := range answerKeyMarkers {
		if strings.Contains(name, marker) {
			return len(answerKeyMarkers) - i
		}
	}
	return 0
}

// subjectScore rates how well a file name matches a subject: an exact
// subject hit outweighs any number of keyword hits.
func subjectScore(name, subject string) int {
	score := 0
	if strings.Contains(name, subject) {
		score += 10
	}
	keywords, ok := subjectKeywords[subject]
	if !ok {
		keywords = fallbackKeywords(subject)
	}
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			score += 5
		}
	}
	return score
}

// fallbackKeywords derives variants for a subject with no alias entry:
// the subject itself plus its three-rune and two-rune prefixes.
func fallbackKeywords(subject string) []string {
	runes := []rune(subject)
	keywords := []string{subject}
	if len(runes) > 3 {
		keywords = append(keywords, string(runes[:3]))
	}
	if len(runes) > 2 {
		keywords = append(keywords, string(runes[:2]))
	}
	return keywords
}

// sampleNames summarizes up to five candidate file names for diagnostics.
func sampleNames(paths []string) string {
	if len(paths) == 0 {
		return "folder contains no PDF files"
	}
	names := make([]string, 0, 5)
	for _, p := range paths {
		if len(names) == 5 {
			names = append(names, "...")
			break
		}
		names = append(names, filepath.Base(p))
	}
	return "candidates: " + strings.Join(names, ", ")
}
