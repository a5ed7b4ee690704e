// Package report parses the hand-written missing-question report that
// accompanies the dataset. The document is semi-structured markdown with
// three recognized line shapes: a bracketed year header, a subject header
// marked with 📌, and dash bullets naming single question numbers or
// ranges like "21~23번". Everything else is ignored, and a malformed line
// never aborts the parse.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const subjectMarker = "📌"

// bulletPattern matches either a range "A~B번" or a single number "N번".
var bulletPattern = regexp.MustCompile(`(\d+)~(\d+)번|(\d+)번`)

// MissingQuestions maps year → subject label → ascending distinct question
// numbers believed absent from the dataset.
type MissingQuestions map[string]map[string][]int

// ParseFile reads and parses the report at path. A missing file yields an
// empty result, not an error: the report is optional input.
func ParseFile(path string) (MissingQuestions, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return MissingQuestions{}, nil
		}
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse parses a missing-question report. Year and subject headers set the
// context for the bullet lines that follow them; bullets seen before both
// headers are ignored. The only error condition is a read fault.
func Parse(r io.Reader) (MissingQuestions, error) {
	missing := MissingQuestions{}
	currentYear := ""
	currentSubject := ""

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "[") && strings.Contains(line, "년"):
			// Year header, e.g. "[ ✅ 2016년 ]": keep only the digits of
			// the bracketed label.
			label := line[1:]
			if end := strings.Index(label, "]"); end >= 0 {
				label = label[:end]
			}
			year := digitsOnly(label)
			if year == "" {
				continue
			}
			currentYear = year
			currentSubject = ""
			if _, ok := missing[year]; !ok {
				missing[year] = map[string][]int{}
			}

		case strings.HasPrefix(line, subjectMarker) && currentYear != "":
			// Subject header, e.g. "📌 경제원론".
			parts := strings.Split(line, subjectMarker)
			if len(parts) < 2 {
				continue
			}
			subject := strings.TrimSpace(parts[1])
			if subject == "" {
				continue
			}
			currentSubject = subject
			if _, ok := missing[currentYear][subject]; !ok {
				missing[currentYear][subject] = []int{}
			}

		case strings.HasPrefix(line, "-") && currentYear != "" && currentSubject != "":
			nums := missing[currentYear][currentSubject]
			for _, m := range bulletPattern.FindAllStringSubmatch(line, -1) {
				if m[1] != "" && m[2] != "" {
					start, err1 := strconv.Atoi(m[1])
					end, err2 := strconv.Atoi(m[2])
					if err1 != nil || err2 != nil {
						continue
					}
					for n := start; n <= end; n++ {
						nums = appendMissing(nums, n)
					}
				} else if m[3] != "" {
					n, err := strconv.Atoi(m[3])
					if err != nil {
						continue
					}
					nums = appendMissing(nums, n)
				}
			}
			missing[currentYear][currentSubject] = nums
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	for _, subjects := range missing {
		for _, nums := range subjects {
			sort.Ints(nums)
		}
	}
	return missing, nil
}

// Years returns the report's years in ascending order.
func (m MissingQuestions) Years() []string {
	years := make([]string, 0, len(m))
	for y := range m {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

// Subjects returns the subject labels recorded for a year, sorted.
func (m MissingQuestions) Subjects(year string) []string {
	subjects := make([]string, 0, len(m[year]))
	for s := range m[year] {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	return subjects
}

// FindSubject returns the report's subject label matching a dataset
// subject, using MatchSubject, or "" when none matches.
func (m MissingQuestions) FindSubject(year, subject string) string {
	for _, label := range m.Subjects(year) {
		if MatchSubject(subject, label) {
			return label
		}
	}
	return ""
}

// MatchSubject reports whether a subject selected in the dataset refers to
// a subject label from the report. Labels are inconsistent across years,
// so beyond exact equality this accepts membership in a slash-compound
// label ("상법 / 세법개론") and substring containment. Containment is only
// trusted for selections of three or more characters: a short label like
// "법" would match 상법, 세법 and 기업법 alike. 경제학 and 경제원론 name
// the same subject in different years.
func MatchSubject(selected, reportSubject string) bool {
	if selected == reportSubject {
		return true
	}
	if strings.Contains(reportSubject, " / ") {
		for _, part := range strings.Split(reportSubject, "/") {
			if strings.TrimSpace(part) == selected {
				return true
			}
		}
	}
	if utf8.RuneCountInString(selected) >= 3 && strings.Contains(reportSubject, selected) {
		return true
	}
	if isEconomics(selected) && isEconomics(reportSubject) {
		return true
	}
	return false
}

func isEconomics(subject string) bool {
	return subject == "경제학" || subject == "경제원론"
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) && r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func appendMissing(nums []int, n int) []int {
	if slices.Contains(nums, n) {
		return nums
	}
	return append(nums, n)
}
