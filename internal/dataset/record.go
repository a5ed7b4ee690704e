// Package dataset owns the canonical question/answer dataset: the record
// model, field validation, and the JSONL store with its backup-and-rename
// save protocol.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Conversation roles. Entry 0 of a record's conversation is the question
// prompt, entry 1 the canonical answer.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// questionNumberFallback sorts records whose question number cannot be
// coerced to an integer after everything else.
const questionNumberFallback = 99999

// Message is one turn of a record's conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Metadata identifies where a question came from.
type Metadata struct {
	Year    string `json:"year"`
	Subject string `json:"subject"`
	// QuestionNumber is integer-like but historically stored either as a
	// JSON number or a numeric string; it is preserved verbatim and only
	// coerced for sorting and lookups.
	QuestionNumber any    `json:"question_number"`
	Source         string `json:"source"`
}

// Record is one exam question: its prompt, canonical answer, and metadata.
// unique_id is globally unique by convention only; duplicates are
// tolerated on load and resolved explicitly by overwrite operations.
type Record struct {
	Conversation []Message `json:"conversation"`
	Metadata     Metadata  `json:"metadata"`
	UniqueID     string    `json:"unique_id"`
}

// Validate checks the required shape of a record and returns a reason
// naming the offending field on failure. It gates every insertion and
// overwrite, and runs again on each record just before a full rewrite.
func (r *Record) Validate() error {
	if len(r.Conversation) < 2 {
		return errors.New("conversation must contain at least 2 messages")
	}
	if r.Metadata.Year == "" {
		return errors.New(`metadata is missing required field "year"`)
	}
	if r.Metadata.Subject == "" {
		return errors.New(`metadata is missing required field "subject"`)
	}
	if r.Metadata.QuestionNumber == nil {
		return errors.New(`metadata is missing required field "question_number"`)
	}
	if r.Metadata.Source == "" {
		return errors.New(`metadata is missing required field "source"`)
	}
	if strings.TrimSpace(r.UniqueID) == "" {
		return errors.New("unique_id must be a non-empty string")
	}
	return nil
}

// QuestionNumber returns the record's question number coerced to an int,
// or the sort fallback when coercion fails.
func (r *Record) QuestionNumber() int {
	if n, ok := CoerceQuestionNumber(r.Metadata.QuestionNumber); ok {
		return n
	}
	return questionNumberFallback
}

// Prompt returns the question text (conversation entry 0).
func (r *Record) Prompt() string {
	if len(r.Conversation) == 0 {
		return ""
	}
	return r.Conversation[0].Content
}

// Answer returns the canonical answer message text (conversation entry 1).
func (r *Record) Answer() string {
	if len(r.Conversation) < 2 {
		return ""
	}
	return r.Conversation[1].Content
}

// CoerceQuestionNumber converts the loosely typed question_number field to
// an int. JSON numbers decode as float64; older files carry numeric
// strings.
func CoerceQuestionNumber(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// SortRecords establishes the canonical dataset order: ascending by
// (year, subject, question number). Records with missing year or subject
// sort last within their tier rather than first.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		yi, si, qi := sortKey(&records[i])
		yj, sj, qj := sortKey(&records[j])
		if yi != yj {
			return yi < yj
		}
		if si != sj {
			return si < sj
		}
		return qi < qj
	})
}

func sortKey(r *Record) (year, subject string, questionNumber int) {
	year = r.Metadata.Year
	if year == "" {
		year = "9999"
	}
	subject = r.Metadata.Subject
	if subject == "" {
		subject = "ZZZ"
	}
	return year, subject, r.QuestionNumber()
}

// FilterRecords returns the indices of records matching the given year and
// subject (either may be empty for no filtering), ordered by question
// number.
func FilterRecords(records []Record, year, subject string) []int {
	var indices []int
	for i := range records {
		if year != "" && records[i].Metadata.Year != year {
			continue
		}
		if subject != "" && records[i].Metadata.Subject != subject {
			continue
		}
		indices = append(indices, i)
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return records[indices[a]].QuestionNumber() < records[indices[b]].QuestionNumber()
	})
	return indices
}

// Years returns the distinct years present in the records, sorted.
func Years(records []Record) []string {
	return distinct(records, func(r *Record) string { return r.Metadata.Year })
}

// SubjectsInYear returns the distinct subjects of one year, sorted.
func SubjectsInYear(records []Record, year string) []string {
	seen := map[string]struct{}{}
	var subjects []string
	for i := range records {
		if records[i].Metadata.Year != year {
			continue
		}
		s := records[i].Metadata.Subject
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	return subjects
}

func distinct(records []Record, key func(*Record) string) []string {
	seen := map[string]struct{}{}
	var values []string
	for i := range records {
		v := key(&records[i])
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// ExportJSONL serializes records as newline-delimited JSON, one record per
// line, without HTML escaping so Korean text stays readable.
func ExportJSONL(records []Record) (string, error) {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return "", fmt.Errorf("encode record %q: %w", records[i].UniqueID, err)
		}
	}
	return b.String(), nil
}
