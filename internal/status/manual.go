// Package status persists the curation bookkeeping that lives alongside
// the dataset: manual spot-check marks for reportedly missing questions
// and per-record review completion.
package status

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Legacy file envelope fields. Existing status files carry these exact
// strings, so they are written back unchanged.
const (
	manualCheckDescription = "수동으로 확인한 문항의 체크 상태를 저장합니다."
	manualCheckFormat      = "year_subject_questionNumber: true/false"
)

// CheckKey builds the manual-check map key for one question.
func CheckKey(year, subject string, questionNumber int) string {
	return fmt.Sprintf("%s_%s_%d", year, subject, questionNumber)
}

// ManualCheckStore tracks which reportedly missing questions have been
// manually confirmed, keyed by year_subject_questionNumber.
type ManualCheckStore struct {
	path    string
	checked map[string]bool
}

type manualCheckFile struct {
	Description      string          `json:"description"`
	Format           string          `json:"format"`
	CheckedQuestions map[string]bool `json:"checked_questions"`
}

// LoadManualChecks reads the manual-check file. A missing file starts an
// empty store.
func LoadManualChecks(path string) (*ManualCheckStore, error) {
	store := &ManualCheckStore{
		path:    path,
		checked: map[string]bool{},
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read manual check file %s: %w", path, err)
	}
	var file manualCheckFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse manual check file %s: %w", path, err)
	}
	if file.CheckedQuestions != nil {
		store.checked = file.CheckedQuestions
	}
	return store, nil
}

// IsChecked reports whether a question key has been confirmed.
func (s *ManualCheckStore) IsChecked(key string) bool {
	return s.checked[key]
}

// Set records or clears a confirmation. Unchecking stores an explicit
// false rather than removing the key; the legacy file format keeps both
// states and existing files carry false entries.
func (s *ManualCheckStore) Set(key string, checked bool) {
	s.checked[key] = checked
}

// Keys returns the confirmed keys, sorted.
func (s *ManualCheckStore) Keys() []string {
	keys := make([]string, 0, len(s.checked))
	for k, checked := range s.checked {
		if checked {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Count returns the number of confirmed questions.
func (s *ManualCheckStore) Count() int {
	n := 0
	for _, checked := range s.checked {
		if checked {
			n++
		}
	}
	return n
}

// Save writes the store back in the legacy envelope format.
func (s *ManualCheckStore) Save() error {
	file := manualCheckFile{
		Description:      manualCheckDescription,
		Format:           manualCheckFormat,
		CheckedQuestions: s.checked,
	}
	return writeStatusFile(s.path, &file)
}

func writeStatusFile(path string, v any) error {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode status file %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write status file %s: %w", path, err)
	}
	return nil
}
