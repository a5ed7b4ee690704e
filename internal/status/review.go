package status

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const (
	reviewDescription = "문항별 검토 완료 상태를 저장합니다."
	reviewFormat      = "unique_id: {checked: bool, timestamp: str}"
)

// ReviewMark is one record's review state.
type ReviewMark struct {
	Checked   bool   `json:"checked"`
	Timestamp string `json:"timestamp"`
}

// ReviewStore tracks per-record review completion keyed by unique_id.
type ReviewStore struct {
	path  string
	marks map[string]ReviewMark
}

type reviewFile struct {
	Description string                `json:"description"`
	Format      string                `json:"format"`
	Reviews     map[string]ReviewMark `json:"reviewed_questions"`
}

// LoadReviews reads the review-status file. A missing file starts an
// empty store.
func LoadReviews(path string) (*ReviewStore, error) {
	store := &ReviewStore{
		path:  path,
		marks: map[string]ReviewMark{},
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read review status file %s: %w", path, err)
	}
	var file reviewFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse review status file %s: %w", path, err)
	}
	if file.Reviews != nil {
		store.marks = file.Reviews
	}
	return store, nil
}

// IsReviewed reports whether a record has been marked reviewed.
func (s *ReviewStore) IsReviewed(uniqueID string) bool {
	return s.marks[uniqueID].Checked
}

// Mark sets or clears a record's review state, stamping the change time.
func (s *ReviewStore) Mark(uniqueID string, checked bool) {
	if !checked {
		delete(s.marks, uniqueID)
		return
	}
	s.marks[uniqueID] = ReviewMark{
		Checked:   true,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// Reset clears every review mark.
func (s *ReviewStore) Reset() {
	s.marks = map[string]ReviewMark{}
}

// Count returns the number of records marked reviewed.
func (s *ReviewStore) Count() int {
	n := 0
	for _, m := range s.marks {
		if m.Checked {
			n++
		}
	}
	return n
}

// CountIn returns how many of the given unique IDs are marked reviewed.
func (s *ReviewStore) CountIn(uniqueIDs []string) int {
	n := 0
	for _, id := range uniqueIDs {
		if s.marks[id].Checked {
			n++
		}
	}
	return n
}

// Save writes the store back in the legacy envelope format.
func (s *ReviewStore) Save() error {
	file := reviewFile{
		Description: reviewDescription,
		Format:      reviewFormat,
		Reviews:     s.marks,
	}
	return writeStatusFile(s.path, &file)
}
