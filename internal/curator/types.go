// Package curator implements the dataset curation operations exposed over
// MCP: browsing and editing records, cross-checking answers against
// answer-key PDFs, tracking missing questions, and review bookkeeping.
package curator

import (
	"github.com/examdata/mcp-exam-curator/internal/dataset"
)

// SubjectCount is one subject's record count within a year.
type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

// YearSummary groups record counts for one exam year.
type YearSummary struct {
	Year     string         `json:"year"`
	Total    int            `json:"total"`
	Subjects []SubjectCount `json:"subjects"`
}

// OverviewResult summarizes the whole dataset.
type OverviewResult struct {
	DatasetPath  string        `json:"dataset_path"`
	TotalRecords int           `json:"total_records"`
	Years        []YearSummary `json:"years"`
}

// QuestionSummary is one record in a listing.
type QuestionSummary struct {
	UniqueID       string `json:"unique_id"`
	Year           string `json:"year"`
	Subject        string `json:"subject"`
	QuestionNumber int    `json:"question_number"`
	Answer         string `json:"answer"`
	Reviewed       bool   `json:"reviewed"`
}

// ListQuestionsResult holds a filtered listing.
type ListQuestionsResult struct {
	Year      string            `json:"year"`
	Subject   string            `json:"subject"`
	Questions []QuestionSummary `json:"questions"`
}

// QuestionDetail is a full record plus its review state.
type QuestionDetail struct {
	Record   dataset.Record `json:"record"`
	Reviewed bool           `json:"reviewed"`
}

// AddQuestionRequest inserts or overwrites one record.
type AddQuestionRequest struct {
	Record    dataset.Record
	Overwrite bool
}

// SaveResult reports a completed dataset write.
type SaveResult struct {
	Records    int    `json:"records"`
	Path       string `json:"path"`
	BackupPath string `json:"backup_path"`
}

// ImportResult reports a bulk import of pasted records.
type ImportResult struct {
	Imported    int      `json:"imported"`
	Overwritten int      `json:"overwritten"`
	Skipped     []string `json:"skipped"`
	SaveResult
}

// CrosscheckRow compares one question's dataset answer with the answer
// key.
type CrosscheckRow struct {
	QuestionNumber int    `json:"question_number"`
	KeyAnswer      string `json:"key_answer"`
	DatasetAnswer  string `json:"dataset_answer"`
	State          string `json:"state"`
}

// CrosscheckResult holds a full answer comparison for one year/subject.
type CrosscheckResult struct {
	Year          string          `json:"year"`
	Subject       string          `json:"subject"`
	Rows          []CrosscheckRow `json:"rows"`
	Matches       int             `json:"matches"`
	Mismatches    int             `json:"mismatches"`
	NotApplicable int             `json:"not_applicable"`
}

// MissingOverviewResult splits the reported missing questions for one
// year/subject into still-pending and manually confirmed.
type MissingOverviewResult struct {
	Year      string `json:"year"`
	Subject   string `json:"subject"`
	Pending   []int  `json:"pending"`
	Completed []int  `json:"completed"`
}

// ReviewStatsResult reports review progress over a record selection.
type ReviewStatsResult struct {
	Year     string `json:"year"`
	Subject  string `json:"subject"`
	Total    int    `json:"total"`
	Reviewed int    `json:"reviewed"`
}

// ExtractTextRequest asks for text from a located or explicit PDF.
type ExtractTextRequest struct {
	Path  string
	Query string
}

// ExtractTextResult carries the extracted (possibly windowed) text.
type ExtractTextResult struct {
	Path string `json:"path"`
	Text string `json:"text"`
}
