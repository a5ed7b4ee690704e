package curator

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/examdata/mcp-exam-curator/internal/answer"
	"github.com/examdata/mcp-exam-curator/internal/archive"
	"github.com/examdata/mcp-exam-curator/internal/config"
	"github.com/examdata/mcp-exam-curator/internal/dataset"
	"github.com/examdata/mcp-exam-curator/internal/report"
	"github.com/examdata/mcp-exam-curator/internal/status"
)

// Text window around an answer-key query hit.
const (
	queryContextBefore = 300
	queryContextAfter  = 3000
	extractFallbackLen = 2000
)

// Service coordinates the dataset, status files, and PDF archive behind
// the MCP tool surface. All mutating operations hold the mutex and only
// commit in-memory changes after the store accepts the save, so a failed
// save never leaves memory and disk disagreeing.
type Service struct {
	mu sync.Mutex

	store   *dataset.Store
	records []dataset.Record

	manual *status.ManualCheckStore
	review *status.ReviewStore

	locator   *archive.Locator
	extractor *archive.TextExtractor
	validator *archive.Validator
	uploads   *archive.Uploads

	reportFile string
	logger     *zap.Logger
}

// NewService loads the dataset and status files and wires the archive
// components.
func NewService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store := dataset.NewStore(cfg.DatasetFile, cfg.BackupDir, logger)
	records, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	manual, err := status.LoadManualChecks(cfg.ManualCheckFile)
	if err != nil {
		return nil, err
	}
	review, err := status.LoadReviews(cfg.ReviewStatusFile)
	if err != nil {
		return nil, err
	}

	validator := archive.NewValidator(cfg.MaxFileSize)
	svc := &Service{
		store:      store,
		records:    records,
		manual:     manual,
		review:     review,
		locator:    archive.NewLocator(cfg.ArchiveDir),
		extractor:  archive.NewTextExtractor(cfg.MaxFileSize),
		validator:  validator,
		uploads:    archive.NewUploads(cfg.UploadDir, validator),
		reportFile: cfg.ReportFile,
		logger:     logger,
	}

	logger.Info("dataset loaded",
		zap.Int("records", len(records)),
		zap.String("path", cfg.DatasetFile))
	return svc, nil
}

// Overview summarizes the dataset by year and subject.
func (s *Service) Overview() *OverviewResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &OverviewResult{
		DatasetPath:  s.store.Path(),
		TotalRecords: len(s.records),
	}
	for _, year := range dataset.Years(s.records) {
		summary := YearSummary{Year: year}
		for _, subject := range dataset.SubjectsInYear(s.records, year) {
			count := len(dataset.FilterRecords(s.records, year, subject))
			summary.Subjects = append(summary.Subjects, SubjectCount{Subject: subject, Count: count})
			summary.Total += count
		}
		result.Years = append(result.Years, summary)
	}
	return result
}

// ListQuestions lists records for a year and optional subject, ordered by
// question number.
func (s *Service) ListQuestions(year, subject string) *ListQuestionsResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &ListQuestionsResult{Year: year, Subject: subject}
	for _, i := range dataset.FilterRecords(s.records, year, subject) {
		rec := &s.records[i]
		result.Questions = append(result.Questions, QuestionSummary{
			UniqueID:       rec.UniqueID,
			Year:           rec.Metadata.Year,
			Subject:        rec.Metadata.Subject,
			QuestionNumber: rec.QuestionNumber(),
			Answer:         answer.Glyph(answer.Extract(rec.Answer())),
			Reviewed:       s.review.IsReviewed(rec.UniqueID),
		})
	}
	return result
}

// GetQuestion returns one record by unique_id.
func (s *Service) GetQuestion(uniqueID string) (*QuestionDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(uniqueID)
	if i < 0 {
		return nil, fmt.Errorf("no record with unique_id %s", uniqueID)
	}
	return &QuestionDetail{
		Record:   s.records[i],
		Reviewed: s.review.IsReviewed(uniqueID),
	}, nil
}

// AddQuestion validates and inserts a record, assigning a fresh unique_id
// when none is given. An existing unique_id is an error unless Overwrite
// is set. The dataset is saved immediately.
func (s *Service) AddQuestion(req AddQuestionRequest) (*SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := req.Record
	if strings.TrimSpace(rec.UniqueID) == "" {
		rec.UniqueID = uuid.NewString()
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	snapshot := slices.Clone(s.records)
	if i := s.indexOf(rec.UniqueID); i >= 0 {
		if !req.Overwrite {
			return nil, fmt.Errorf("record with unique_id %s already exists", rec.UniqueID)
		}
		s.records[i] = rec
	} else {
		s.records = append(s.records, rec)
	}

	result, err := s.saveLocked()
	if err != nil {
		s.records = snapshot
		return nil, err
	}
	return result, nil
}

// UpdateQuestion replaces an existing record. The unique_id must already
// be present; changing it is done by add-with-overwrite plus manual
// cleanup, not here.
func (s *Service) UpdateQuestion(rec dataset.Record) (*SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	i := s.indexOf(rec.UniqueID)
	if i < 0 {
		return nil, fmt.Errorf("no record with unique_id %s", rec.UniqueID)
	}

	snapshot := slices.Clone(s.records)
	s.records[i] = rec

	result, err := s.saveLocked()
	if err != nil {
		s.records = snapshot
		return nil, err
	}
	return result, nil
}

// SaveDataset persists the in-memory dataset as-is.
func (s *Service) SaveDataset() (*SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// ExportSubset serializes one year/subject slice as JSONL and suggests a
// file name for it.
func (s *Service) ExportSubset(year, subject string) (filename, content string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	indices := dataset.FilterRecords(s.records, year, subject)
	if len(indices) == 0 {
		return "", "", fmt.Errorf("no records for year %s subject %s", year, subject)
	}
	subset := make([]dataset.Record, 0, len(indices))
	for _, i := range indices {
		subset = append(subset, s.records[i])
	}
	content, err = dataset.ExportJSONL(subset)
	if err != nil {
		return "", "", err
	}
	filename = fmt.Sprintf("cpa_%s_%s.jsonl", year, strings.ReplaceAll(subject, " ", "_"))
	return filename, content, nil
}

// ImportText bulk-inserts records pasted as JSONL or a JSON array.
// Invalid records are skipped with a reason; existing unique_ids are
// overwritten only when overwrite is set, otherwise skipped. Nothing is
// saved when no record survives.
func (s *Service) ImportText(text string, overwrite bool) (*ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates, parseSkipped, err := dataset.ParsePasted(text)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		if len(parseSkipped) > 0 {
			return nil, fmt.Errorf("no parseable records in pasted text (%d lines skipped)", len(parseSkipped))
		}
		return nil, fmt.Errorf("no records found in pasted text")
	}

	snapshot := slices.Clone(s.records)
	result := &ImportResult{Skipped: parseSkipped}
	for idx := range candidates {
		rec := candidates[idx]
		if strings.TrimSpace(rec.UniqueID) == "" {
			rec.UniqueID = uuid.NewString()
		}
		if err := rec.Validate(); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s: %v", rec.UniqueID, err))
			continue
		}
		if i := s.indexOf(rec.UniqueID); i >= 0 {
			if !overwrite {
				result.Skipped = append(result.Skipped, fmt.Sprintf("%s: already exists", rec.UniqueID))
				continue
			}
			s.records[i] = rec
			result.Overwritten++
		} else {
			s.records = append(s.records, rec)
			result.Imported++
		}
	}
	if result.Imported == 0 && result.Overwritten == 0 {
		s.records = snapshot
		return nil, fmt.Errorf("no importable records (%d skipped)", len(result.Skipped))
	}

	save, err := s.saveLocked()
	if err != nil {
		s.records = snapshot
		return nil, err
	}
	result.SaveResult = *save
	return result, nil
}

// ParseAnswerKey extracts the answer key for one year/subject from the
// archive and parses it into question-number to answer-glyph pairs.
func (s *Service) ParseAnswerKey(year, subject string) (string, map[int]string, error) {
	path, err := s.locator.FindAnswerKeyPDF(year, subject)
	if err != nil {
		return "", nil, err
	}
	text, err := s.extractor.ExtractText(path)
	if err != nil {
		return "", nil, err
	}
	key := answer.ParseKeyText(text)
	if len(key) == 0 {
		return path, nil, fmt.Errorf("no answers could be parsed from %s", path)
	}
	return path, key, nil
}

// Crosscheck compares every dataset answer for one year/subject against
// the parsed answer key.
func (s *Service) Crosscheck(year, subject string) (*CrosscheckResult, error) {
	_, key, err := s.ParseAnswerKey(year, subject)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &CrosscheckResult{Year: year, Subject: subject}
	for _, i := range dataset.FilterRecords(s.records, year, subject) {
		rec := &s.records[i]
		num := rec.QuestionNumber()
		row := CrosscheckRow{
			QuestionNumber: num,
			KeyAnswer:      key[num],
			DatasetAnswer:  answer.Extract(rec.Answer()),
		}
		state := answer.Compare(row.KeyAnswer, row.DatasetAnswer)
		row.State = state.String()
		switch state {
		case answer.Match:
			result.Matches++
		case answer.Mismatch:
			result.Mismatches++
		default:
			result.NotApplicable++
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

// MissingOverview reads the missing-questions report for one year/subject
// and splits the numbers by manual-check state.
func (s *Service) MissingOverview(year, subject string) (*MissingOverviewResult, error) {
	missing, err := report.ParseFile(s.reportFile)
	if err != nil {
		return nil, err
	}
	label := missing.FindSubject(year, subject)
	if label == "" {
		return nil, fmt.Errorf("no missing questions reported for year %s subject %s", year, subject)
	}
	numbers := missing[year][label]

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &MissingOverviewResult{Year: year, Subject: subject}
	for _, num := range numbers {
		if s.manual.IsChecked(status.CheckKey(year, subject, num)) {
			result.Completed = append(result.Completed, num)
		} else {
			result.Pending = append(result.Pending, num)
		}
	}
	return result, nil
}

// SetManualCheck records or clears the manual confirmation for one
// missing question and persists the change.
func (s *Service) SetManualCheck(year, subject string, questionNumber int, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manual.Set(status.CheckKey(year, subject, questionNumber), checked)
	return s.manual.Save()
}

// MarkReviewed sets or clears a record's review flag and persists the
// change.
func (s *Service) MarkReviewed(uniqueID string, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(uniqueID) < 0 {
		return fmt.Errorf("no record with unique_id %s", uniqueID)
	}
	s.review.Mark(uniqueID, checked)
	return s.review.Save()
}

// ResetReviews clears all review flags and persists the change.
func (s *Service) ResetReviews() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.review.Reset()
	return s.review.Save()
}

// ReviewStats reports review progress, optionally narrowed to one year
// and subject.
func (s *Service) ReviewStats(year, subject string) *ReviewStatsResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, i := range dataset.FilterRecords(s.records, year, subject) {
		ids = append(ids, s.records[i].UniqueID)
	}
	return &ReviewStatsResult{
		Year:     year,
		Subject:  subject,
		Total:    len(ids),
		Reviewed: s.review.CountIn(ids),
	}
}

// LocateExamPDF finds the question paper for one year/subject.
func (s *Service) LocateExamPDF(year, subject string) (string, error) {
	return s.locator.FindExamPDF(year, subject)
}

// LocateAnswerKeyPDF finds the answer key for one year/subject.
func (s *Service) LocateAnswerKeyPDF(year, subject string) (string, error) {
	return s.locator.FindAnswerKeyPDF(year, subject)
}

// ExtractPDFText extracts text from a PDF. With a query, a context window
// around the first hit is returned; otherwise the leading portion.
func (s *Service) ExtractPDFText(req ExtractTextRequest) (*ExtractTextResult, error) {
	text, err := s.extractor.ExtractText(req.Path)
	if err != nil {
		return nil, err
	}
	return &ExtractTextResult{
		Path: req.Path,
		Text: archive.WindowAround(text, req.Query, queryContextBefore, queryContextAfter, extractFallbackLen),
	}, nil
}

// StoreUpload stages an uploaded PDF, keeping it only when it validates.
func (s *Service) StoreUpload(name string, data []byte) (*archive.ValidationResult, error) {
	return s.uploads.Store(name, data)
}

// MatchesReportSubject reports whether a dataset subject corresponds to a
// subject heading from the missing-questions report.
func (s *Service) MatchesReportSubject(selected, reportSubject string) bool {
	return report.MatchSubject(selected, reportSubject)
}

func (s *Service) indexOf(uniqueID string) int {
	for i := range s.records {
		if s.records[i].UniqueID == uniqueID {
			return i
		}
	}
	return -1
}

func (s *Service) saveLocked() (*SaveResult, error) {
	backup, err := s.store.Save(s.records)
	if err != nil {
		return nil, err
	}
	return &SaveResult{
		Records:    len(s.records),
		Path:       s.store.Path(),
		BackupPath: backup,
	}, nil
}
