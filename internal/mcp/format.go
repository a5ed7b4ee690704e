package mcp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/examdata/mcp-exam-curator/internal/curator"
)

func (s *Server) formatOverview(result *curator.OverviewResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset: %s\n", result.DatasetPath)
	fmt.Fprintf(&b, "Total records: %d\n", result.TotalRecords)
	for _, year := range result.Years {
		fmt.Fprintf(&b, "\n%s (%d records)\n", year.Year, year.Total)
		for _, subject := range year.Subjects {
			fmt.Fprintf(&b, "  %s: %d\n", subject.Subject, subject.Count)
		}
	}
	return b.String()
}

func (s *Server) formatListing(result *curator.ListQuestionsResult) string {
	if len(result.Questions) == 0 {
		scope := result.Year
		if result.Subject != "" {
			scope += " " + result.Subject
		}
		return fmt.Sprintf("No questions found for %s", scope)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Questions for %s %s (%d):\n", result.Year, result.Subject, len(result.Questions))
	for _, q := range result.Questions {
		reviewed := " "
		if q.Reviewed {
			reviewed = "R"
		}
		fmt.Fprintf(&b, "[%s] Q%d %s answer=%s id=%s\n", reviewed, q.QuestionNumber, q.Subject, q.Answer, q.UniqueID)
	}
	return b.String()
}

func (s *Server) formatSave(action string, result *curator.SaveResult) string {
	text := fmt.Sprintf("%s. %d records written to %s", action, result.Records, result.Path)
	if result.BackupPath != "" {
		text += fmt.Sprintf("\nBackup: %s", result.BackupPath)
	}
	return text
}

func (s *Server) formatImport(result *curator.ImportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imported %d new, overwrote %d existing records\n", result.Imported, result.Overwritten)
	fmt.Fprintf(&b, "%d records now in %s\n", result.Records, result.Path)
	if result.BackupPath != "" {
		fmt.Fprintf(&b, "Backup: %s\n", result.BackupPath)
	}
	if len(result.Skipped) > 0 {
		fmt.Fprintf(&b, "\nSkipped %d:\n", len(result.Skipped))
		for _, reason := range result.Skipped {
			fmt.Fprintf(&b, "  %s\n", reason)
		}
	}
	return b.String()
}

func (s *Server) formatAnswerKey(path string, key map[int]string) string {
	numbers := make([]int, 0, len(key))
	for n := range key {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	var b strings.Builder
	fmt.Fprintf(&b, "Answer key: %s (%d answers)\n", path, len(key))
	for _, n := range numbers {
		fmt.Fprintf(&b, "%d: %s\n", n, key[n])
	}
	return b.String()
}

func (s *Server) formatCrosscheck(result *curator.CrosscheckResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Crosscheck %s %s: %d match, %d mismatch, %d not applicable\n",
		result.Year, result.Subject, result.Matches, result.Mismatches, result.NotApplicable)
	for _, row := range result.Rows {
		fmt.Fprintf(&b, "Q%d key=%s dataset=%s %s\n",
			row.QuestionNumber, orDash(row.KeyAnswer), orDash(row.DatasetAnswer), row.State)
	}
	return b.String()
}

func (s *Server) formatMissing(result *curator.MissingOverviewResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Missing questions for %s %s\n", result.Year, result.Subject)
	fmt.Fprintf(&b, "Pending (%d): %s\n", len(result.Pending), joinInts(result.Pending))
	fmt.Fprintf(&b, "Manually confirmed (%d): %s\n", len(result.Completed), joinInts(result.Completed))
	return b.String()
}

func (s *Server) formatReviewStats(stats *curator.ReviewStatsResult) string {
	scope := "all records"
	if stats.Year != "" {
		scope = stats.Year
		if stats.Subject != "" {
			scope += " " + stats.Subject
		}
	}
	if stats.Total == 0 {
		return fmt.Sprintf("No records for %s", scope)
	}
	percent := float64(stats.Reviewed) / float64(stats.Total) * 100
	return fmt.Sprintf("Review progress for %s: %d/%d (%.1f%%)", scope, stats.Reviewed, stats.Total, percent)
}

func (s *Server) formatServerInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s v%s\n\n", s.config.ServerName, s.config.Version)
	fmt.Fprintf(&b, "Dataset file:       %s\n", s.config.DatasetFile)
	fmt.Fprintf(&b, "Backup directory:   %s\n", s.config.BackupDir)
	fmt.Fprintf(&b, "Report file:        %s\n", s.config.ReportFile)
	fmt.Fprintf(&b, "Manual check file:  %s\n", s.config.ManualCheckFile)
	fmt.Fprintf(&b, "Review status file: %s\n", s.config.ReviewStatusFile)
	fmt.Fprintf(&b, "PDF archive:        %s\n", s.config.ArchiveDir)
	fmt.Fprintf(&b, "Upload directory:   %s\n", s.config.UploadDir)
	b.WriteString(`
Typical workflow:
  1. dataset_overview to see what is loaded
  2. missing_report to find questions still absent for a year/subject
  3. pdf_locate_exam and pdf_extract_text to read the source paper
  4. dataset_add_question to fill the gaps
  5. answer_crosscheck to verify answers against the official key
  6. review_mark as each question is checked, review_stats for progress
`)
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinInts(nums []int) string {
	if len(nums) == 0 {
		return "none"
	}
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}
