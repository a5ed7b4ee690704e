// Package mcp exposes the curation service as a Model Context Protocol
// tool surface.
package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/examdata/mcp-exam-curator/internal/config"
	"github.com/examdata/mcp-exam-curator/internal/curator"
	"github.com/examdata/mcp-exam-curator/internal/dataset"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *curator.Service
	mcpServer *server.MCPServer
	logger    *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *curator.Service, logger *zap.Logger) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
		logger:    logger,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"dataset_overview",
		mcp.WithDescription("Summarize the dataset: record counts per exam year and subject"),
	), s.handleDatasetOverview)

	s.mcpServer.AddTool(mcp.NewTool(
		"dataset_list_questions",
		mcp.WithDescription("List questions for a year and optional subject, ordered by question number"),
		mcp.WithString("year",
			mcp.Required(),
			mcp.Description("Exam year, e.g. 2016"),
		),
		mcp.WithString("subject",
			mcp.Description("Subject name (all subjects if empty)"),
		),
	), s.handleDatasetListQuestions)

	s.mcpServer.AddTool(mcp.NewTool(
		"dataset_get_question",
		mcp.WithDescription("Get one question record by unique_id, including its review state"),
		mcp.WithString("unique_id",
			mcp.Required(),
			mcp.Description("The record's unique_id"),
		),
	), s.handleDatasetGetQuestion)

	s.mcpServer.AddTool(mcp.NewTool(
		"dataset_add_question",
		mcp.WithDescription("Validate and insert a question record, then save the dataset"),
		mcp.WithString("record",
			mcp.Required(),
			mcp.Description("The record as a JSON object with conversation, metadata, and optional unique_id"),
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Replace an existing record with the same unique_id"),
		),
	), s.handleDatasetAddQuestion)

	s.mcpServer.AddTool(mcp.NewTool(
		"dataset_update_question",
		mcp.WithDescription("Replace an existing question record by unique_id, then save the dataset"),
		mcp.WithString("record",
			mcp.Required(),
			mcp.Description("The full replacement record as a JSON object"),
		),
	), s.handleDatasetUpdateQuestion)

	s.mcpServer.AddTool(mcp.NewTool(
		"dataset_save",
		mcp.WithDescription("Save the dataset: back up the current file, sort records, and rewrite atomically"),
	), s.handleDatasetSave)

	s.mcpServer.AddTool(mcp.NewTool(
		"dataset_export_subset",
		mcp.WithDescription("Export one year/subject slice of the dataset as JSONL"),
		mcp.WithString("year",
			mcp.Required(),
			mcp.Description("Exam year"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Subject name"),
		),
	), s.handleDatasetExportSubset)

	s.mcpServer.AddTool(mcp.NewTool(
		"dataset_import_text",
		mcp.WithDescription("Bulk-import question records pasted as JSONL lines or a JSON array"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("JSONL lines or a JSON array of record objects"),
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Replace existing records with matching unique_ids"),
		),
	), s.handleDatasetImportText)

	s.mcpServer.AddTool(mcp.NewTool(
		"answer_key_parse",
		mcp.WithDescription("Locate the answer key PDF for a year/subject and parse it into question/answer pairs"),
		mcp.WithString("year",
			mcp.Required(),
			mcp.Description("Exam year"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Subject name"),
		),
	), s.handleAnswerKeyParse)

	s.mcpServer.AddTool(mcp.NewTool(
		"answer_crosscheck",
		mcp.WithDescription("Compare every dataset answer for a year/subject against the parsed answer key"),
		mcp.WithString("year",
			mcp.Required(),
			mcp.Description("Exam year"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Subject name"),
		),
	), s.handleAnswerCrosscheck)

	s.mcpServer.AddTool(mcp.NewTool(
		"missing_report",
		mcp.WithDescription("List reportedly missing questions for a year/subject, split by manual-check state"),
		mcp.WithString("year",
			mcp.Required(),
			mcp.Description("Exam year"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Subject name"),
		),
	), s.handleMissingReport)

	s.mcpServer.AddTool(mcp.NewTool(
		"manual_check_set",
		mcp.WithDescription("Mark or unmark one reportedly missing question as manually confirmed"),
		mcp.WithString("year",
			mcp.Required(),
			mcp.Description("Exam year"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Subject name"),
		),
		mcp.WithNumber("question_number",
			mcp.Required(),
			mcp.Description("Question number"),
		),
		mcp.WithBoolean("checked",
			mcp.Required(),
			mcp.Description("true to confirm, false to clear"),
		),
	), s.handleManualCheckSet)

	s.mcpServer.AddTool(mcp.NewTool(
		"review_mark",
		mcp.WithDescription("Mark or unmark one record as reviewed"),
		mcp.WithString("unique_id",
			mcp.Required(),
			mcp.Description("The record's unique_id"),
		),
		mcp.WithBoolean("checked",
			mcp.Required(),
			mcp.Description("true to mark reviewed, false to clear"),
		),
	), s.handleReviewMark)

	s.mcpServer.AddTool(mcp.NewTool(
		"review_reset",
		mcp.WithDescription("Clear every review mark"),
	), s.handleReviewReset)

	s.mcpServer.AddTool(mcp.NewTool(
		"review_stats",
		mcp.WithDescription("Report review progress, optionally narrowed to a year and subject"),
		mcp.WithString("year",
			mcp.Description("Exam year (all years if empty)"),
		),
		mcp.WithString("subject",
			mcp.Description("Subject name (all subjects if empty)"),
		),
	), s.handleReviewStats)

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_locate_exam",
		mcp.WithDescription("Locate the question paper PDF for a year/subject in the archive"),
		mcp.WithString("year",
			mcp.Required(),
			mcp.Description("Exam year"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Subject name"),
		),
	), s.handlePDFLocateExam)

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_locate_answer_key",
		mcp.WithDescription("Locate the most authoritative answer key PDF for a year/subject in the archive"),
		mcp.WithString("year",
			mcp.Required(),
			mcp.Description("Exam year"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Subject name"),
		),
	), s.handlePDFLocateAnswerKey)

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_extract_text",
		mcp.WithDescription("Extract text from a PDF, optionally windowed around the first hit of a query"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithString("query",
			mcp.Description("Optional text to center the extraction window on"),
		),
	), s.handlePDFExtractText)

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_upload",
		mcp.WithDescription("Store a PDF in the upload directory, keeping it only if it validates"),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Bare file name ending in .pdf"),
		),
		mcp.WithString("content_base64",
			mcp.Required(),
			mcp.Description("Base64-encoded file contents"),
		),
	), s.handlePDFUpload)

	s.mcpServer.AddTool(mcp.NewTool(
		"curator_server_info",
		mcp.WithDescription("Get server information, configured paths, and usage guidance"),
	), s.handleServerInfo)
}

// Handler functions
func (s *Server) handleDatasetOverview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatOverview(s.service.Overview())), nil
}

func (s *Server) handleDatasetListQuestions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year, err := request.RequireString("year")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	subject := request.GetString("subject", "")

	return mcp.NewToolResultText(s.formatListing(s.service.ListQuestions(year, subject))), nil
}

func (s *Server) handleDatasetGetQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uniqueID, err := request.RequireString("unique_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	detail, err := s.service.GetQuestion(uniqueID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.jsonResult(detail)
}

func (s *Server) handleDatasetAddQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, errResult := s.recordArgument(request)
	if errResult != nil {
		return errResult, nil
	}

	result, err := s.service.AddQuestion(curator.AddQuestionRequest{
		Record:    rec,
		Overwrite: request.GetBool("overwrite", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatSave("Question added", result)), nil
}

func (s *Server) handleDatasetUpdateQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, errResult := s.recordArgument(request)
	if errResult != nil {
		return errResult, nil
	}

	result, err := s.service.UpdateQuestion(rec)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatSave("Question updated", result)), nil
}

func (s *Server) handleDatasetSave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.service.SaveDataset()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatSave("Dataset saved", result)), nil
}

func (s *Server) handleDatasetExportSubset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year, subject, errResult := s.yearSubjectArguments(request)
	if errResult != nil {
		return errResult, nil
	}

	filename, content, err := s.service.ExportSubset(year, subject)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Suggested file name: %s\n\n%s", filename, content)), nil
}

func (s *Server) handleDatasetImportText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.ImportText(text, request.GetBool("overwrite", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatImport(result)), nil
}

func (s *Server) handleAnswerKeyParse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year, subject, errResult := s.yearSubjectArguments(request)
	if errResult != nil {
		return errResult, nil
	}

	path, key, err := s.service.ParseAnswerKey(year, subject)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatAnswerKey(path, key)), nil
}

func (s *Server) handleAnswerCrosscheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year, subject, errResult := s.yearSubjectArguments(request)
	if errResult != nil {
		return errResult, nil
	}

	result, err := s.service.Crosscheck(year, subject)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatCrosscheck(result)), nil
}

func (s *Server) handleMissingReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year, subject, errResult := s.yearSubjectArguments(request)
	if errResult != nil {
		return errResult, nil
	}

	result, err := s.service.MissingOverview(year, subject)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatMissing(result)), nil
}

func (s *Server) handleManualCheckSet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year, subject, errResult := s.yearSubjectArguments(request)
	if errResult != nil {
		return errResult, nil
	}
	questionNumber, err := request.RequireInt("question_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	checked, err := request.RequireBool("checked")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.service.SetManualCheck(year, subject, questionNumber, checked); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state := "cleared"
	if checked {
		state = "confirmed"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Manual check %s for %s %s question %d", state, year, subject, questionNumber)), nil
}

func (s *Server) handleReviewMark(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uniqueID, err := request.RequireString("unique_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	checked, err := request.RequireBool("checked")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.service.MarkReviewed(uniqueID, checked); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state := "cleared"
	if checked {
		state = "marked reviewed"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Record %s %s", uniqueID, state)), nil
}

func (s *Server) handleReviewReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.service.ResetReviews(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("All review marks cleared"), nil
}

func (s *Server) handleReviewStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year := request.GetString("year", "")
	subject := request.GetString("subject", "")

	stats := s.service.ReviewStats(year, subject)
	return mcp.NewToolResultText(s.formatReviewStats(stats)), nil
}

func (s *Server) handlePDFLocateExam(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year, subject, errResult := s.yearSubjectArguments(request)
	if errResult != nil {
		return errResult, nil
	}

	path, err := s.service.LocateExamPDF(year, subject)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Exam PDF: %s", path)), nil
}

func (s *Server) handlePDFLocateAnswerKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year, subject, errResult := s.yearSubjectArguments(request)
	if errResult != nil {
		return errResult, nil
	}

	path, err := s.service.LocateAnswerKeyPDF(year, subject)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Answer key PDF: %s", path)), nil
}

func (s *Server) handlePDFExtractText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.ExtractPDFText(curator.ExtractTextRequest{
		Path:  path,
		Query: request.GetString("query", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Text from %s:\n\n%s", result.Path, result.Text)), nil
}

func (s *Server) handlePDFUpload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := request.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	encoded, err := request.RequireString("content_base64")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid base64 content: %v", err)), nil
	}

	result, err := s.service.StoreUpload(filename, data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !result.Valid {
		return mcp.NewToolResultError(fmt.Sprintf("upload rejected: %s", result.Message)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Uploaded %s (%d bytes): %s", result.Path, result.Size, result.Message)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatServerInfo()), nil
}

// recordArgument decodes the "record" string argument into a dataset
// record.
func (s *Server) recordArgument(request mcp.CallToolRequest) (dataset.Record, *mcp.CallToolResult) {
	raw, err := request.RequireString("record")
	if err != nil {
		return dataset.Record{}, mcp.NewToolResultError(err.Error())
	}
	var rec dataset.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return dataset.Record{}, mcp.NewToolResultError(fmt.Sprintf("record is not a valid JSON object: %v", err))
	}
	return rec, nil
}

func (s *Server) yearSubjectArguments(request mcp.CallToolRequest) (year, subject string, errResult *mcp.CallToolResult) {
	year, err := request.RequireString("year")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	subject, err = request.RequireString("subject")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	return year, subject, nil
}

func (s *Server) jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		s.logger.Debug("starting exam curator MCP server in stdio mode",
			zap.String("dataset", s.config.DatasetFile),
			zap.String("archive", s.config.ArchiveDir))
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// The mark3labs library handles transports differently; stdio is the
	// only supported transport for now.
	s.logger.Warn("server mode not yet implemented, falling back to stdio mode",
		zap.String("address", s.config.Address()))
	return s.runStdioMode(ctx)
}
