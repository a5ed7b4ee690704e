package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/examdata/mcp-exam-curator/internal/config"
	"github.com/examdata/mcp-exam-curator/internal/curator"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DatasetFile = filepath.Join(dir, "dataset.jsonl")
	cfg.BackupDir = filepath.Join(dir, "backups")
	cfg.ReportFile = filepath.Join(dir, "error_report.md")
	cfg.ManualCheckFile = filepath.Join(dir, "manual_check_status.json")
	cfg.ReviewStatusFile = filepath.Join(dir, "review_status.json")
	cfg.ArchiveDir = filepath.Join(dir, "raw_pdfs")
	cfg.UploadDir = filepath.Join(dir, "uploads")

	service, err := curator.NewService(cfg, zap.NewNop())
	require.NoError(t, err)

	srv, err := NewServer(cfg, service, zap.NewNop())
	require.NoError(t, err)
	return srv
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
	}
	t.Fatal("expected text content")
	return ""
}

const recordJSON = `{"conversation":[{"role":"user","content":"다음 중 옳은 것은?"},{"role":"assistant","content":"정답: ③"}],"metadata":{"year":"2016","subject":"경제원론","question_number":1,"source":"2016년 공인회계사 1차"},"unique_id":"q1"}`

func TestNewServerRequiresService(t *testing.T) {
	_, err := NewServer(config.DefaultConfig(), nil, zap.NewNop())
	assert.Error(t, err)
}

func TestHandleDatasetOverviewEmpty(t *testing.T) {
	srv := testServer(t)

	result, err := srv.handleDatasetOverview(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Total records: 0")
}

func TestHandleDatasetAddAndList(t *testing.T) {
	srv := testServer(t)

	result, err := srv.handleDatasetAddQuestion(context.Background(), callRequest(map[string]interface{}{
		"record": recordJSON,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.Contains(t, resultText(t, result), "Question added")

	result, err = srv.handleDatasetListQuestions(context.Background(), callRequest(map[string]interface{}{
		"year":    "2016",
		"subject": "경제원론",
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Q1")
	assert.Contains(t, text, "answer=③")
	assert.Contains(t, text, "id=q1")
}

func TestHandleDatasetAddQuestionRejectsBadJSON(t *testing.T) {
	srv := testServer(t)

	result, err := srv.handleDatasetAddQuestion(context.Background(), callRequest(map[string]interface{}{
		"record": "{not json",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleDatasetAddQuestionRequiresRecord(t *testing.T) {
	srv := testServer(t)

	result, err := srv.handleDatasetAddQuestion(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleDatasetGetQuestion(t *testing.T) {
	srv := testServer(t)

	result, err := srv.handleDatasetAddQuestion(context.Background(), callRequest(map[string]interface{}{
		"record": recordJSON,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = srv.handleDatasetGetQuestion(context.Background(), callRequest(map[string]interface{}{
		"unique_id": "q1",
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, `"unique_id": "q1"`)
	assert.Contains(t, text, "경제원론")

	result, err = srv.handleDatasetGetQuestion(context.Background(), callRequest(map[string]interface{}{
		"unique_id": "missing",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleDatasetSaveEmptyDataset(t *testing.T) {
	srv := testServer(t)

	result, err := srv.handleDatasetSave(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError, "saving an empty dataset must be refused")
}

func TestHandleDatasetImportText(t *testing.T) {
	srv := testServer(t)

	result, err := srv.handleDatasetImportText(context.Background(), callRequest(map[string]interface{}{
		"text": recordJSON,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.Contains(t, resultText(t, result), "Imported 1 new")
}

func TestHandleReviewFlow(t *testing.T) {
	srv := testServer(t)

	result, err := srv.handleDatasetAddQuestion(context.Background(), callRequest(map[string]interface{}{
		"record": recordJSON,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = srv.handleReviewMark(context.Background(), callRequest(map[string]interface{}{
		"unique_id": "q1",
		"checked":   true,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = srv.handleReviewStats(context.Background(), callRequest(map[string]interface{}{
		"year": "2016",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "1/1")

	result, err = srv.handleReviewReset(context.Background(), callRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = srv.handleReviewStats(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "0/1")
}

func TestHandleManualCheckSetRequiresArguments(t *testing.T) {
	srv := testServer(t)

	result, err := srv.handleManualCheckSet(context.Background(), callRequest(map[string]interface{}{
		"year": "2016",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandlePDFLocateExamWithoutArchive(t *testing.T) {
	srv := testServer(t)

	result, err := srv.handlePDFLocateExam(context.Background(), callRequest(map[string]interface{}{
		"year":    "2016",
		"subject": "경제원론",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandlePDFUploadRejectsBadBase64(t *testing.T) {
	srv := testServer(t)

	result, err := srv.handlePDFUpload(context.Background(), callRequest(map[string]interface{}{
		"filename":       "exam.pdf",
		"content_base64": "!!!not base64!!!",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleServerInfo(t *testing.T) {
	srv := testServer(t)

	result, err := srv.handleServerInfo(context.Background(), callRequest(nil))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.True(t, strings.HasPrefix(text, "mcp-exam-curator"))
	assert.Contains(t, text, "dataset_overview")
}
