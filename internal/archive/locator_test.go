package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildArchive(t *testing.T, folder string, names ...string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, folder)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644))
	}
	return root
}

func TestFindExamPDF(t *testing.T) {
	root := buildArchive(t, "16년 공인회계사 1차",
		"2016 경제원론.pdf",
		"2016 경제원론 정답.pdf",
		"2016 상법 세법.pdf",
		"메모.txt",
	)
	loc := NewLocator(root)

	path, err := loc.FindExamPDF("2016", "경제원론")
	require.NoError(t, err)
	assert.Equal(t, "2016 경제원론.pdf", filepath.Base(path), "answer key files must be skipped")

	path, err = loc.FindExamPDF("2016", "상법")
	require.NoError(t, err)
	assert.Equal(t, "2016 상법 세법.pdf", filepath.Base(path))
}

func TestFindExamPDFFourDigitFolder(t *testing.T) {
	root := buildArchive(t, "2016년 기출", "경영 문제지.pdf")
	loc := NewLocator(root)

	path, err := loc.FindExamPDF("2016", "경영학")
	require.NoError(t, err)
	assert.Equal(t, "경영 문제지.pdf", filepath.Base(path), "keyword variants must match")
}

func TestFindExamPDFNoMatch(t *testing.T) {
	root := buildArchive(t, "16년 기출", "2016 회계학.pdf")
	loc := NewLocator(root)

	_, err := loc.FindExamPDF("2016", "경제원론")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "candidates:")

	_, err = loc.FindExamPDF("2017", "회계학")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no archive folder for year 2017")
}

func TestFindAnswerKeyPDFPrefersAuthoritativeMarker(t *testing.T) {
	root := buildArchive(t, "16년 기출",
		"2016 경제원론.pdf",
		"2016 경제원론 가답안.pdf",
		"2016 경제원론 확정정답.pdf",
		"2016 경제원론 정답.pdf",
	)
	loc := NewLocator(root)

	path, err := loc.FindAnswerKeyPDF("2016", "경제원론")
	require.NoError(t, err)
	assert.Equal(t, "2016 경제원론 확정정답.pdf", filepath.Base(path))
}

func TestFindAnswerKeyPDFWholeYearKey(t *testing.T) {
	root := buildArchive(t, "16년 기출",
		"2016 경제원론.pdf",
		"2016 전체정답.pdf",
	)
	loc := NewLocator(root)

	// Combined keys cover every subject of the year; no subject word in
	// the file name is needed.
	path, err := loc.FindAnswerKeyPDF("2016", "경제원론")
	require.NoError(t, err)
	assert.Equal(t, "2016 전체정답.pdf", filepath.Base(path))
}

func TestFindAnswerKeyPDFSubjectBreaksTies(t *testing.T) {
	root := buildArchive(t, "16년 기출",
		"2016 회계학 정답.pdf",
		"2016 경제원론 정답.pdf",
	)
	loc := NewLocator(root)

	path, err := loc.FindAnswerKeyPDF("2016", "경제원론")
	require.NoError(t, err)
	assert.Equal(t, "2016 경제원론 정답.pdf", filepath.Base(path))
}

func TestFindAnswerKeyPDFNoMarker(t *testing.T) {
	root := buildArchive(t, "16년 기출",
		"2016 경제원론.pdf",
	)
	loc := NewLocator(root)

	_, err := loc.FindAnswerKeyPDF("2016", "경제원론")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no answer key PDF for year 2016")
}

func TestAnswerKeyRank(t *testing.T) {
	assert.Greater(t, answerKeyRank("확정정답.pdf"), answerKeyRank("전체정답.pdf"))
	assert.Greater(t, answerKeyRank("전체정답.pdf"), answerKeyRank("최종정답.pdf"))
	assert.Greater(t, answerKeyRank("정답.pdf"), answerKeyRank("가답안.pdf"))
	assert.Zero(t, answerKeyRank("문제지.pdf"))
}

func TestSubjectScoreFallbackKeywords(t *testing.T) {
	assert.Positive(t, subjectScore("2016 재무관리 문제.pdf", "재무관리론"))
	assert.Zero(t, subjectScore("2016 회계학.pdf", "경제원론"))
}
