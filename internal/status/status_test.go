package status

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckKey(t *testing.T) {
	assert.Equal(t, "2016_경제원론_21", CheckKey("2016", "경제원론", 21))
}

func TestManualChecksRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual_check_status.json")

	store, err := LoadManualChecks(path)
	require.NoError(t, err)
	assert.Zero(t, store.Count())

	store.Set("2016_경제원론_21", true)
	store.Set("2016_상법_5", true)
	store.Set("2016_상법_5", false)
	require.NoError(t, store.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "수동으로 확인한 문항의 체크 상태를 저장합니다.")
	assert.Contains(t, string(data), "year_subject_questionNumber: true/false")
	assert.Contains(t, string(data), `"2016_상법_5": false`, "unchecking must persist an explicit false")

	reloaded, err := LoadManualChecks(path)
	require.NoError(t, err)
	assert.True(t, reloaded.IsChecked("2016_경제원론_21"))
	assert.False(t, reloaded.IsChecked("2016_상법_5"))
	assert.Equal(t, 1, reloaded.Count())
	assert.Equal(t, []string{"2016_경제원론_21"}, reloaded.Keys(), "false entries are kept in the file but not confirmed")
}

func TestManualChecksFalseEntriesSurviveResave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual_check_status.json")

	store, err := LoadManualChecks(path)
	require.NoError(t, err)
	store.Set("2016_경제원론_21", false)
	require.NoError(t, store.Save())

	reloaded, err := LoadManualChecks(path)
	require.NoError(t, err)
	require.NoError(t, reloaded.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"2016_경제원론_21": false`, "a resave must not shrink loaded false entries")
}

func TestLoadManualChecksMissingFile(t *testing.T) {
	store, err := LoadManualChecks(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.False(t, store.IsChecked("anything"))
}

func TestLoadManualChecksMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := LoadManualChecks(path)
	assert.Error(t, err)
}

func TestReviewsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review_status.json")

	store, err := LoadReviews(path)
	require.NoError(t, err)

	store.Mark("id-a", true)
	store.Mark("id-b", true)
	store.Mark("id-b", false)
	require.NoError(t, store.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "문항별 검토 완료 상태를 저장합니다.")
	assert.Contains(t, string(data), "unique_id: {checked: bool, timestamp: str}")

	reloaded, err := LoadReviews(path)
	require.NoError(t, err)
	assert.True(t, reloaded.IsReviewed("id-a"))
	assert.False(t, reloaded.IsReviewed("id-b"))
	assert.Equal(t, 1, reloaded.Count())
	assert.Equal(t, 1, reloaded.CountIn([]string{"id-a", "id-b", "id-c"}))
}

func TestReviewReset(t *testing.T) {
	store, err := LoadReviews(filepath.Join(t.TempDir(), "review.json"))
	require.NoError(t, err)
	store.Mark("id-a", true)
	store.Reset()
	assert.Zero(t, store.Count())
	assert.False(t, store.IsReviewed("id-a"))
}
