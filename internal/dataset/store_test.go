package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(filepath.Join(dir, "dataset.jsonl"), filepath.Join(dir, "backups"), zap.NewNop())
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := newTestStore(t)
	records, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStoreSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	records := []Record{
		validRecord("2017", "경영학", 1, "b"),
		validRecord("2016", "경제원론", 1, "a"),
	}

	backup, err := store.Save(records)
	require.NoError(t, err)
	assert.Empty(t, backup, "first save has nothing to back up")

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "a", loaded[0].UniqueID, "save must sort into canonical order")
	assert.Equal(t, "b", loaded[1].UniqueID)
	assert.Equal(t, "경제원론", loaded[0].Metadata.Subject)
}

func TestStoreSaveRefusesEmptyDataset(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Save(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty dataset")
}

func TestStoreSaveBacksUpPreviousFile(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Save([]Record{validRecord("2016", "경제원론", 1, "a")})
	require.NoError(t, err)

	backup, err := store.Save([]Record{
		validRecord("2016", "경제원론", 1, "a"),
		validRecord("2016", "경제원론", 2, "b"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, backup)
	assert.Contains(t, filepath.Base(backup), "backup_")

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"unique_id":"a"`)
	assert.NotContains(t, string(data), `"unique_id":"b"`, "backup must hold the pre-save contents")
}

func TestStoreSaveInvalidRecordLeavesFileUntouched(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Save([]Record{validRecord("2016", "경제원론", 1, "a")})
	require.NoError(t, err)
	before, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	bad := validRecord("2016", "경제원론", 2, "b")
	bad.Metadata.Source = ""
	_, err = store.Save([]Record{validRecord("2016", "경제원론", 1, "a"), bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"source"`)

	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after, "a failed save must not alter the live file")

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be cleaned up")
}

func TestStoreLoadDropsInvalidRecords(t *testing.T) {
	store := newTestStore(t)
	good, err := ExportJSONL([]Record{validRecord("2016", "경제원론", 1, "a")})
	require.NoError(t, err)
	short := validRecord("2016", "경제원론", 2, "bad")
	short.Conversation = short.Conversation[:1]
	badLine, err := ExportJSONL([]Record{short})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), []byte(good+badLine), 0o644))

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1, "a record failing validation must not be loaded")
	assert.Equal(t, "a", records[0].UniqueID)

	// The surviving records must still be saveable.
	_, err = store.Save(records)
	require.NoError(t, err)
}

func TestStoreLoadSkipsMalformedLines(t *testing.T) {
	store := newTestStore(t)
	good, err := ExportJSONL([]Record{validRecord("2016", "경제원론", 1, "a")})
	require.NoError(t, err)
	content := good + "not json at all\n" + "{\"broken\":\n"
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o644))

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].UniqueID)
}
