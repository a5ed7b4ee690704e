package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLine = `{"conversation":[{"role":"user","content":"문제"},{"role":"assistant","content":"정답: ①"}],"metadata":{"year":"2016","subject":"경제원론","question_number":1,"source":"2016년 공인회계사 1차"},"unique_id":"x1"}`

func TestParsePastedJSONLines(t *testing.T) {
	text := sampleLine + "\n\n" + sampleLine + "\n"
	records, skipped, err := ParsePasted(text)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Empty(t, skipped)
	assert.Equal(t, "x1", records[0].UniqueID)
	assert.Equal(t, "경제원론", records[0].Metadata.Subject)
}

func TestParsePastedJSONArray(t *testing.T) {
	text := "[" + sampleLine + "," + sampleLine + "]"
	records, skipped, err := ParsePasted(text)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Empty(t, skipped)
}

func TestParsePastedEmpty(t *testing.T) {
	records, skipped, err := ParsePasted("   \n  ")
	require.NoError(t, err)
	assert.Nil(t, records)
	assert.Nil(t, skipped)
}

func TestParsePastedSkipsBadLines(t *testing.T) {
	text := sampleLine + "\nhello world\n{\"broken json\n" + sampleLine
	records, skipped, err := ParsePasted(text)
	require.NoError(t, err, "bad lines must not abort the paste")
	require.Len(t, records, 2)
	require.Len(t, skipped, 2)
	assert.Contains(t, skipped[0], "line 2")
	assert.Contains(t, skipped[1], "line 3")
}

func TestParsePastedSkipsUnrelatedObject(t *testing.T) {
	records, skipped, err := ParsePasted(`{"foo": 1}` + "\n" + sampleLine)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0], "neither conversation nor metadata")
}

func TestParsePastedSkipsBadArrayElement(t *testing.T) {
	records, skipped, err := ParsePasted("[" + sampleLine + `,{"foo":1}]`)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0], "array element 1")
}

func TestParsePastedRejectsMalformedArray(t *testing.T) {
	_, _, err := ParsePasted("[" + sampleLine)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON array")
}
