package screening

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDetection(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestGather(t *testing.T) {
	dir := t.TempDir()
	writeDetection(t, dir, "Q0001", `{"mono": 0.9, "di": 0.1}`)
	writeDetection(t, dir, "Q0002", `{"mono": 0.2, "sesq": 0.7}`)
	// already-gathered CSVs are skipped
	writeDetection(t, dir, "old.csv", "ID,mono\nX,1\n")

	out := filepath.Join(dir, "detections.csv")
	result, err := Gather(context.Background(), dir, out, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 0, result.Deleted)

	records := readCSV(t, out)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"ID", "di", "mono", "sesq"}, records[0])
	assert.Equal(t, []string{"Q0001", "0.1", "0.9", "0"}, records[1])
	assert.Equal(t, []string{"Q0002", "0", "0.2", "0.7"}, records[2])

	// inputs survive without the delete flag
	_, err = os.Stat(filepath.Join(dir, "Q0001"))
	assert.NoError(t, err)
}

func TestGather_DeleteAfter(t *testing.T) {
	dir := t.TempDir()
	writeDetection(t, dir, "Q0001", `{"mono": 1}`)
	writeDetection(t, dir, "Q0002", `{"mono": 0}`)

	out := filepath.Join(t.TempDir(), "detections.csv")
	result, err := Gather(context.Background(), dir, out, true)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Deleted)

	_, err = os.Stat(filepath.Join(dir, "Q0001"))
	assert.True(t, os.IsNotExist(err))
	// the CSV is still there
	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestGather_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeDetection(t, dir, "Q0001", `{not json`)

	_, err := Gather(context.Background(), dir, filepath.Join(dir, "out.csv"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Q0001")
}

func TestGather_MissingRoot(t *testing.T) {
	_, err := Gather(context.Background(), filepath.Join(t.TempDir(), "absent"), "out.csv", false)
	assert.Error(t, err)
}

func TestGather_EmptyRoot(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "detections.csv")
	result, err := Gather(context.Background(), dir, out, false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Rows)

	records := readCSV(t, out)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"ID"}, records[0])
}

func TestDefaultOutputPath(t *testing.T) {
	now := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)
	assert.Equal(t,
		filepath.Join("root", "detections_20260823-103000.csv"),
		DefaultOutputPath("root", now))
}
