package outwriter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildVersionEntries(t *testing.T) {
	entries, err := BuildVersionEntries()
	require.NoError(t, err)
	require.Len(t, entries, version.Count-version.FirstDateTimeVersionIndex)

	first := entries[0]
	assert.Equal(t, version.FirstDateTimeVersionIndex, first.Index)
	assert.Equal(t, "SIRIUS", first.Name)
	assert.NotEmpty(t, first.End)

	last := entries[len(entries)-1]
	assert.Equal(t, version.LatestVersionIndex, last.Index)
	assert.Empty(t, last.End, "The latest version has an open window")

	// Each window ends the minute before the next begins.
	for i := 1; i < len(entries); i++ {
		prevEnd, err := version.ParseDateTime(entries[i-1].End)
		require.NoError(t, err)
		begin, err := version.ParseDateTime(entries[i].Begin)
		require.NoError(t, err)
		assert.Equal(t, begin, prevEnd.Add(time.Minute), "entry %d", i)
	}
}

func TestWriteVersionList(t *testing.T) {
	dir := t.TempDir()

	cfg := &contract.Config{Output: schema.CSVOut, OutputFile: filepath.Join(dir, "versions.csv")}
	require.NoError(t, NewOutWriter().WriteVersions(cfg))
	rows := readCSV(t, cfg.OutputFile)
	assert.Equal(t, []string{"index", "name", "begin", "end"}, rows[0])
	assert.Equal(t, "17", rows[1][0])
	assert.Equal(t, "SIRIUS", rows[1][1])

	cfg = &contract.Config{Output: schema.TextOut, OutputFile: filepath.Join(dir, "versions.txt")}
	require.NoError(t, WriteVersionList(cfg))
	out := readOutput(t, cfg.OutputFile)
	assert.Contains(t, out, "CastHour")
	assert.Contains(t, out, "BISTROVER")

	cfg = &contract.Config{Output: schema.ParquetOut, OutputFile: filepath.Join(dir, "versions.parquet")}
	assert.Error(t, WriteVersionList(cfg))
}
