package csvimport

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/score2dx/core/ledger"
	"github.com/huangsam/score2dx/internal/iocache"
	"github.com/huangsam/score2dx/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFilesKeepsInputOrder(t *testing.T) {
	db, table := testMusicDB(t)
	dir := t.TempDir()
	dp := csvContent(csvLine("SIRIUS", "Alpha", 4, nil, "2021-10-20 10:00"))
	paths := []string{
		writeCSV(t, dir, "1234-5678_sp_score.csv", sampleCSV()),
		writeCSV(t, dir, "1234-5678_dp_score.csv", dp),
	}

	loader := NewLoader(db, table, nil, 4)
	files, err := loader.LoadFiles(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, schema.SinglePlay, files[0].PlayStyle)
	assert.Equal(t, schema.DoublePlay, files[1].PlayStyle)
	assert.Equal(t, paths[1], files[1].Path)
}

func TestLoadFilesFailsOnBadFile(t *testing.T) {
	db, table := testMusicDB(t)
	dir := t.TempDir()
	paths := []string{
		writeCSV(t, dir, "1234-5678_sp_score.csv", sampleCSV()),
		writeCSV(t, dir, "bad_name.csv", sampleCSV()),
	}
	_, err := NewLoader(db, table, nil, 2).LoadFiles(context.Background(), paths)
	assert.ErrorIs(t, err, ErrInvalidFilename)
}

func TestLoadFileUsesCache(t *testing.T) {
	db, table := testMusicDB(t)
	path := writeCSV(t, t.TempDir(), "1234-5678_sp_score.csv", sampleCSV())

	cache := &iocache.MockCacheStore{}
	cache.On("Get", mock.Anything).Return(nil, 0, int64(0), sql.ErrNoRows).Once()
	var stored []byte
	cache.On("Set", mock.Anything, mock.Anything, cacheFormatVersion, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).([]byte) }).
		Return(nil).Once()

	loader := NewLoader(db, table, cache, 1)
	first, err := loader.LoadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, stored)

	cache.On("Get", mock.Anything).Return(stored, cacheFormatVersion, int64(1), nil).Once()
	second, err := loader.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first.ScoreVersion, second.ScoreVersion)
	assert.Equal(t, first.LastDateTime, second.LastDateTime)
	require.Len(t, second.MusicScores, len(first.MusicScores))
	assert.Equal(t, *first.MusicScores[0].ChartScore(schema.Another).MissCount,
		*second.MusicScores[0].ChartScore(schema.Another).MissCount)
	cache.AssertExpectations(t)
}

func TestLoadFileIgnoresStaleCacheVersion(t *testing.T) {
	db, table := testMusicDB(t)
	path := writeCSV(t, t.TempDir(), "1234-5678_sp_score.csv", sampleCSV())

	cache := &iocache.MockCacheStore{}
	cache.On("Get", mock.Anything).Return([]byte("{}"), cacheFormatVersion+1, int64(1), nil).Once()
	cache.On("Set", mock.Anything, mock.Anything, cacheFormatVersion, mock.Anything).Return(nil).Once()

	f, err := NewLoader(db, table, cache, 1).LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, f.MusicScores, 2)
	cache.AssertExpectations(t)
}

func TestIngest(t *testing.T) {
	db, table := testMusicDB(t)
	path := writeCSV(t, t.TempDir(), "1234-5678_sp_score.csv", sampleCSV())
	f, err := NewLoader(db, table, nil, 1).LoadFile(path)
	require.NoError(t, err)

	l := ledger.New("1234-5678")
	skipped, err := Ingest(l, f, -1)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Len(t, l.Entries(17001, schema.SinglePlay), 1)
	assert.Equal(t, 29, l.Entries(28001, schema.SinglePlay)[0].Version)

	// Filed under an older version, the scores land after its window and are clamped
	older := ledger.New("1234-5678")
	_, err = Ingest(older, f, 28)
	require.NoError(t, err)
	assert.Equal(t, 28, older.Entries(17001, schema.SinglePlay)[0].Version)

	_, err = Ingest(ledger.New("8765-4321"), f, -1)
	assert.ErrorIs(t, err, ErrIidxIDMismatch)
}

func TestIngestSkipsScoresBeforeVersion(t *testing.T) {
	db, table := testMusicDB(t)
	content := csvContent(
		csvLine("SIRIUS", "Alpha", 1, nil, "2021-11-05 10:00"),
		csvLine("BISTROVER", "Beta (CSV)", 1, nil, "2021-01-05 10:00"),
	)
	f, err := ParseBytes([]byte(content), "1234-5678_sp_score.csv", db, table)
	require.NoError(t, err)

	l := ledger.New("1234-5678")
	skipped, err := Ingest(l, f, -1)
	require.NoError(t, err)
	require.Len(t, skipped, 1)
	assert.Empty(t, l.Entries(28001, schema.SinglePlay))
}
