package outwriter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/internal/parquet"
	"github.com/huangsam/score2dx/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sampleBegin = time.Date(2021, 10, 13, 7, 0, 0, 0, time.UTC)
	sampleEnd   = time.Time{}
)

func int32Ptr(v int32) *int32 { return &v }

func stringPtr(v string) *string { return &v }

func sampleStatisticsRecords() []schema.StatisticsRecord {
	return []schema.StatisticsRecord{
		{StyleDifficulty: "SPH", Dimension: schema.ClearTypeDimension, Label: "NO PLAY", Count: 0, Total: 1},
		{StyleDifficulty: "SPH", Dimension: schema.ClearTypeDimension, Label: "HARD CLEAR", Count: 1, Total: 1},
		{StyleDifficulty: "SPA", Dimension: schema.ClearTypeDimension, Label: "NO PLAY", Count: 1, Total: 3},
		{StyleDifficulty: "SPA", Dimension: schema.ClearTypeDimension, Label: "HARD CLEAR", Count: 2, Total: 3},
		{StyleDifficulty: "SPA", Dimension: schema.CategoryDimension, Label: "AAA-", Count: 2, Total: 3},
	}
}

func sampleChartRecords() []schema.ChartResultRecord {
	return []schema.ChartResultRecord{
		{
			ChartID: 170013, MusicID: 17001, Title: "Alpha", StyleDifficulty: "SPA", Level: 10, NoteCount: 1000,
			ClearType: "HARD CLEAR", DjLevel: "AA", ExScore: 1700, MissCount: int32Ptr(5),
			ScoreLevel: "AAA-", ScoreLevelDiff: "AAA-78", Category: "AAA-",
			CareerBestExScore: int32Ptr(1750), CareerBestVersion: int32Ptr(28),
		},
		{
			ChartID: 280012, MusicID: 28001, Title: "Beta with a rather long title that keeps going", StyleDifficulty: "SPH",
			Level: 8, NoteCount: 600, ClearType: "CLEAR", DjLevel: "C", ExScore: 200,
			ScoreLevel: "C-", ScoreLevelDiff: "C-34", Category: "A-",
		},
	}
}

func sampleActivityRecords() []schema.ActivityRecord {
	return []schema.ActivityRecord{
		{
			DateTime: time.Date(2021, 11, 2, 10, 0, 0, 0, time.UTC), MusicID: 28001, Title: "Beta",
			StyleDifficulty: "SPH", PlayCount: 2, ClearType: "CLEAR", DjLevel: "D", ExScore: 250,
			PreviousClearType: stringPtr("CLEAR"), PreviousExScore: int32Ptr(100),
		},
		{
			DateTime: time.Date(2021, 11, 5, 10, 0, 0, 0, time.UTC), MusicID: 17001, Title: "Alpha",
			StyleDifficulty: "SPA", PlayCount: 20, ClearType: "HARD CLEAR", DjLevel: "AA", ExScore: 1700,
			MissCount: int32Ptr(5), PreviousClearType: stringPtr("EASY CLEAR"), PreviousExScore: int32Ptr(0),
		},
	}
}

func TestWriteStatisticsResults(t *testing.T) {
	dir := t.TempDir()

	t.Run("text", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.TextOut, OutputFile: filepath.Join(dir, "stats.txt")}
		require.NoError(t, WriteStatisticsResults(sampleStatisticsRecords(), 29, cfg))
		out := readOutput(t, cfg.OutputFile)
		assert.Contains(t, out, "Statistics of 29 CastHour")
		assert.Contains(t, out, "Clear types")
		assert.Contains(t, out, "Score levels")
		assert.NotContains(t, out, "DJ levels")
		assert.Contains(t, out, "SPA")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.CSVOut, OutputFile: filepath.Join(dir, "stats.csv"), Precision: 1}
		require.NoError(t, WriteStatisticsResults(sampleStatisticsRecords(), 29, cfg))
		rows := readCSV(t, cfg.OutputFile)
		require.Len(t, rows, 6)
		assert.Equal(t, []string{"SPA", "clear_type", "HARD CLEAR", "2", "3", "66.7"}, rows[4])
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: filepath.Join(dir, "stats.parquet")}
		require.NoError(t, WriteStatisticsResults(sampleStatisticsRecords(), 29, cfg))
		rows, err := parquet.ReadRows[parquet.StatisticsCount](cfg.OutputFile)
		require.NoError(t, err)
		assert.Len(t, rows, 5)
	})
}

func TestPivotStatistics(t *testing.T) {
	p := pivotStatistics(sampleStatisticsRecords(), schema.ClearTypeDimension)
	assert.Equal(t, []string{"SPH", "SPA"}, p.rows)
	assert.Equal(t, []string{"NO PLAY", "HARD CLEAR"}, p.labels)
	assert.Equal(t, 2, p.counts["SPA"]["HARD CLEAR"])
	assert.Equal(t, 3, p.totals["SPA"])

	assert.Empty(t, pivotStatistics(sampleStatisticsRecords(), schema.DjLevelDimension).rows)
}

func TestWriteChartResults(t *testing.T) {
	dir := t.TempDir()

	t.Run("text respects the limit", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.TextOut, OutputFile: filepath.Join(dir, "charts.txt"), ResultLimit: 1, Width: 100, Workers: 2}
		require.NoError(t, WriteChartResults(sampleChartRecords(), cfg, time.Second))
		out := readOutput(t, cfg.OutputFile)
		assert.Contains(t, out, "Alpha")
		assert.Contains(t, out, "1750 (28) +50")
		assert.NotContains(t, out, "Beta")
		assert.Contains(t, out, "Showing 1 of 2 charts")
		assert.Contains(t, out, "with 2 workers")
	})

	t.Run("text truncates titles", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.TextOut, OutputFile: filepath.Join(dir, "charts_long.txt"), Width: 100}
		require.NoError(t, WriteChartResults(sampleChartRecords(), cfg, 0))
		out := readOutput(t, cfg.OutputFile)
		assert.Contains(t, out, "Beta with a ...")
	})

	t.Run("csv has every chart", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.CSVOut, OutputFile: filepath.Join(dir, "charts.csv"), ResultLimit: 1}
		require.NoError(t, WriteChartResults(sampleChartRecords(), cfg, 0))
		rows := readCSV(t, cfg.OutputFile)
		require.Len(t, rows, 3)
		assert.Equal(t, "chart_id", rows[0][0])
		assert.Equal(t, []string{"280012", "28001", "Beta with a rather long title that keeps going", "SPH", "8", "600",
			"CLEAR", "C", "200", "", "C-34", "A-", "", ""}, rows[2])
	})

	t.Run("json", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.JSONOut, OutputFile: filepath.Join(dir, "charts.json")}
		require.NoError(t, WriteChartResults(sampleChartRecords(), cfg, 0))
		var decoded []schema.ChartResultRecord
		readJSON(t, cfg.OutputFile, &decoded)
		require.Len(t, decoded, 2)
		assert.Equal(t, int32(1700), decoded[0].ExScore)
		assert.Nil(t, decoded[1].MissCount)
	})

	t.Run("parquet needs a file", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.ParquetOut}
		assert.ErrorIs(t, WriteChartResults(sampleChartRecords(), cfg, 0), ErrParquetNeedsFile)
	})
}

func TestWriteActivityResults(t *testing.T) {
	dir := t.TempDir()

	t.Run("text keeps the newest updates", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.TextOut, OutputFile: filepath.Join(dir, "activity.txt"), ResultLimit: 1, Width: 120}
		require.NoError(t, WriteActivityResults(sampleActivityRecords(), sampleBegin, sampleEnd, cfg))
		out := readOutput(t, cfg.OutputFile)
		assert.Contains(t, out, "Activity from 2021-10-13 07:00 to now")
		assert.Contains(t, out, "EASY CLEAR -> HARD CLEAR")
		assert.Contains(t, out, "+1700")
		assert.NotContains(t, out, "Beta")
		assert.Contains(t, out, "Showing 1 of 2 updates")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.CSVOut, OutputFile: filepath.Join(dir, "activity.csv")}
		require.NoError(t, WriteActivityResults(sampleActivityRecords(), sampleBegin, sampleEnd, cfg))
		rows := readCSV(t, cfg.OutputFile)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"2021-11-02 10:00", "28001", "Beta", "SPH", "2", "CLEAR", "D", "250", "", "CLEAR", "100"}, rows[1])
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: filepath.Join(dir, "activity.parquet")}
		require.NoError(t, WriteActivityResults(sampleActivityRecords(), sampleBegin, sampleEnd, cfg))
		rows, err := parquet.ReadRows[parquet.ActivityEntry](cfg.OutputFile)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Alpha", rows[1].Title)
	})
}

func TestBuildScoreLevelReport(t *testing.T) {
	report, err := BuildScoreLevelReport(1000, 1700)
	require.NoError(t, err)
	assert.Equal(t, 2000, report.MaxScore)
	require.NotNil(t, report.ExScore)
	assert.Equal(t, "AAA-78", report.ScoreLevel)
	assert.Equal(t, "AA", report.DjLevel)
	assert.Equal(t, "AAA-", report.Category)
	require.Len(t, report.KeyScores, 9)
	assert.Equal(t, KeyScoreEntry{Level: "F", HalfScore: 112, Score: 223}, report.KeyScores[0])
	assert.Equal(t, KeyScoreEntry{Level: "MAX", HalfScore: 1889, Score: 2000}, report.KeyScores[8])

	report, err = BuildScoreLevelReport(1000, -1)
	require.NoError(t, err)
	assert.Nil(t, report.ExScore)
	assert.Empty(t, report.ScoreLevel)

	_, err = BuildScoreLevelReport(0, 10)
	assert.Error(t, err)
}

func TestWriteScoreLevelResults(t *testing.T) {
	dir := t.TempDir()

	cfg := &contract.Config{Output: schema.TextOut, OutputFile: filepath.Join(dir, "level.txt")}
	require.NoError(t, WriteScoreLevelResults(1000, 1700, cfg))
	out := readOutput(t, cfg.OutputFile)
	assert.Contains(t, out, "Notes: 1000, max EX score: 2000")
	assert.Contains(t, out, "EX score 1700 is AAA-78 (DJ level AA, category AAA-)")

	cfg = &contract.Config{Output: schema.CSVOut, OutputFile: filepath.Join(dir, "level.csv")}
	require.NoError(t, WriteScoreLevelResults(1000, -1, cfg))
	rows := readCSV(t, cfg.OutputFile)
	require.Len(t, rows, 10)
	assert.Equal(t, []string{"AAA", "1667", "1778"}, rows[8])

	cfg = &contract.Config{Output: schema.ParquetOut, OutputFile: filepath.Join(dir, "level.parquet")}
	assert.Error(t, WriteScoreLevelResults(1000, 1700, cfg))
}
