package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/internal/iocache"
	"github.com/huangsam/score2dx/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testDatabase = `{
  "musics": [
    {"id": 17001, "title": "Alpha", "difficulty": {"SPA": {"17-29": {"level": 10, "note": 1000}}}},
    {"id": 28001, "title": "Beta", "difficulty": {"SPH": {"28-29": {"level": 8, "note": 600}}}}
  ]
}`

// scoreLine builds one 41 column CSV row with a single chart filled in.
func scoreLine(versionName, title string, playCount int, diff schema.Difficulty, chart []string, dateTime string) string {
	columns := []string{versionName, title, "genre", "artist", fmt.Sprint(playCount)}
	for _, d := range schema.Difficulties {
		if d == diff {
			columns = append(columns, chart...)
			continue
		}
		columns = append(columns, "0", "0", "0", "0", "---", "NO PLAY", "---")
	}
	return strings.Join(append(columns, dateTime), ",")
}

// writeFixtures writes a music database and one SP score CSV, and returns a config using them.
func writeFixtures(t *testing.T) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "musics.json")
	require.NoError(t, os.WriteFile(dbPath, []byte(testDatabase), 0o644))

	header := make([]string, 41)
	for i := range header {
		header[i] = fmt.Sprintf("h%d", i)
	}
	content := strings.Join([]string{
		strings.Join(header, ","),
		scoreLine("SIRIUS", "Alpha", 20, schema.Another, []string{"10", "1700", "800", "100", "5", "HARD CLEAR", "AA"}, "2021-11-05 12:00"),
		scoreLine("BISTROVER", "Beta", 3, schema.Hyper, []string{"8", "200", "80", "40", "30", "CLEAR", "F"}, "2021-11-03 10:00"),
	}, "\n") + "\n"
	csvPath := filepath.Join(dir, "1234-5678_sp_score.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o644))

	return &contract.Config{
		MusicDatabase: dbPath,
		CSVPaths:      []string{csvPath},
		ActiveVersion: 29,
		ScoreVersion:  contract.AutoScoreVersion,
		Styles:        []schema.PlayStyle{schema.SinglePlay, schema.DoublePlay},
		Workers:       2,
	}
}

func nilStoresManager() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetImportStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(nil)
	return mgr
}

func TestLoadSession(t *testing.T) {
	cfg := writeFixtures(t)
	s, err := LoadSession(context.Background(), cfg, nilStoresManager())
	require.NoError(t, err)
	assert.Equal(t, "1234-5678", s.Ledger.IidxID)
	assert.Len(t, s.Files, 1)
	assert.Equal(t, 2, s.Table.MusicCount())
	assert.Equal(t, []int{17001, 28001}, s.Ledger.MusicIDs())
}

func TestLoadSessionErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *contract.Config)
		wantErr error
	}{
		{name: "no music database", mutate: func(cfg *contract.Config) { cfg.MusicDatabase = "" }, wantErr: ErrNoMusicDatabase},
		{name: "no score files", mutate: func(cfg *contract.Config) { cfg.CSVPaths = nil }, wantErr: ErrNoScoreFiles},
		{name: "missing database file", mutate: func(cfg *contract.Config) { cfg.MusicDatabase += ".missing" }},
		{name: "other player", mutate: func(cfg *contract.Config) { cfg.IidxID = "8765-4321" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := writeFixtures(t)
			tt.mutate(cfg)
			_, err := LoadSession(context.Background(), cfg, nil)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestAnalyzeVersionRecordsRun(t *testing.T) {
	cfg := writeFixtures(t)

	store := &iocache.MockAnalysisStore{}
	store.On("BeginAnalysis", mock.Anything, "1234-5678", 29, mock.Anything).Return(int64(7), nil)
	store.On("RecordChartResult", int64(7), mock.Anything).Return(nil).Twice()
	store.On("EndAnalysis", int64(7), mock.Anything, 2).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetImportStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(store)

	result, _, err := GetVersionResults(context.Background(), cfg, mgr)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.AnalysisID)
	assert.Equal(t, 29, result.ActiveVersion)
	require.Len(t, result.Charts, 2)
	for _, c := range result.Charts {
		assert.Equal(t, int64(7), c.AnalysisID)
	}
	assert.Equal(t, "Alpha", result.Charts[0].Title)
	assert.Equal(t, int32(1700), result.Charts[0].ExScore)
	assert.NotEmpty(t, result.Statistics)
	store.AssertExpectations(t)
}

func TestAnalyzeVersionTrackingFailureOnlyWarns(t *testing.T) {
	cfg := writeFixtures(t)

	store := &iocache.MockAnalysisStore{}
	store.On("BeginAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetImportStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(store)

	result, _, err := GetVersionResults(context.Background(), cfg, mgr)
	require.NoError(t, err)
	assert.Zero(t, result.AnalysisID)
	assert.Len(t, result.Charts, 2)
	store.AssertNotCalled(t, "RecordChartResult", mock.Anything, mock.Anything)
}

func TestAnalyzeVersionRejectsInactiveVersion(t *testing.T) {
	cfg := writeFixtures(t)
	cfg.ActiveVersion = 16
	_, _, err := GetVersionResults(context.Background(), cfg, nilStoresManager())
	assert.Error(t, err)
}

func TestGetActivityResults(t *testing.T) {
	cfg := writeFixtures(t)
	result, _, err := GetActivityResults(WithSuppressHeader(context.Background()), cfg, nilStoresManager())
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "Beta", result.Records[0].Title)
	assert.Equal(t, "Alpha", result.Records[1].Title)
	assert.True(t, result.End.IsZero())

	cfg.Begin = result.Records[1].DateTime
	result, _, err = GetActivityResults(context.Background(), cfg, nilStoresManager())
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Alpha", result.Records[0].Title)
}

func TestExecuteCommandsWriteOutput(t *testing.T) {
	tests := []struct {
		name     string
		execute  ExecutorFunc
		contains string
	}{
		{name: "analyze", execute: ExecuteAnalyze, contains: "Alpha"},
		{name: "statistics", execute: ExecuteStatistics, contains: "Clear types"},
		{name: "activity", execute: ExecuteActivity, contains: "Activity from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := writeFixtures(t)
			cfg.Output = schema.TextOut
			cfg.OutputFile = filepath.Join(t.TempDir(), tt.name+".txt")
			cfg.Width = 120
			require.NoError(t, tt.execute(context.Background(), cfg, nilStoresManager()))
			data, err := os.ReadFile(cfg.OutputFile)
			require.NoError(t, err)
			assert.Contains(t, string(data), tt.contains)
		})
	}
}

func TestShouldSuppressHeader(t *testing.T) {
	assert.False(t, shouldSuppressHeader(context.Background()))
	assert.True(t, shouldSuppressHeader(WithSuppressHeader(context.Background())))
}
