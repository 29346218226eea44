package ledger

import (
	"testing"
	"time"

	"github.com/huangsam/score2dx/core/availability"
	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMusicID = 17001

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := version.ParseDateTime(s)
	require.NoError(t, err)
	return tm
}

func spaScore(t *testing.T, dateTime string, playCount int, clear schema.ClearType, exScore int) schema.MusicScore {
	t.Helper()
	ms := schema.NewMusicScore(testMusicID, schema.SinglePlay, playCount, mustTime(t, dateTime))
	ms.SetChartScore(schema.Another, schema.ChartScore{ClearType: clear, ExScore: exScore})
	return ms
}

func newTable(t *testing.T, versions ...string) *availability.Table {
	t.Helper()
	table := availability.NewTable()
	table.AddMusic(testMusicID, "Sample")
	var entries []availability.Entry
	for _, v := range versions {
		entries = append(entries, availability.Entry{Versions: v, Info: schema.ChartInfo{Level: 10, Note: 1000}})
	}
	require.NoError(t, table.AddAvailability(schema.ToChartID(testMusicID, schema.SinglePlay, schema.Another), entries))
	return table
}

func TestAddMusicScoreValidation(t *testing.T) {
	l := New("1234-5678")

	tests := []struct {
		name     string
		version  int
		score    schema.MusicScore
		expected error
	}{
		{
			name:     "zero time",
			version:  29,
			score:    schema.NewMusicScore(testMusicID, schema.SinglePlay, 1, time.Time{}),
			expected: ErrZeroTime,
		},
		{
			name:     "unsupported version",
			version:  16,
			score:    spaScore(t, "2021-11-01 10:00", 1, schema.EasyClear, 100),
			expected: ErrUnsupportedVersion,
		},
		{
			name:     "before first window",
			version:  17,
			score:    spaScore(t, "2005-01-01 10:00", 1, schema.EasyClear, 100),
			expected: ErrBeforeFirstVersion,
		},
		{
			name:     "before score version",
			version:  29,
			score:    spaScore(t, "2021-01-01 10:00", 1, schema.EasyClear, 100),
			expected: ErrBeforeScoreVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.AddMusicScore(tt.version, tt.score)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
	assert.Equal(t, 0, l.EntryCount())
}

func TestAddMusicScoreAdjustsLateScores(t *testing.T) {
	l := New("1234-5678")
	require.NoError(t, l.AddMusicScore(28, spaScore(t, "2021-11-01 10:00", 5, schema.HardClear, 900)))

	entries := l.Entries(testMusicID, schema.SinglePlay)
	require.Len(t, entries, 1)
	assert.Equal(t, 28, entries[0].Version)
	assert.Equal(t, mustTime(t, "2021-11-01 10:00"), entries[0].OriginalTime)
	assert.Equal(t, mustTime(t, "2021-10-12 23:59"), entries[0].Score.DateTime)
}

func TestAddMusicScoreOrderingAndDuplicates(t *testing.T) {
	l := New("1234-5678")
	require.NoError(t, l.AddMusicScore(29, spaScore(t, "2021-12-01 10:00", 3, schema.HardClear, 300)))
	require.NoError(t, l.AddMusicScore(29, spaScore(t, "2021-11-01 10:00", 1, schema.EasyClear, 100)))
	require.NoError(t, l.AddMusicScore(28, spaScore(t, "2021-01-01 10:00", 9, schema.Failed, 50)))
	require.NoError(t, l.AddMusicScore(29, spaScore(t, "2021-11-01 10:00", 2, schema.FullComboClear, 999)))

	entries := l.Entries(testMusicID, schema.SinglePlay)
	require.Len(t, entries, 3)
	assert.Equal(t, 28, entries[0].Version)
	assert.Equal(t, 100, entries[1].Score.ChartScore(schema.Another).ExScore)
	assert.Equal(t, 300, entries[2].Score.ChartScore(schema.Another).ExScore)

	require.Len(t, l.Diagnostics(), 1)
	assert.Contains(t, l.Diagnostics()[0], "duplicate score of music 17001 SP at 2021-11-01 10:00")
	assert.Equal(t, 3, l.EntryCount())
	assert.Equal(t, []int{testMusicID}, l.MusicIDs())

	table, ok := l.Table(testMusicID)
	require.True(t, ok)
	assert.Len(t, table.VersionEntries(schema.SinglePlay, 29), 2)
	assert.Empty(t, table.VersionEntries(schema.DoublePlay, 29))
	assert.False(t, table.HasScores(schema.DoublePlay))
}

func TestAddMusicScoreDoesNotShareScores(t *testing.T) {
	l := New("1234-5678")
	ms := spaScore(t, "2021-11-01 10:00", 1, schema.EasyClear, 100)
	ms.Charts[schema.Another].MissCount = schema.Miss(5)
	require.NoError(t, l.AddMusicScore(29, ms))

	*ms.Charts[schema.Another].MissCount = 0
	entries := l.Entries(testMusicID, schema.SinglePlay)
	assert.Equal(t, 5, *entries[0].Score.ChartScore(schema.Another).MissCount)
}

func TestFindChartScoreByTime(t *testing.T) {
	// EASY 100 at t1 in version 28, HARD 50 at t3 in version 29.
	l := New("1234-5678")
	require.NoError(t, l.AddMusicScore(28, spaScore(t, "2021-05-01 10:00", 1, schema.EasyClear, 100)))
	require.NoError(t, l.AddMusicScore(29, spaScore(t, "2021-11-01 10:00", 2, schema.HardClear, 50)))

	tests := []struct {
		name     string
		ranges   []string
		dateTime string
		mode     schema.FindMode
		expected schema.ChartScore
	}{
		{
			name:     "inside the first version",
			ranges:   []string{"17-29"},
			dateTime: "2021-06-01 00:00",
			expected: schema.ChartScore{ClearType: schema.EasyClear, ExScore: 100},
		},
		{
			name:     "version begin carries clear type only",
			ranges:   []string{"17-29"},
			dateTime: "2021-10-13 00:00",
			expected: schema.ChartScore{ClearType: schema.EasyClear},
		},
		{
			name:     "after the new score",
			ranges:   []string{"17-29"},
			dateTime: "2021-11-01 10:00",
			expected: schema.ChartScore{ClearType: schema.HardClear, ExScore: 50},
		},
		{
			name:     "before the new score",
			ranges:   []string{"17-29"},
			dateTime: "2021-11-01 10:00",
			mode:     schema.BeforeDateTime,
			expected: schema.ChartScore{ClearType: schema.EasyClear},
		},
		{
			name:     "chart removed in between wipes the clear",
			ranges:   []string{"17-27", "29"},
			dateTime: "2021-10-13 00:00",
			expected: schema.ChartScore{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newTable(t, tt.ranges...)
			score, ok, err := l.FindChartScoreByTime(table, testMusicID, schema.SinglePlay, schema.Another,
				mustTime(t, tt.dateTime), tt.mode)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, score)
		})
	}
}

func TestFindChartScoreByTimeNotFound(t *testing.T) {
	l := New("1234-5678")
	require.NoError(t, l.AddMusicScore(29, spaScore(t, "2021-11-01 10:00", 2, schema.HardClear, 50)))

	table := newTable(t, "17-27")
	_, ok, err := l.FindChartScoreByTime(table, testMusicID, schema.SinglePlay, schema.Another,
		mustTime(t, "2021-12-01 00:00"), schema.AtDateTime)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = l.FindChartScoreByTime(table, testMusicID, schema.SinglePlay, schema.Hyper,
		mustTime(t, "2021-12-01 00:00"), schema.AtDateTime)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindChartScoreByTimeDefaults(t *testing.T) {
	l := New("1234-5678")
	table := newTable(t, "17-29")

	score, ok, err := l.FindChartScoreByTime(table, testMusicID, schema.SinglePlay, schema.Another,
		mustTime(t, "2021-12-01 00:00"), schema.AtDateTime)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, schema.ChartScore{}, score)
}

func TestFindChartScoreByTimeErrors(t *testing.T) {
	l := New("1234-5678")
	table := newTable(t, "17-29")

	_, _, err := l.FindChartScoreByTime(table, 29001, schema.SinglePlay, schema.Another,
		mustTime(t, "2021-01-01 00:00"), schema.AtDateTime)
	assert.ErrorIs(t, err, ErrMusicNotReleased)

	_, _, err = l.FindChartScoreByTime(table, testMusicID, schema.SinglePlay, schema.Another,
		mustTime(t, "2001-01-01 00:00"), schema.AtDateTime)
	assert.ErrorIs(t, err, ErrBeforeFirstVersion)
}
