package best

import (
	"testing"
	"time"

	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const activeVersion = 29

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := version.ParseDateTime(s)
	require.NoError(t, err)
	return tm
}

func newSeededTracker(t *testing.T) *Tracker {
	t.Helper()
	tracker, err := New(activeVersion, 17001, schema.SinglePlay)
	require.NoError(t, err)
	tracker.InitializeVersionBeginChartScore(schema.Hyper, schema.ChartScore{})
	return tracker
}

func score(exScore int) schema.ChartScore {
	return schema.ChartScore{ClearType: schema.NormalClear, ExScore: exScore}
}

func TestNewRejectsVersionWithoutWindow(t *testing.T) {
	_, err := New(10, 10001, schema.SinglePlay)
	assert.ErrorIs(t, err, version.ErrNoWindow)
}

func TestUpdateRequiresSeed(t *testing.T) {
	tracker, err := New(activeVersion, 17001, schema.SinglePlay)
	require.NoError(t, err)

	_, err = tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-11-01 10:00"), score(100), 1)
	assert.ErrorIs(t, err, ErrNotSeeded)

	_, err = tracker.FindBestDifferRecord(schema.ScoreRecord, schema.Hyper)
	assert.ErrorIs(t, err, ErrNotSeeded)
}

func TestSeedIsKeptOnce(t *testing.T) {
	tracker := newSeededTracker(t)
	tracker.InitializeVersionBeginChartScore(schema.Hyper, score(500))

	vb := tracker.VersionBestMusicScore()
	assert.Equal(t, 0, vb.ChartScore(schema.Hyper).ExScore)
	assert.Nil(t, vb.ChartScore(schema.Another))
}

func TestIncreasingScoresDemoteBestOnly(t *testing.T) {
	tracker := newSeededTracker(t)
	times := []string{"2021-11-01 10:00", "2021-11-02 10:00", "2021-11-03 10:00", "2021-11-04 10:00"}

	var previous *schema.ChartScoreRecord
	for i, exScore := range []int{100, 200, 300, 400} {
		inconsistency, err := tracker.UpdateChartScore(schema.Hyper, mustTime(t, times[i]), score(exScore), i+1)
		require.NoError(t, err)
		assert.Empty(t, inconsistency)

		best := tracker.FindBestChartScoreRecord(schema.BestExScore, schema.Hyper)
		second := tracker.FindBestChartScoreRecord(schema.SecondBestExScore, schema.Hyper)
		require.NotNil(t, best)
		assert.Equal(t, exScore, best.Score.ExScore)
		assert.Equal(t, previous, second)
		previous = best
	}
}

func TestBetweenBestAndSecondReplacesSecondOnly(t *testing.T) {
	tracker := newSeededTracker(t)
	_, err := tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-11-01 10:00"), score(100), 1)
	require.NoError(t, err)
	_, err = tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-11-02 10:00"), score(300), 2)
	require.NoError(t, err)
	_, err = tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-11-03 10:00"), score(200), 3)
	require.NoError(t, err)

	assert.Equal(t, 300, tracker.FindBestChartScoreRecord(schema.BestExScore, schema.Hyper).Score.ExScore)
	assert.Equal(t, 200, tracker.FindBestChartScoreRecord(schema.SecondBestExScore, schema.Hyper).Score.ExScore)

	// Equal to best and below second change nothing.
	_, err = tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-11-04 10:00"), score(300), 4)
	require.NoError(t, err)
	_, err = tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-11-05 10:00"), score(150), 5)
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "2021-11-02 10:00"), tracker.FindBestChartScoreRecord(schema.BestExScore, schema.Hyper).DateTime)
	assert.Equal(t, 200, tracker.FindBestChartScoreRecord(schema.SecondBestExScore, schema.Hyper).Score.ExScore)
}

func TestPlayCountMustNotDecrease(t *testing.T) {
	tracker := newSeededTracker(t)
	_, err := tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-11-01 10:00"), score(100), 10)
	require.NoError(t, err)

	_, err = tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-11-02 10:00"), score(200), 9)
	assert.ErrorIs(t, err, ErrPlayCountDecreased)
	assert.Equal(t, 10, tracker.VersionPlayCount(schema.Hyper))
}

func TestVersionBestIsLastWrite(t *testing.T) {
	tracker := newSeededTracker(t)
	var inconsistencies []string
	for i, exScore := range []int{100, 250, 200} {
		dateTime := mustTime(t, "2021-11-01 10:00").Add(time.Duration(i) * time.Hour)
		inconsistency, err := tracker.UpdateChartScore(schema.Hyper, dateTime, score(exScore), i+1)
		require.NoError(t, err)
		inconsistencies = append(inconsistencies, inconsistency)
	}

	vb := tracker.VersionBestMusicScore()
	assert.Equal(t, 200, vb.ChartScore(schema.Hyper).ExScore)
	assert.Equal(t, 3, vb.PlayCount)
	assert.Equal(t, 250, tracker.FindBestChartScoreRecord(schema.BestExScore, schema.Hyper).Score.ExScore)

	assert.Empty(t, inconsistencies[0])
	assert.Empty(t, inconsistencies[1])
	assert.Contains(t, inconsistencies[2], "not incrementally better")
	assert.Len(t, tracker.Diagnostics(), 1)
}

func TestScoresOutsideWindowOnlyUpdateCareer(t *testing.T) {
	tracker := newSeededTracker(t)
	_, err := tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-05-01 10:00"), score(900), 50)
	require.NoError(t, err)

	best := tracker.FindBestChartScoreRecord(schema.BestExScore, schema.Hyper)
	require.NotNil(t, best)
	assert.Equal(t, 28, best.VersionIndex)
	vb := tracker.VersionBestMusicScore()
	assert.Equal(t, 0, vb.ChartScore(schema.Hyper).ExScore)
	assert.Equal(t, 0, tracker.VersionPlayCount(schema.Hyper))

	// A lower play count in the new version is fine.
	_, err = tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-11-01 10:00"), score(100), 1)
	require.NoError(t, err)
}

func TestTrivialScoresSkipCareer(t *testing.T) {
	tracker := newSeededTracker(t)
	_, err := tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-11-01 10:00"), schema.ChartScore{}, 1)
	require.NoError(t, err)

	assert.Nil(t, tracker.FindBestChartScoreRecord(schema.BestExScore, schema.Hyper))
	assert.Nil(t, tracker.FindBestChartScoreRecord(schema.BestMiss, schema.Hyper))
	assert.Equal(t, 1, tracker.VersionBestMusicScore().PlayCount)
}

func TestMissRecords(t *testing.T) {
	tracker := newSeededTracker(t)
	updates := []schema.ChartScore{
		{ClearType: schema.Failed, ExScore: 100, MissCount: schema.Miss(50)},
		{ClearType: schema.EasyClear, ExScore: 150},
		{ClearType: schema.EasyClear, ExScore: 160, MissCount: schema.Miss(30)},
		{ClearType: schema.EasyClear, ExScore: 170, MissCount: schema.Miss(40)},
	}
	for i, s := range updates {
		dateTime := mustTime(t, "2021-11-01 10:00").Add(time.Duration(i) * time.Hour)
		_, err := tracker.UpdateChartScore(schema.Hyper, dateTime, s, i+1)
		require.NoError(t, err)
	}

	assert.Equal(t, 30, *tracker.FindBestChartScoreRecord(schema.BestMiss, schema.Hyper).Score.MissCount)
	assert.Equal(t, 40, *tracker.FindBestChartScoreRecord(schema.SecondBestMiss, schema.Hyper).Score.MissCount)
}

func TestFindBestDifferRecord(t *testing.T) {
	t.Run("version best behind best", func(t *testing.T) {
		tracker := newSeededTracker(t)
		_, err := tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-05-01 10:00"), score(500), 1)
		require.NoError(t, err)
		_, err = tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-11-01 10:00"), score(300), 1)
		require.NoError(t, err)

		record, err := tracker.FindBestDifferRecord(schema.ScoreRecord, schema.Hyper)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, 500, record.Score.ExScore)
	})

	t.Run("version best is best", func(t *testing.T) {
		tracker := newSeededTracker(t)
		_, err := tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-05-01 10:00"), score(300), 1)
		require.NoError(t, err)
		_, err = tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-11-01 10:00"), score(500), 1)
		require.NoError(t, err)

		record, err := tracker.FindBestDifferRecord(schema.ScoreRecord, schema.Hyper)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, 300, record.Score.ExScore)
	})

	t.Run("unique best", func(t *testing.T) {
		tracker := newSeededTracker(t)
		_, err := tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-11-01 10:00"), score(500), 1)
		require.NoError(t, err)

		record, err := tracker.FindBestDifferRecord(schema.ScoreRecord, schema.Hyper)
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("miss without miss count", func(t *testing.T) {
		tracker := newSeededTracker(t)
		_, err := tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-05-01 10:00"),
			schema.ChartScore{ExScore: 100, MissCount: schema.Miss(3)}, 1)
		require.NoError(t, err)

		record, err := tracker.FindBestDifferRecord(schema.MissRecord, schema.Hyper)
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("miss behind best", func(t *testing.T) {
		tracker := newSeededTracker(t)
		_, err := tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-05-01 10:00"),
			schema.ChartScore{ExScore: 100, MissCount: schema.Miss(3)}, 1)
		require.NoError(t, err)
		_, err = tracker.UpdateChartScore(schema.Hyper, mustTime(t, "2021-11-01 10:00"),
			schema.ChartScore{ExScore: 90, MissCount: schema.Miss(8)}, 1)
		require.NoError(t, err)

		record, err := tracker.FindBestDifferRecord(schema.MissRecord, schema.Hyper)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, 3, *record.Score.MissCount)
	})
}
