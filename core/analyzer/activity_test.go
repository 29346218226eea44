package analyzer

import (
	"testing"
	"time"

	"github.com/huangsam/score2dx/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeActivity(t *testing.T) {
	a, err := New(newTestTable(t), 29)
	require.NoError(t, err)

	begin := mustTime(t, "2021-11-02 00:00")
	end := mustTime(t, "2021-11-30 00:00")
	activity, err := a.AnalyzeActivity(newTestLedger(t), begin, end)
	require.NoError(t, err)

	snapshot := activity.PreviousSnapshot[schema.SinglePlay]
	require.Len(t, snapshot, 2)
	assert.Equal(t, alphaID, snapshot[0].MusicID)
	assert.Equal(t, betaID, snapshot[1].MusicID)

	// Clear type carries over from the previous version, the score does not.
	spa := snapshot[0].ChartScore(schema.Another)
	require.NotNil(t, spa)
	assert.Equal(t, schema.EasyClear, spa.ClearType)
	assert.Zero(t, spa.ExScore)
	assert.NotNil(t, snapshot[0].ChartScore(schema.Beginner))
	assert.Nil(t, snapshot[0].ChartScore(schema.Normal))
	assert.Zero(t, snapshot[0].PlayCount)

	assert.Equal(t, 100, snapshot[1].ChartScore(schema.Hyper).ExScore)
	assert.Equal(t, 1, snapshot[1].PlayCount)

	buckets := activity.Buckets[schema.SinglePlay]
	require.Len(t, buckets, 3)
	assert.Equal(t, mustTime(t, "2021-11-02 10:00"), buckets[0].DateTime)
	assert.Equal(t, []Ref{{Bucket: SnapshotBucket, Index: 1}}, refs(buckets[0]))
	assert.Equal(t, []Ref{{Bucket: 0, Index: 0}}, refs(buckets[1]))
	assert.Equal(t, []Ref{{Bucket: SnapshotBucket, Index: 0}}, refs(buckets[2]))
	assert.Equal(t, 3, activity.EntryCount(schema.SinglePlay))

	previous, err := activity.Resolve(schema.SinglePlay, buckets[1].Entries[0].Previous)
	require.NoError(t, err)
	assert.Equal(t, 250, previous.ChartScore(schema.Hyper).ExScore)

	state, err := activity.Snapshot(schema.SinglePlay, 1)
	require.NoError(t, err)
	beta, alpha := state[betaID], state[alphaID]
	assert.Equal(t, 200, beta.ChartScore(schema.Hyper).ExScore)
	assert.Equal(t, schema.EasyClear, alpha.ChartScore(schema.Another).ClearType)

	state, err = activity.Snapshot(schema.SinglePlay, SnapshotBucket)
	require.NoError(t, err)
	beta = state[betaID]
	assert.Equal(t, 100, beta.ChartScore(schema.Hyper).ExScore)

	require.Len(t, activity.PreviousSnapshot[schema.DoublePlay], 1)
	assert.Empty(t, activity.Buckets[schema.DoublePlay])
	assert.Zero(t, activity.EntryCount(schema.DoublePlay))
}

func TestAnalyzeVersionActivity(t *testing.T) {
	a, err := New(newTestTable(t), 29)
	require.NoError(t, err)

	activity, err := a.AnalyzeVersionActivity(newTestLedger(t))
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "2021-10-13 00:00"), activity.Begin)
	assert.True(t, activity.End.IsZero())
	assert.Equal(t, 4, activity.EntryCount(schema.SinglePlay))

	beta := activity.PreviousSnapshot[schema.SinglePlay][1]
	assert.Equal(t, schema.ChartScore{}, *beta.ChartScore(schema.Hyper))
}

func TestAnalyzeActivityErrors(t *testing.T) {
	a, err := New(newTestTable(t), 29)
	require.NoError(t, err)
	l := newTestLedger(t)

	_, err = a.AnalyzeActivity(l, mustTime(t, "2021-11-02 00:00"), mustTime(t, "2021-11-01 00:00"))
	assert.ErrorIs(t, err, ErrInvalidActivityRange)

	_, err = a.AnalyzeActivity(l, mustTime(t, "2001-01-01 00:00"), time.Time{})
	assert.ErrorIs(t, err, ErrInvalidActivityRange)
}

func TestActivityRefs(t *testing.T) {
	a, err := New(newTestTable(t), 29)
	require.NoError(t, err)
	activity, err := a.AnalyzeVersionActivity(newTestLedger(t))
	require.NoError(t, err)

	tests := []struct {
		name string
		ref  Ref
	}{
		{"snapshot out of range", Ref{Bucket: SnapshotBucket, Index: 5}},
		{"bucket out of range", Ref{Bucket: 10, Index: 0}},
		{"entry out of range", Ref{Bucket: 0, Index: 3}},
		{"negative bucket", Ref{Bucket: -2, Index: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := activity.Resolve(schema.SinglePlay, tt.ref)
			assert.ErrorIs(t, err, ErrInvalidRef)
		})
	}

	_, err = activity.Snapshot(schema.SinglePlay, 4)
	assert.ErrorIs(t, err, ErrInvalidRef)
}

func TestChainActivity(t *testing.T) {
	at := mustTime(t, "2021-11-02 10:00")
	snapshot := []schema.MusicScore{schema.NewMusicScore(alphaID, schema.SinglePlay, 0, at)}

	t.Run("same minute keeps first", func(t *testing.T) {
		items := []activityItem{
			{dateTime: at, musicID: alphaID, score: schema.NewMusicScore(alphaID, schema.SinglePlay, 1, at)},
			{dateTime: at, musicID: alphaID, score: schema.NewMusicScore(alphaID, schema.SinglePlay, 2, at)},
		}
		buckets, err := chainActivity(items, snapshot)
		require.NoError(t, err)
		require.Len(t, buckets, 1)
		require.Len(t, buckets[0].Entries, 1)
		assert.Equal(t, 1, buckets[0].Entries[0].Current.PlayCount)
	})

	t.Run("unresolved predecessor", func(t *testing.T) {
		items := []activityItem{
			{dateTime: at, musicID: betaID, score: schema.NewMusicScore(betaID, schema.SinglePlay, 1, at)},
		}
		_, err := chainActivity(items, snapshot)
		assert.ErrorIs(t, err, ErrUnresolvedPredecessor)
	})

	t.Run("sorted by time", func(t *testing.T) {
		later := at.Add(time.Hour)
		items := []activityItem{
			{dateTime: later, musicID: alphaID, score: schema.NewMusicScore(alphaID, schema.SinglePlay, 2, later)},
			{dateTime: at, musicID: alphaID, score: schema.NewMusicScore(alphaID, schema.SinglePlay, 1, at)},
		}
		buckets, err := chainActivity(items, snapshot)
		require.NoError(t, err)
		require.Len(t, buckets, 2)
		assert.Equal(t, Ref{Bucket: SnapshotBucket, Index: 0}, buckets[0].Entries[0].Previous)
		assert.Equal(t, Ref{Bucket: 0, Index: 0}, buckets[1].Entries[0].Previous)
	})
}

func refs(bucket ActivityBucket) []Ref {
	out := make([]Ref, 0, len(bucket.Entries))
	for _, e := range bucket.Entries {
		out = append(out, e.Previous)
	}
	return out
}
