package analyzer

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/score2dx/core/ledger"
	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/schema"
)

var (
	// ErrInvalidActivityRange is returned when the activity window is empty or unplaceable.
	ErrInvalidActivityRange = errors.New("invalid activity date time range")
	// ErrUnresolvedPredecessor is returned when an activity entry has no previous state.
	ErrUnresolvedPredecessor = errors.New("activity entry has no predecessor")
	// ErrInvalidRef is returned when resolving a reference outside the analysis.
	ErrInvalidRef = errors.New("invalid activity reference")
)

// SnapshotBucket is the bucket index of the begin snapshot.
const SnapshotBucket = -1

// Ref points at a music score of an ActivityAnalysis: an entry of a bucket,
// or, with Bucket == SnapshotBucket, an element of the begin snapshot.
type Ref struct {
	Bucket int
	Index  int
}

// ActivityEntry is a music played at a bucket's time, linked to the state before it.
type ActivityEntry struct {
	MusicID  int
	Current  schema.MusicScore
	Previous Ref
}

// ActivityBucket holds every music recorded at one date time.
type ActivityBucket struct {
	DateTime time.Time
	Entries  []ActivityEntry
}

// ActivityAnalysis is the result of AnalyzeActivity. An End of zero means the window is open.
type ActivityAnalysis struct {
	Begin time.Time
	End   time.Time

	// PreviousSnapshot is, per play style, the state of every available music
	// right before Begin, sorted by music id.
	PreviousSnapshot [schema.PlayStyleCount][]schema.MusicScore

	// Buckets is, per play style, the activity after the snapshot, sorted by date time.
	Buckets [schema.PlayStyleCount][]ActivityBucket
}

// Resolve returns the music score a reference points at.
func (a *ActivityAnalysis) Resolve(style schema.PlayStyle, ref Ref) (schema.MusicScore, error) {
	if ref.Bucket == SnapshotBucket {
		snapshot := a.PreviousSnapshot[style]
		if ref.Index < 0 || ref.Index >= len(snapshot) {
			return schema.MusicScore{}, fmt.Errorf("%w: %+v", ErrInvalidRef, ref)
		}
		return snapshot[ref.Index], nil
	}
	buckets := a.Buckets[style]
	if ref.Bucket < 0 || ref.Bucket >= len(buckets) || ref.Index < 0 || ref.Index >= len(buckets[ref.Bucket].Entries) {
		return schema.MusicScore{}, fmt.Errorf("%w: %+v", ErrInvalidRef, ref)
	}
	return buckets[ref.Bucket].Entries[ref.Index].Current, nil
}

// Snapshot returns the state of every music of a play style after the given
// bucket has been applied. SnapshotBucket returns the begin snapshot.
func (a *ActivityAnalysis) Snapshot(style schema.PlayStyle, bucket int) (map[int]schema.MusicScore, error) {
	if bucket < SnapshotBucket || bucket >= len(a.Buckets[style]) {
		return nil, fmt.Errorf("%w: bucket %d", ErrInvalidRef, bucket)
	}
	state := make(map[int]schema.MusicScore, len(a.PreviousSnapshot[style]))
	for _, ms := range a.PreviousSnapshot[style] {
		state[ms.MusicID] = ms
	}
	for b := 0; b <= bucket; b++ {
		for _, entry := range a.Buckets[style][b].Entries {
			state[entry.MusicID] = entry.Current
		}
	}
	return state, nil
}

// EntryCount returns the number of activity entries of a play style.
func (a *ActivityAnalysis) EntryCount(style schema.PlayStyle) int {
	count := 0
	for _, bucket := range a.Buckets[style] {
		count += len(bucket.Entries)
	}
	return count
}

// AnalyzeVersionActivity analyzes the whole window of the active version.
func (a *Analyzer) AnalyzeVersionActivity(l *ledger.Ledger) (*ActivityAnalysis, error) {
	window, err := version.FindWindow(a.activeVersion)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeActivity(l, window.Begin, window.Last())
}

type activityItem struct {
	dateTime time.Time
	musicID  int
	score    schema.MusicScore
}

// AnalyzeActivity builds the begin snapshot of every chart available at
// begin's version, then chains every snapshot recorded in [begin, end] to the
// state right before it. A zero end leaves the window open.
func (a *Analyzer) AnalyzeActivity(l *ledger.Ledger, begin, end time.Time) (*ActivityAnalysis, error) {
	versionIndex, ok := version.FindVersionIndex(begin)
	if !ok {
		return nil, fmt.Errorf("%w: begin %s", ErrInvalidActivityRange, version.FormatDateTime(begin))
	}
	if !end.IsZero() && end.Before(begin) {
		return nil, fmt.Errorf("%w: end %s before begin %s", ErrInvalidActivityRange,
			version.FormatDateTime(end), version.FormatDateTime(begin))
	}
	if !a.table.IsActiveVersion(versionIndex) {
		return nil, fmt.Errorf("%w: %s", ErrInactiveVersion, version.FormatVersion(versionIndex))
	}
	window, err := version.FindWindow(versionIndex)
	if err != nil {
		return nil, err
	}

	analysis := &ActivityAnalysis{Begin: begin, End: end}

	var snapshots [schema.PlayStyleCount]map[int]*schema.MusicScore
	var activeDiffs [schema.PlayStyleCount]map[int][]schema.Difficulty
	for style := range schema.PlayStyleCount {
		snapshots[style] = make(map[int]*schema.MusicScore)
		activeDiffs[style] = make(map[int][]schema.Difficulty)
	}

	for _, chart := range a.table.ActiveCharts(versionIndex) {
		musicID, style, diff := chart.ChartID.Split()
		score, ok, err := l.FindChartScoreByTime(a.table, musicID, style, diff, begin, schema.BeforeDateTime)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", chart.ChartID, err)
		}
		if !ok {
			continue
		}
		snapshot, exists := snapshots[style][musicID]
		if !exists {
			ms := schema.NewMusicScore(musicID, style, 0, begin)
			snapshot = &ms
			snapshots[style][musicID] = snapshot
		}
		snapshot.SetChartScore(diff, score)
		activeDiffs[style][musicID] = append(activeDiffs[style][musicID], diff)
	}

	for style := range schema.PlayStyleCount {
		musicIDs := make([]int, 0, len(snapshots[style]))
		for musicID := range snapshots[style] {
			musicIDs = append(musicIDs, musicID)
		}
		slices.Sort(musicIDs)

		var items []activityItem
		for _, musicID := range musicIDs {
			snapshot := snapshots[style][musicID]
			for _, entry := range l.Entries(musicID, schema.PlayStyle(style)) {
				recorded := entry.Score.DateTime
				if !recorded.Before(window.Begin) && recorded.Before(begin) {
					snapshot.PlayCount = entry.Score.PlayCount
				}
				if recorded.Before(begin) || (!end.IsZero() && recorded.After(end)) {
					continue
				}
				if !hasAnyScore(entry.Score, activeDiffs[style][musicID]) {
					continue
				}
				items = append(items, activityItem{dateTime: recorded, musicID: musicID, score: entry.Score.Clone()})
			}
			analysis.PreviousSnapshot[style] = append(analysis.PreviousSnapshot[style], *snapshot)
		}

		buckets, err := chainActivity(items, analysis.PreviousSnapshot[style])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", schema.PlayStyle(style).Acronym(), err)
		}
		analysis.Buckets[style] = buckets
	}

	return analysis, nil
}

// chainActivity groups items into buckets by date time and links each entry
// to the latest earlier state of the same music.
func chainActivity(items []activityItem, snapshot []schema.MusicScore) ([]ActivityBucket, error) {
	slices.SortStableFunc(items, func(a, b activityItem) int {
		if c := a.dateTime.Compare(b.dateTime); c != 0 {
			return c
		}
		return cmp.Compare(a.musicID, b.musicID)
	})

	latest := make(map[int]Ref, len(snapshot))
	for i, ms := range snapshot {
		latest[ms.MusicID] = Ref{Bucket: SnapshotBucket, Index: i}
	}

	var buckets []ActivityBucket
	for _, item := range items {
		if n := len(buckets); n == 0 || !buckets[n-1].DateTime.Equal(item.dateTime) {
			buckets = append(buckets, ActivityBucket{DateTime: item.dateTime})
		}
		bucketIndex := len(buckets) - 1
		bucket := &buckets[bucketIndex]

		previous, ok := latest[item.musicID]
		if !ok {
			return nil, fmt.Errorf("music %s at %s: %w", schema.FormatMusicID(item.musicID),
				version.FormatDateTime(item.dateTime), ErrUnresolvedPredecessor)
		}
		if previous.Bucket == bucketIndex {
			// Two snapshots reported at the same minute; the first one stands.
			continue
		}
		bucket.Entries = append(bucket.Entries, ActivityEntry{
			MusicID:  item.musicID,
			Current:  item.score,
			Previous: previous,
		})
		latest[item.musicID] = Ref{Bucket: bucketIndex, Index: len(bucket.Entries) - 1}
	}
	return buckets, nil
}

func hasAnyScore(ms schema.MusicScore, diffs []schema.Difficulty) bool {
	for _, diff := range diffs {
		if ms.ChartScore(diff) != nil {
			return true
		}
	}
	return false
}
