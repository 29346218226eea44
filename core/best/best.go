// Package best tracks, for one music and play style, the version best of the
// active version and the career best and second best records per difficulty.
package best

import (
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/schema"
)

var (
	// ErrNotSeeded is returned when a difficulty is updated before its version begin score is set.
	ErrNotSeeded = errors.New("version begin chart score is not initialized")
	// ErrPlayCountDecreased is returned when play counts go backwards inside the active version.
	ErrPlayCountDecreased = errors.New("chart play count is not incremental")
	// ErrBestInconsistent is returned when the version best beats the tracked career best.
	ErrBestInconsistent = errors.New("version best is better than career best")
)

// Tracker accumulates best records of one music and play style.
type Tracker struct {
	activeVersion int
	window        version.Window
	versionBest   schema.MusicScore
	playCounts    [schema.DifficultyCount]int
	records       [schema.BestScoreTypeCount][schema.DifficultyCount]*schema.ChartScoreRecord
	diagnostics   []string
}

// New creates a tracker for the active version.
func New(activeVersion, musicID int, style schema.PlayStyle) (*Tracker, error) {
	window, err := version.FindWindow(activeVersion)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		activeVersion: activeVersion,
		window:        window,
		versionBest:   schema.NewMusicScore(musicID, style, 0, window.Begin),
	}, nil
}

// ActiveVersion returns the version the tracker was built for.
func (t *Tracker) ActiveVersion() int {
	return t.activeVersion
}

// InitializeVersionBeginChartScore seeds the version best of a difficulty with
// its score at the version begin. Seeding twice keeps the first seed.
func (t *Tracker) InitializeVersionBeginChartScore(diff schema.Difficulty, score schema.ChartScore) {
	if t.versionBest.ChartScore(diff) != nil {
		return
	}
	t.versionBest.SetChartScore(diff, score)
	t.playCounts[diff] = 0
}

// UpdateChartScore feeds one recorded score. It returns a description of the
// inconsistency when the score is worse than the version best it replaces,
// or an empty string.
func (t *Tracker) UpdateChartScore(diff schema.Difficulty, dateTime time.Time, score schema.ChartScore, playCount int) (string, error) {
	previous := t.versionBest.ChartScore(diff)
	if previous == nil {
		return "", fmt.Errorf("%s %s: %w", schema.FormatMusicID(t.versionBest.MusicID),
			schema.ToStyleDifficulty(t.versionBest.PlayStyle, diff), ErrNotSeeded)
	}

	recordVersion, ok := version.FindVersionIndex(dateTime)
	if !ok {
		return "", fmt.Errorf("%s: no version for %s", schema.FormatMusicID(t.versionBest.MusicID), version.FormatDateTime(dateTime))
	}
	record := schema.ChartScoreRecord{Score: score.Clone(), VersionIndex: recordVersion, DateTime: dateTime}

	if !score.IsTrivial() {
		t.updateBest(schema.ScoreRecord, schema.BestExScore, schema.SecondBestExScore, diff, record)
		if schema.HasRecord(schema.MissRecord, score) {
			t.updateBest(schema.MissRecord, schema.BestMiss, schema.SecondBestMiss, diff, record)
		}
	}

	if !t.window.Contains(dateTime) {
		return "", nil
	}

	if playCount < t.playCounts[diff] {
		return "", fmt.Errorf("%s %s at %s: %d < %d: %w", schema.FormatMusicID(t.versionBest.MusicID),
			schema.ToStyleDifficulty(t.versionBest.PlayStyle, diff), version.FormatDateTime(dateTime),
			playCount, t.playCounts[diff], ErrPlayCountDecreased)
	}
	t.playCounts[diff] = playCount
	t.versionBest.PlayCount = max(t.versionBest.PlayCount, playCount)
	t.versionBest.DateTime = dateTime

	var inconsistency string
	if isRegression(*previous, score) {
		inconsistency = fmt.Sprintf("chart score is not incrementally better within version %s %s\n"+
			"music %s %s at %s\nprevious %s\ncurrent %s",
			version.FormatVersion(t.activeVersion), t.window,
			schema.FormatMusicID(t.versionBest.MusicID), schema.ToStyleDifficulty(t.versionBest.PlayStyle, diff),
			version.FormatDateTime(dateTime), previous, score)
		t.diagnostics = append(t.diagnostics, inconsistency)
	}
	t.versionBest.SetChartScore(diff, score)
	return inconsistency, nil
}

// updateBest promotes or demotes a record among best and second best.
// A record equal to the best changes nothing.
func (t *Tracker) updateBest(rt schema.RecordType, bestType, secondType schema.BestScoreType, diff schema.Difficulty, record schema.ChartScoreRecord) {
	best := t.records[bestType][diff]
	switch {
	case best == nil:
		t.records[bestType][diff] = &record
	case schema.IsBetterRecord(rt, record.Score, best.Score):
		t.records[secondType][diff] = best
		t.records[bestType][diff] = &record
	case schema.IsBetterRecord(rt, best.Score, record.Score):
		second := t.records[secondType][diff]
		if second == nil || schema.IsBetterRecord(rt, record.Score, second.Score) {
			t.records[secondType][diff] = &record
		}
	}
}

func isRegression(previous, current schema.ChartScore) bool {
	if previous.ClearType > current.ClearType || previous.DjLevel > current.DjLevel || previous.ExScore > current.ExScore {
		return true
	}
	return previous.MissCount != nil && current.MissCount != nil && *previous.MissCount < *current.MissCount
}

// VersionBestMusicScore returns the version best of every seeded difficulty.
func (t *Tracker) VersionBestMusicScore() schema.MusicScore {
	return t.versionBest
}

// VersionPlayCount returns the last play count seen for a difficulty inside the active version.
func (t *Tracker) VersionPlayCount(diff schema.Difficulty) int {
	return t.playCounts[diff]
}

// FindBestChartScoreRecord returns a career record, or nil if there is none.
func (t *Tracker) FindBestChartScoreRecord(bestType schema.BestScoreType, diff schema.Difficulty) *schema.ChartScoreRecord {
	return t.records[bestType][diff]
}

// FindBestDifferRecord returns the career record to compare the version best
// against: the best when the version best is behind it, else the second best.
// For Miss it is nil when the version best has no miss count.
func (t *Tracker) FindBestDifferRecord(rt schema.RecordType, diff schema.Difficulty) (*schema.ChartScoreRecord, error) {
	versionBest := t.versionBest.ChartScore(diff)
	if versionBest == nil {
		return nil, fmt.Errorf("%s %s: %w", schema.FormatMusicID(t.versionBest.MusicID),
			schema.ToStyleDifficulty(t.versionBest.PlayStyle, diff), ErrNotSeeded)
	}

	bestType, secondType := schema.BestExScore, schema.SecondBestExScore
	if rt == schema.MissRecord {
		if versionBest.MissCount == nil {
			return nil, nil
		}
		bestType, secondType = schema.BestMiss, schema.SecondBestMiss
	}

	best := t.records[bestType][diff]
	if best == nil {
		return nil, nil
	}
	if schema.IsBetterRecord(rt, *versionBest, best.Score) {
		return nil, fmt.Errorf("%s %s %s: %w", schema.FormatMusicID(t.versionBest.MusicID),
			schema.ToStyleDifficulty(t.versionBest.PlayStyle, diff), rt, ErrBestInconsistent)
	}
	if !schema.IsBetterRecord(rt, best.Score, *versionBest) {
		return t.records[secondType][diff], nil
	}
	return best, nil
}

// Diagnostics returns every inconsistency reported so far.
func (t *Tracker) Diagnostics() []string {
	return t.diagnostics
}
