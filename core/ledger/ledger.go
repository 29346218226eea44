// Package ledger stores every score snapshot of a player, per music, play style and version.
//
// Each version slot keeps its entries sorted by the original recorded time.
// A snapshot recorded after its version's window has closed is reported at
// the last minute of that window, while its original time still decides its
// position in the slot.
package ledger

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/score2dx/core/availability"
	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/schema"
)

var (
	// ErrZeroTime is returned for snapshots without a recorded time.
	ErrZeroTime = errors.New("score has no date time")
	// ErrUnsupportedVersion is returned when scores are added to a version without a date window.
	ErrUnsupportedVersion = errors.New("score version is not supported")
	// ErrBeforeFirstVersion is returned for times before the first known version window.
	ErrBeforeFirstVersion = errors.New("date time precedes all version windows")
	// ErrBeforeScoreVersion is returned when a snapshot predates the version it is filed under.
	ErrBeforeScoreVersion = errors.New("date time precedes score version begin")
	// ErrMusicNotReleased is returned when a music is queried at a version before its debut.
	ErrMusicNotReleased = errors.New("music is newer than version")
)

// Entry is one stored snapshot. Score.DateTime is the reported time.
type Entry struct {
	Version      int
	OriginalTime time.Time
	Score        schema.MusicScore
}

// ScoreTable is the timeline of one music.
type ScoreTable struct {
	MusicID int
	slots   [schema.PlayStyleCount][version.Count][]Entry
}

// Entries returns all entries of a play style in chronological order: slots
// by version, then entries by original time.
func (t *ScoreTable) Entries(style schema.PlayStyle) []Entry {
	var entries []Entry
	for _, slot := range t.slots[style] {
		entries = append(entries, slot...)
	}
	return entries
}

// VersionEntries returns the entries of one version slot.
func (t *ScoreTable) VersionEntries(style schema.PlayStyle, versionIndex int) []Entry {
	if versionIndex < 0 || versionIndex >= version.Count {
		return nil
	}
	return t.slots[style][versionIndex]
}

// HasScores reports whether the play style has any entry.
func (t *ScoreTable) HasScores(style schema.PlayStyle) bool {
	for _, slot := range t.slots[style] {
		if len(slot) > 0 {
			return true
		}
	}
	return false
}

// Ledger holds the score tables of one player.
type Ledger struct {
	IidxID      string
	tables      map[int]*ScoreTable
	diagnostics []string
}

// New creates an empty ledger.
func New(iidxID string) *Ledger {
	return &Ledger{IidxID: iidxID, tables: make(map[int]*ScoreTable)}
}

// AddMusicScore files a snapshot under scoreVersion. A snapshot that collides
// with an existing one at the same original time in the same slot is dropped
// and recorded as a diagnostic.
func (l *Ledger) AddMusicScore(scoreVersion int, score schema.MusicScore) error {
	if score.DateTime.IsZero() {
		return fmt.Errorf("music %s: %w", schema.FormatMusicID(score.MusicID), ErrZeroTime)
	}
	if !version.IsSupportedScoreVersion(scoreVersion) {
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, version.FormatVersion(scoreVersion))
	}
	if _, ok := version.FindVersionIndex(score.DateTime); !ok {
		return fmt.Errorf("music %s at %s: %w", schema.FormatMusicID(score.MusicID),
			version.FormatDateTime(score.DateTime), ErrBeforeFirstVersion)
	}
	window, err := version.FindWindow(scoreVersion)
	if err != nil {
		return err
	}
	if score.DateTime.Before(window.Begin) {
		return fmt.Errorf("music %s at %s, version %s: %w", schema.FormatMusicID(score.MusicID),
			version.FormatDateTime(score.DateTime), version.FormatVersion(scoreVersion), ErrBeforeScoreVersion)
	}

	table, ok := l.tables[score.MusicID]
	if !ok {
		table = &ScoreTable{MusicID: score.MusicID}
		l.tables[score.MusicID] = table
	}

	original := score.DateTime
	stored := score.Clone()
	if !window.IsOpen() && !original.Before(window.End) {
		stored.DateTime = window.Last()
	}

	slot := table.slots[score.PlayStyle][scoreVersion]
	pos, found := slices.BinarySearchFunc(slot, original, func(e Entry, t time.Time) int {
		return e.OriginalTime.Compare(t)
	})
	if found {
		l.diagnostics = append(l.diagnostics, fmt.Sprintf(
			"duplicate score of music %s %s at %s in version %s, keeping the first one",
			schema.FormatMusicID(score.MusicID), score.PlayStyle.Acronym(),
			version.FormatDateTime(original), version.FormatVersion(scoreVersion)))
		return nil
	}
	table.slots[score.PlayStyle][scoreVersion] = slices.Insert(slot, pos, Entry{
		Version:      scoreVersion,
		OriginalTime: original,
		Score:        stored,
	})
	return nil
}

// Diagnostics returns the soft anomalies found while adding scores.
func (l *Ledger) Diagnostics() []string {
	return l.diagnostics
}

// Table returns the score table of a music.
func (l *Ledger) Table(musicID int) (*ScoreTable, bool) {
	table, ok := l.tables[musicID]
	return table, ok
}

// MusicIDs lists every music with scores, in ascending order.
func (l *Ledger) MusicIDs() []int {
	ids := make([]int, 0, len(l.tables))
	for id := range l.tables {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Entries returns the chronological entries of a music and play style.
func (l *Ledger) Entries(musicID int, style schema.PlayStyle) []Entry {
	table, ok := l.tables[musicID]
	if !ok {
		return nil
	}
	return table.Entries(style)
}

// EntryCount returns the number of stored snapshots.
func (l *Ledger) EntryCount() int {
	count := 0
	for _, table := range l.tables {
		for style := range schema.PlayStyleCount {
			for _, slot := range table.slots[style] {
				count += len(slot)
			}
		}
	}
	return count
}

// FindChartScoreByTime resolves the score of a chart as seen at dateTime.
//
// Only scores recorded inside dateTime's version window count, except that
// the clear type carries over from earlier versions as long as the chart has
// been continuously available since. A player with no scores for the music
// gets the default score. It returns false when the chart is not available
// at dateTime's version.
func (l *Ledger) FindChartScoreByTime(
	table *availability.Table,
	musicID int,
	style schema.PlayStyle,
	diff schema.Difficulty,
	dateTime time.Time,
	mode schema.FindMode,
) (schema.ChartScore, bool, error) {
	versionIndex, ok := version.FindVersionIndex(dateTime)
	if !ok {
		return schema.ChartScore{}, false, fmt.Errorf("%s: %w", version.FormatDateTime(dateTime), ErrBeforeFirstVersion)
	}
	if debut, _ := schema.SplitMusicID(musicID); debut > versionIndex {
		return schema.ChartScore{}, false, fmt.Errorf("music %s at version %s: %w",
			schema.FormatMusicID(musicID), version.FormatVersion(versionIndex), ErrMusicNotReleased)
	}

	scoreTable, ok := l.tables[musicID]
	if !ok || !scoreTable.HasScores(style) {
		return schema.ChartScore{}, true, nil
	}

	timeline, ok := table.Timeline(schema.ToChartID(musicID, style, diff))
	if !ok {
		return schema.ChartScore{}, false, nil
	}
	containing, ok := timeline.ContainingRange(versionIndex)
	if !ok {
		return schema.ChartScore{}, false, nil
	}
	window, err := version.FindWindow(versionIndex)
	if err != nil {
		return schema.ChartScore{}, false, err
	}

	var result schema.ChartScore
	for _, entry := range scoreTable.Entries(style) {
		chartScore := entry.Score.ChartScore(diff)
		if chartScore == nil {
			continue
		}
		recorded := entry.Score.DateTime
		if isAfter(recorded, dateTime, mode) {
			break
		}
		if recorded.Before(window.Begin) {
			if containing.Contains(entry.Version) {
				result.ClearType = chartScore.ClearType
			}
			continue
		}
		result = chartScore.Clone()
	}
	return result, true, nil
}

func isAfter(recorded, dateTime time.Time, mode schema.FindMode) bool {
	if mode == schema.BeforeDateTime {
		return !recorded.Before(dateTime)
	}
	return recorded.After(dateTime)
}
