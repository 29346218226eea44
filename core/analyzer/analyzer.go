// Package analyzer runs the best score analysis of a player's ledger for one active version.
package analyzer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/huangsam/score2dx/core/availability"
	"github.com/huangsam/score2dx/core/best"
	"github.com/huangsam/score2dx/core/career"
	"github.com/huangsam/score2dx/core/ledger"
	"github.com/huangsam/score2dx/core/scorelevel"
	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/schema"
)

var (
	// ErrInactiveVersion is returned for versions the music database cannot analyze.
	ErrInactiveVersion = errors.New("version is not an active version")
	// ErrNonPositiveNote is returned when an active chart has no notes.
	ErrNonPositiveNote = errors.New("active chart has non-positive note count")
	// ErrNoVersionBeginScore is returned when an active chart has no score at the version begin.
	ErrNoVersionBeginScore = errors.New("cannot find version begin chart score")
	// ErrInvalidLevel is returned when an active chart has a level outside 1 to MaxLevel.
	ErrInvalidLevel = errors.New("active chart has invalid level")
)

// Statistics groups chart ids by version best clear type, DJ level and score level category.
// Every chart has a clear type; DJ level and category only count played charts with a score.
type Statistics struct {
	ChartIDs    []schema.ChartID
	ByClearType [schema.ClearTypeCount][]schema.ChartID
	ByDjLevel   [schema.DjLevelCount][]schema.ChartID
	ByCategory  [schema.ScoreLevelCategoryCount][]schema.ChartID
}

func (s *Statistics) add(chartID schema.ChartID, score schema.ChartScore, category schema.ScoreLevelCategory) {
	s.ChartIDs = append(s.ChartIDs, chartID)
	s.ByClearType[score.ClearType] = append(s.ByClearType[score.ClearType], chartID)
	if score.ClearType != schema.NoPlay && score.ExScore != 0 {
		s.ByDjLevel[score.DjLevel] = append(s.ByDjLevel[score.DjLevel], chartID)
		s.ByCategory[category] = append(s.ByCategory[category], chartID)
	}
}

// ChartResult is the analysis of one active chart.
type ChartResult struct {
	ChartID      schema.ChartID
	Info         schema.ChartInfo
	PlayCount    int
	VersionBest  schema.ChartScore
	ScoreLevel   scorelevel.Result
	Category     schema.ScoreLevelCategory
	CareerBest   *schema.ChartScoreRecord
	OtherBest    *schema.ChartScoreRecord
	IsCareerBest bool
	BestDiffer   *schema.ChartScoreRecord
}

// MusicTrackers holds the trackers of one music by play style.
type MusicTrackers [schema.PlayStyleCount]*best.Tracker

// ScoreAnalysis is the result of Analyze. Beginner charts are tracked but
// left out of every statistics table.
type ScoreAnalysis struct {
	ActiveVersion int

	StatisticsByStyle                  [schema.PlayStyleCount]Statistics
	StatisticsByVersionStyle           [][schema.PlayStyleCount]Statistics
	StatisticsByStyleLevel             [schema.PlayStyleCount][schema.MaxLevel + 1]Statistics
	StatisticsByStyleDifficulty        [schema.StyleDifficultyCount]Statistics
	StatisticsByVersionStyleDifficulty [][schema.StyleDifficultyCount]Statistics

	MusicBestScores map[int]*MusicTrackers
	Career          *career.Index
	ActivityDates   [schema.PlayStyleCount][]string
	Charts          []ChartResult
	Diagnostics     []string
}

// Tracker returns the tracker of a music and play style.
func (s *ScoreAnalysis) Tracker(musicID int, style schema.PlayStyle) (*best.Tracker, bool) {
	trackers, ok := s.MusicBestScores[musicID]
	if !ok || trackers[style] == nil {
		return nil, false
	}
	return trackers[style], true
}

// Analyzer analyzes ledgers against a music database.
type Analyzer struct {
	table         *availability.Table
	activeVersion int
}

// New creates an analyzer for the active version.
func New(table *availability.Table, activeVersion int) (*Analyzer, error) {
	a := &Analyzer{table: table}
	if err := a.SetActiveVersionIndex(activeVersion); err != nil {
		return nil, err
	}
	return a, nil
}

// SetActiveVersionIndex changes the version analyzed by Analyze.
func (a *Analyzer) SetActiveVersionIndex(activeVersion int) error {
	if !a.table.IsActiveVersion(activeVersion) {
		return fmt.Errorf("%w: %s", ErrInactiveVersion, version.FormatVersion(activeVersion))
	}
	a.activeVersion = activeVersion
	return nil
}

// ActiveVersionIndex returns the analyzed version.
func (a *Analyzer) ActiveVersionIndex() int {
	return a.activeVersion
}

type pendingCareer struct {
	chartIndex int
	records    map[int][]schema.ChartScoreRecord
}

// Analyze replays the ledger for every chart active in the active version.
// It either returns a complete analysis or an error.
func (a *Analyzer) Analyze(l *ledger.Ledger) (*ScoreAnalysis, error) {
	active := a.activeVersion
	window, err := version.FindWindow(active)
	if err != nil {
		return nil, err
	}

	analysis := &ScoreAnalysis{
		ActiveVersion:                      active,
		StatisticsByVersionStyle:           make([][schema.PlayStyleCount]Statistics, active+1),
		StatisticsByVersionStyleDifficulty: make([][schema.StyleDifficultyCount]Statistics, active+1),
		MusicBestScores:                    make(map[int]*MusicTrackers),
	}
	var dates [schema.PlayStyleCount]map[string]struct{}
	for style := range schema.PlayStyleCount {
		dates[style] = make(map[string]struct{})
	}

	var pending []pendingCareer
	for _, chart := range a.table.ActiveCharts(active) {
		musicID, style, diff := chart.ChartID.Split()
		title, _ := a.table.Title(musicID)

		if chart.Info.Note <= 0 {
			return nil, fmt.Errorf("%s [%s] level %d note %d: %w", chart.ChartID, title, chart.Info.Level, chart.Info.Note, ErrNonPositiveNote)
		}
		if chart.Info.Level < 1 || chart.Info.Level > schema.MaxLevel {
			return nil, fmt.Errorf("%s [%s] level %d: %w", chart.ChartID, title, chart.Info.Level, ErrInvalidLevel)
		}

		beginScore, ok, err := l.FindChartScoreByTime(a.table, musicID, style, diff, window.Begin, schema.AtDateTime)
		if err != nil {
			return nil, fmt.Errorf("%s [%s]: %w", chart.ChartID, title, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s [%s] at %s: %w", chart.ChartID, title, version.FormatDateTime(window.Begin), ErrNoVersionBeginScore)
		}

		tracker, err := analysis.tracker(active, musicID, style)
		if err != nil {
			return nil, err
		}
		tracker.InitializeVersionBeginChartScore(diff, beginScore)

		timeline, _ := a.table.Timeline(chart.ChartID)
		containing, _ := timeline.ContainingRange(active)

		records := make(map[int][]schema.ChartScoreRecord)
		for _, entry := range l.Entries(musicID, style) {
			if !containing.Contains(entry.Version) {
				continue
			}
			chartScore := entry.Score.ChartScore(diff)
			if chartScore == nil {
				continue
			}
			inconsistency, err := tracker.UpdateChartScore(diff, entry.Score.DateTime, *chartScore, entry.Score.PlayCount)
			if err != nil {
				return nil, fmt.Errorf("%s [%s]: %w", chart.ChartID, title, err)
			}
			if inconsistency != "" {
				analysis.Diagnostics = append(analysis.Diagnostics, inconsistency)
			}
			dates[style][entry.Score.DateTime.Format("2006-01-02")] = struct{}{}

			if entry.Version == active || !chartScore.IsTrivial() {
				records[entry.Version] = append(records[entry.Version], schema.ChartScoreRecord{
					Score:        chartScore.Clone(),
					VersionIndex: entry.Version,
					DateTime:     entry.Score.DateTime,
				})
			}
		}

		versionBestMusic := tracker.VersionBestMusicScore()
		versionBest := *versionBestMusic.ChartScore(diff)
		level, err := scorelevel.FindScoreLevelDiff(chart.Info.Note, versionBest.ExScore)
		if err != nil {
			return nil, fmt.Errorf("%s [%s]: %w", chart.ChartID, title, err)
		}
		differ, err := tracker.FindBestDifferRecord(schema.ScoreRecord, diff)
		if err != nil {
			return nil, fmt.Errorf("%s [%s]: %w", chart.ChartID, title, err)
		}

		analysis.Charts = append(analysis.Charts, ChartResult{
			ChartID:     chart.ChartID,
			Info:        chart.Info,
			PlayCount:   tracker.VersionPlayCount(diff),
			VersionBest: versionBest,
			ScoreLevel:  level,
			Category:    level.Category(),
			BestDiffer:  differ,
		})
		pending = append(pending, pendingCareer{chartIndex: len(analysis.Charts) - 1, records: records})

		sd := chart.ChartID.StyleDifficulty()
		if sd.IsBeginner() {
			continue
		}
		debut, _ := schema.SplitMusicID(musicID)
		for _, stats := range []*Statistics{
			&analysis.StatisticsByStyle[style],
			&analysis.StatisticsByStyleLevel[style][chart.Info.Level],
			&analysis.StatisticsByStyleDifficulty[sd],
			&analysis.StatisticsByVersionStyle[debut][style],
			&analysis.StatisticsByVersionStyleDifficulty[debut][sd],
		} {
			stats.add(chart.ChartID, versionBest, level.Category())
		}
	}

	analysis.Career = career.New(active)
	for _, p := range pending {
		result := &analysis.Charts[p.chartIndex]
		if err := analysis.Career.Add(result.ChartID, p.records); err != nil {
			return nil, err
		}
		record, _ := analysis.Career.Record(result.ChartID)
		result.CareerBest = record.CareerBest[schema.ScoreRecord]
		result.OtherBest = record.OtherBest[schema.ScoreRecord]
		result.IsCareerBest = record.VersionBest != nil && record.CareerBest[schema.ScoreRecord] == record.VersionBest
	}

	for _, v := range version.SupportedScoreVersions() {
		w, _ := version.FindWindow(v)
		for style := range schema.PlayStyleCount {
			dates[style][w.Begin.Format("2006-01-02")] = struct{}{}
		}
	}
	for style := range schema.PlayStyleCount {
		for date := range dates[style] {
			analysis.ActivityDates[style] = append(analysis.ActivityDates[style], date)
		}
		slices.Sort(analysis.ActivityDates[style])
	}

	return analysis, nil
}

func (s *ScoreAnalysis) tracker(active, musicID int, style schema.PlayStyle) (*best.Tracker, error) {
	trackers, ok := s.MusicBestScores[musicID]
	if !ok {
		trackers = &MusicTrackers{}
		s.MusicBestScores[musicID] = trackers
	}
	if trackers[style] == nil {
		tracker, err := best.New(active, musicID, style)
		if err != nil {
			return nil, err
		}
		trackers[style] = tracker
	}
	return trackers[style], nil
}
