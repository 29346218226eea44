package analyzer

import (
	"time"

	"github.com/huangsam/score2dx/schema"
)

// TitleLookup resolves music titles.
type TitleLookup interface {
	Title(musicID int) (string, bool)
}

func int32Ptr(v int) *int32 {
	n := int32(v)
	return &n
}

func missPtr(score schema.ChartScore) *int32 {
	if score.MissCount == nil {
		return nil
	}
	return int32Ptr(*score.MissCount)
}

// ChartResultRecords flattens the analyzed charts of the given styles into
// storable rows, keeping the chart id order.
func (s *ScoreAnalysis) ChartResultRecords(titles TitleLookup, styles []schema.PlayStyle, at time.Time) []schema.ChartResultRecord {
	records := make([]schema.ChartResultRecord, 0, len(s.Charts))
	for _, c := range s.Charts {
		musicID, style, _ := c.ChartID.Split()
		if !hasStyle(styles, style) {
			continue
		}
		title, _ := titles.Title(musicID)
		record := schema.ChartResultRecord{
			ChartID:         int64(c.ChartID),
			MusicID:         int32(musicID),
			Title:           title,
			StyleDifficulty: c.ChartID.StyleDifficulty().String(),
			Level:           int32(c.Info.Level),
			NoteCount:       int32(c.Info.Note),
			AnalysisTime:    at,
			ClearType:       c.VersionBest.ClearType.String(),
			DjLevel:         c.VersionBest.DjLevel.String(),
			ExScore:         int32(c.VersionBest.ExScore),
			MissCount:       missPtr(c.VersionBest),
			ScoreLevel:      c.ScoreLevel.String(),
			ScoreLevelDiff:  c.ScoreLevel.DiffString(),
			Category:        c.Category.String(),
		}
		if c.CareerBest != nil {
			record.CareerBestExScore = int32Ptr(c.CareerBest.Score.ExScore)
			record.CareerBestVersion = int32Ptr(c.CareerBest.VersionIndex)
		}
		records = append(records, record)
	}
	return records
}

// StatisticsRecords flattens the per style difficulty statistics of the given styles.
// Beginner charts are not counted, so they have no rows.
func (s *ScoreAnalysis) StatisticsRecords(styles []schema.PlayStyle) []schema.StatisticsRecord {
	var records []schema.StatisticsRecord
	for i := range schema.StyleDifficultyCount {
		sd := schema.StyleDifficulty(i)
		style, _ := sd.Split()
		if sd.IsBeginner() || !hasStyle(styles, style) {
			continue
		}
		stats := &s.StatisticsByStyleDifficulty[sd]
		total := len(stats.ChartIDs)
		for ct := range schema.ClearTypeCount {
			records = append(records, schema.StatisticsRecord{
				StyleDifficulty: sd.String(), Dimension: schema.ClearTypeDimension,
				Label: schema.ClearType(ct).String(), Count: len(stats.ByClearType[ct]), Total: total,
			})
		}
		for dj := range schema.DjLevelCount {
			records = append(records, schema.StatisticsRecord{
				StyleDifficulty: sd.String(), Dimension: schema.DjLevelDimension,
				Label: schema.DjLevel(dj).String(), Count: len(stats.ByDjLevel[dj]), Total: total,
			})
		}
		for c := range schema.ScoreLevelCategoryCount {
			records = append(records, schema.StatisticsRecord{
				StyleDifficulty: sd.String(), Dimension: schema.CategoryDimension,
				Label: schema.ScoreLevelCategory(c).String(), Count: len(stats.ByCategory[c]), Total: total,
			})
		}
	}
	return records
}

// Records lists, in time order, every chart whose score changed during the window.
func (a *ActivityAnalysis) Records(titles TitleLookup, styles []schema.PlayStyle) ([]schema.ActivityRecord, error) {
	var records []schema.ActivityRecord
	for _, style := range schema.PlayStyles {
		if !hasStyle(styles, style) {
			continue
		}
		for _, bucket := range a.Buckets[style] {
			for _, entry := range bucket.Entries {
				previous, err := a.Resolve(style, entry.Previous)
				if err != nil {
					return nil, err
				}
				title, _ := titles.Title(entry.MusicID)
				for _, diff := range schema.Difficulties {
					current := entry.Current.ChartScore(diff)
					if current == nil {
						continue
					}
					before := previous.ChartScore(diff)
					if before != nil && sameScore(*before, *current) {
						continue
					}
					record := schema.ActivityRecord{
						DateTime:        bucket.DateTime,
						MusicID:         int32(entry.MusicID),
						Title:           title,
						StyleDifficulty: schema.ToStyleDifficulty(style, diff).String(),
						PlayCount:       int32(entry.Current.PlayCount),
						ClearType:       current.ClearType.String(),
						DjLevel:         current.DjLevel.String(),
						ExScore:         int32(current.ExScore),
						MissCount:       missPtr(*current),
					}
					if before != nil {
						previousClear := before.ClearType.String()
						record.PreviousClearType = &previousClear
						record.PreviousExScore = int32Ptr(before.ExScore)
					}
					records = append(records, record)
				}
			}
		}
	}
	return records, nil
}

// sameScore compares scores including the miss count value.
func sameScore(a, b schema.ChartScore) bool {
	if a.ClearType != b.ClearType || a.DjLevel != b.DjLevel || a.ExScore != b.ExScore {
		return false
	}
	if (a.MissCount == nil) != (b.MissCount == nil) {
		return false
	}
	return a.MissCount == nil || *a.MissCount == *b.MissCount
}

// hasStyle treats an empty filter as every style.
func hasStyle(styles []schema.PlayStyle, style schema.PlayStyle) bool {
	if len(styles) == 0 {
		return true
	}
	for _, s := range styles {
		if s == style {
			return true
		}
	}
	return false
}
