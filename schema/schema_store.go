package schema

import "time"

// AnalysisRunRecord represents a row from the score2dx_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID          int64
	RunUUID             string
	IidxID              string
	ActiveVersion       int32
	StartTime           time.Time
	EndTime             *time.Time
	RunDurationMs       *int32
	TotalChartsAnalyzed int32
	ConfigParams        *string
}

// ChartResultRecord represents a row from the score2dx_chart_results table.
// It is the stored form of one analyzed chart.
type ChartResultRecord struct {
	AnalysisID        int64     `json:"analysis_id"`
	ChartID           int64     `json:"chart_id"`
	MusicID           int32     `json:"music_id"`
	Title             string    `json:"title"`
	StyleDifficulty   string    `json:"style_difficulty"`
	Level             int32     `json:"level"`
	NoteCount         int32     `json:"note_count"`
	AnalysisTime      time.Time `json:"analysis_time"`
	ClearType         string    `json:"clear_type"`
	DjLevel           string    `json:"dj_level"`
	ExScore           int32     `json:"ex_score"`
	MissCount         *int32    `json:"miss_count,omitempty"`
	ScoreLevel        string    `json:"score_level"`
	ScoreLevelDiff    string    `json:"score_level_diff"`
	Category          string    `json:"category"`
	CareerBestExScore *int32    `json:"career_best_ex_score,omitempty"`
	CareerBestVersion *int32    `json:"career_best_version,omitempty"`
}

// StatisticsRecord is one count of a statistics table: how many charts of a
// style difficulty fall into one clear type, DJ level or score level category.
type StatisticsRecord struct {
	StyleDifficulty string `json:"style_difficulty"`
	Dimension       string `json:"dimension"`
	Label           string `json:"label"`
	Count           int    `json:"count"`
	Total           int    `json:"total"`
}

// Statistics dimensions.
const (
	ClearTypeDimension = "clear_type"
	DjLevelDimension   = "dj_level"
	CategoryDimension  = "category"
)

// ActivityRecord is one chart that changed during an activity window.
// Previous fields are nil when the chart had no score before.
type ActivityRecord struct {
	DateTime          time.Time `json:"date_time"`
	MusicID           int32     `json:"music_id"`
	Title             string    `json:"title"`
	StyleDifficulty   string    `json:"style_difficulty"`
	PlayCount         int32     `json:"play_count"`
	ClearType         string    `json:"clear_type"`
	DjLevel           string    `json:"dj_level"`
	ExScore           int32     `json:"ex_score"`
	MissCount         *int32    `json:"miss_count,omitempty"`
	PreviousClearType *string   `json:"previous_clear_type,omitempty"`
	PreviousExScore   *int32    `json:"previous_ex_score,omitempty"`
}
