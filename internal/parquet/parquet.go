// Package parquet provides row types and writers for exporting score2dx
// analysis data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/score2dx/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single recorded analysis run.
// This struct maps to the score2dx_analysis_runs database table.
type AnalysisRun struct {
	AnalysisID int64  `parquet:"analysis_id,snappy"`
	RunUUID    string `parquet:"run_uuid,snappy"`
	IidxID     string `parquet:"iidx_id,snappy"`

	// ActiveVersion is the version whose charts were analyzed
	ActiveVersion int32 `parquet:"active_version,snappy"`

	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is nil while the run has not ended
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalChartsAnalyzed int32 `parquet:"total_charts_analyzed,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ChartResult is the analysis of one active chart.
// This struct maps to the score2dx_chart_results database table.
type ChartResult struct {
	AnalysisID        int64     `parquet:"analysis_id,snappy"`
	ChartID           int64     `parquet:"chart_id,snappy"`
	MusicID           int32     `parquet:"music_id,snappy"`
	Title             string    `parquet:"title,snappy"`
	StyleDifficulty   string    `parquet:"style_difficulty,snappy"`
	Level             int32     `parquet:"level,snappy"`
	NoteCount         int32     `parquet:"note_count,snappy"`
	AnalysisTime      time.Time `parquet:"analysis_time,snappy"`
	ClearType         string    `parquet:"clear_type,snappy"`
	DjLevel           string    `parquet:"dj_level,snappy"`
	ExScore           int32     `parquet:"ex_score,snappy"`
	MissCount         *int32    `parquet:"miss_count,optional,snappy"`
	ScoreLevel        string    `parquet:"score_level,snappy"`
	ScoreLevelDiff    string    `parquet:"score_level_diff,snappy"`
	Category          string    `parquet:"category,snappy"`
	CareerBestExScore *int32    `parquet:"career_best_ex_score,optional,snappy"`
	CareerBestVersion *int32    `parquet:"career_best_version,optional,snappy"`
}

// ActivityEntry is one chart of one music score recorded during an activity window.
type ActivityEntry struct {
	DateTime          time.Time `parquet:"date_time,snappy"`
	MusicID           int32     `parquet:"music_id,snappy"`
	Title             string    `parquet:"title,snappy"`
	StyleDifficulty   string    `parquet:"style_difficulty,snappy"`
	PlayCount         int32     `parquet:"play_count,snappy"`
	ClearType         string    `parquet:"clear_type,snappy"`
	DjLevel           string    `parquet:"dj_level,snappy"`
	ExScore           int32     `parquet:"ex_score,snappy"`
	MissCount         *int32    `parquet:"miss_count,optional,snappy"`
	PreviousClearType *string   `parquet:"previous_clear_type,optional,snappy"`
	PreviousExScore   *int32    `parquet:"previous_ex_score,optional,snappy"`
}

// StatisticsCount is one count of a statistics table.
type StatisticsCount struct {
	StyleDifficulty string `parquet:"style_difficulty,snappy"`
	Dimension       string `parquet:"dimension,snappy"`
	Label           string `parquet:"label,snappy"`
	Count           int32  `parquet:"count,snappy"`
	Total           int32  `parquet:"total,snappy"`
}

// WriteRows writes rows of any struct type to w.
// The schema is derived from the struct tags of T.
func WriteRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new file at outputPath.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteRows(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteAnalysisRunsParquet writes analysis runs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return WriteFile(data, outputPath)
}

// WriteChartResultsParquet writes chart results to a Parquet file.
func WriteChartResultsParquet(data []ChartResult, outputPath string) error {
	return WriteFile(data, outputPath)
}

// ReadRows reads every row of a Parquet file into T values.
func ReadRows[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}
	return rows, nil
}

// ConvertAnalysisRunRecords converts stored runs to Parquet rows.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:          record.AnalysisID,
			RunUUID:             record.RunUUID,
			IidxID:              record.IidxID,
			ActiveVersion:       record.ActiveVersion,
			StartTime:           record.StartTime,
			EndTime:             record.EndTime,
			RunDurationMs:       record.RunDurationMs,
			TotalChartsAnalyzed: record.TotalChartsAnalyzed,
			ConfigParams:        record.ConfigParams,
		}
	}
	return result
}

// ConvertChartResultRecords converts stored chart results to Parquet rows.
func ConvertChartResultRecords(records []schema.ChartResultRecord) []ChartResult {
	result := make([]ChartResult, len(records))
	for i, r := range records {
		result[i] = ChartResult{
			AnalysisID:        r.AnalysisID,
			ChartID:           r.ChartID,
			MusicID:           r.MusicID,
			Title:             r.Title,
			StyleDifficulty:   r.StyleDifficulty,
			Level:             r.Level,
			NoteCount:         r.NoteCount,
			AnalysisTime:      r.AnalysisTime,
			ClearType:         r.ClearType,
			DjLevel:           r.DjLevel,
			ExScore:           r.ExScore,
			MissCount:         r.MissCount,
			ScoreLevel:        r.ScoreLevel,
			ScoreLevelDiff:    r.ScoreLevelDiff,
			Category:          r.Category,
			CareerBestExScore: r.CareerBestExScore,
			CareerBestVersion: r.CareerBestVersion,
		}
	}
	return result
}

// ConvertActivityRecords converts activity records to Parquet rows.
func ConvertActivityRecords(records []schema.ActivityRecord) []ActivityEntry {
	result := make([]ActivityEntry, len(records))
	for i, r := range records {
		result[i] = ActivityEntry(r)
	}
	return result
}

// ConvertStatisticsRecords converts statistics records to Parquet rows.
func ConvertStatisticsRecords(records []schema.StatisticsRecord) []StatisticsCount {
	result := make([]StatisticsCount, len(records))
	for i, r := range records {
		result[i] = StatisticsCount{
			StyleDifficulty: r.StyleDifficulty,
			Dimension:       r.Dimension,
			Label:           r.Label,
			Count:           int32(r.Count),
			Total:           int32(r.Total),
		}
	}
	return result
}
