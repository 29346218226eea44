package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable = "score2dx_analysis_runs"
	chartResultsTable = "score2dx_chart_results"
)

// analysisTables lists the analysis tables in creation order.
var analysisTables = []string{analysisRunsTable, chartResultsTable}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{analysisRunsTable, getCreateAnalysisRunsQuery(backend)},
		{chartResultsTable, getCreateChartResultsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for score2dx_analysis_runs.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysisRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL,
				iidx_id VARCHAR(9) NOT NULL,
				active_version INT NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_charts_analyzed INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				iidx_id TEXT NOT NULL,
				active_version INT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_charts_analyzed INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				iidx_id TEXT NOT NULL,
				active_version INTEGER NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_charts_analyzed INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateChartResultsQuery returns the CREATE TABLE query for score2dx_chart_results.
func getCreateChartResultsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(chartResultsTable, backend)

	text, timeType, intType := "TEXT", "TEXT", "INTEGER"
	switch backend {
	case schema.MySQLBackend:
		text, timeType, intType = "VARCHAR(255)", "DATETIME(6)", "INT"
	case schema.PostgreSQLBackend:
		timeType = "TIMESTAMPTZ"
	}

	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			analysis_id BIGINT NOT NULL,
			chart_id BIGINT NOT NULL,
			music_id %[4]s NOT NULL,
			title %[2]s NOT NULL,
			style_difficulty %[2]s NOT NULL,
			level %[4]s NOT NULL,
			note_count %[4]s NOT NULL,
			analysis_time %[3]s NOT NULL,
			clear_type %[2]s NOT NULL,
			dj_level %[2]s NOT NULL,
			ex_score %[4]s NOT NULL,
			miss_count %[4]s,
			score_level %[2]s NOT NULL,
			score_level_diff %[2]s NOT NULL,
			category %[2]s NOT NULL,
			career_best_ex_score %[4]s,
			career_best_version %[4]s,
			PRIMARY KEY (analysis_id, chart_id)
		);
	`, quotedTableName, text, timeType, intType)
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(startTime time.Time, iidxID string, activeVersion int, configParams map[string]any) (int64, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	args := []any{uuid.New().String(), iidxID, activeVersion, formatTime(startTime, as.backend), string(configJSON)}
	query := fmt.Sprintf(`INSERT INTO %s (run_uuid, iidx_id, active_version, start_time, config_params) VALUES (%s)`,
		quotedTableName, placeholderList(as.backend, len(args)))

	var analysisID int64
	if as.backend == schema.PostgreSQLBackend {
		err = as.db.QueryRow(query+" RETURNING analysis_id", args...).Scan(&analysisID)
	} else {
		var result sql.Result
		result, err = as.db.Exec(query, args...)
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, totalCharts int) error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, placeholder(as.backend, 1))
	startTime, err := scanTime(as.db.QueryRow(query, analysisID), as.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_charts_analyzed = %s WHERE analysis_id = %s`,
		quotedTableName, placeholder(as.backend, 1), placeholder(as.backend, 2), placeholder(as.backend, 3), placeholder(as.backend, 4))
	if _, err := as.db.Exec(updateQuery, formatTime(endTime, as.backend), durationMs, totalCharts, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordChartResult stores the analysis of one active chart.
func (as *AnalysisStoreImpl) RecordChartResult(analysisID int64, r schema.ChartResultRecord) error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	args := []any{
		analysisID, r.ChartID, r.MusicID, r.Title, r.StyleDifficulty, r.Level, r.NoteCount,
		formatTime(r.AnalysisTime, as.backend), r.ClearType, r.DjLevel, r.ExScore, r.MissCount,
		r.ScoreLevel, r.ScoreLevelDiff, r.Category, r.CareerBestExScore, r.CareerBestVersion,
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (analysis_id, chart_id, music_id, title, style_difficulty, level, note_count,
		                analysis_time, clear_type, dj_level, ex_score, miss_count,
		                score_level, score_level_diff, category, career_best_ex_score, career_best_version)
		VALUES (%s)
	`, quoteTableName(chartResultsTable, as.backend), placeholderList(as.backend, len(args)))

	if _, err := as.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert chart result %d: %w", r.ChartID, err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(analysisRunsTable, as.backend)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := as.db.QueryRow(fmt.Sprintf("SELECT analysis_id FROM %s ORDER BY analysis_id DESC LIMIT 1", quotedRuns))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}

		var err error
		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", quotedRuns))
		if status.LastRunTime, err = scanTime(row, as.backend); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", quotedRuns))
		if status.OldestRunTime, err = scanTime(row, as.backend); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		row = as.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_charts_analyzed), 0) FROM %s", quotedRuns))
		if err := row.Scan(&status.TotalChartsAnalyzed); err != nil {
			return status, fmt.Errorf("failed to get total charts analyzed: %w", err)
		}
	}

	for _, table := range analysisTables {
		var count int64
		if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, run_uuid, iidx_id, active_version, start_time, end_time,
		run_duration_ms, total_charts_analyzed, config_params FROM %s ORDER BY analysis_id`,
		quoteTableName(analysisRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		var startTime, endTime any
		if err := rows.Scan(&record.AnalysisID, &record.RunUUID, &record.IidxID, &record.ActiveVersion,
			&startTime, &endTime, &record.RunDurationMs, &record.TotalChartsAnalyzed, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		if record.StartTime, err = parseTime(startTime); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if endTime != nil {
			t, err := parseTime(endTime)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &t
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllChartResults retrieves all chart results from the store.
func (as *AnalysisStoreImpl) GetAllChartResults() ([]schema.ChartResultRecord, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, chart_id, music_id, title, style_difficulty, level, note_count,
		analysis_time, clear_type, dj_level, ex_score, miss_count,
		score_level, score_level_diff, category, career_best_ex_score, career_best_version
		FROM %s ORDER BY analysis_id, chart_id`, quoteTableName(chartResultsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query chart results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ChartResultRecord
	for rows.Next() {
		var r schema.ChartResultRecord
		var analysisTime any
		if err := rows.Scan(&r.AnalysisID, &r.ChartID, &r.MusicID, &r.Title, &r.StyleDifficulty, &r.Level, &r.NoteCount,
			&analysisTime, &r.ClearType, &r.DjLevel, &r.ExScore, &r.MissCount,
			&r.ScoreLevel, &r.ScoreLevelDiff, &r.Category, &r.CareerBestExScore, &r.CareerBestVersion); err != nil {
			return nil, fmt.Errorf("failed to scan chart result: %w", err)
		}
		if r.AnalysisTime, err = parseTime(analysisTime); err != nil {
			return nil, fmt.Errorf("failed to parse analysis_time: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chart results: %w", err)
	}
	return results, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

// scanTime scans a single time column stored by formatTime.
func scanTime(row *sql.Row, _ schema.DatabaseBackend) (time.Time, error) {
	var v any
	if err := row.Scan(&v); err != nil {
		return time.Time{}, err
	}
	return parseTime(v)
}

// parseTime accepts SQLite text times and native driver times.
func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return time.Parse(time.RFC3339Nano, t)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(t))
	}
	return time.Time{}, fmt.Errorf("unexpected time value %T", v)
}
