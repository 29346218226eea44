package core

import (
	"context"
	"time"

	"github.com/huangsam/score2dx/core/analyzer"
	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/internal/logging"
	"github.com/huangsam/score2dx/schema"
)

// VersionResult is the analysis of the active version, flattened for output.
type VersionResult struct {
	IidxID        string                     `json:"iidx_id"`
	ActiveVersion int                        `json:"active_version"`
	AnalysisID    int64                      `json:"analysis_id,omitempty"`
	Statistics    []schema.StatisticsRecord  `json:"statistics"`
	Charts        []schema.ChartResultRecord `json:"charts"`
	Diagnostics   []string                   `json:"diagnostics,omitempty"`
}

// ActivityResult lists the score updates of an activity window.
type ActivityResult struct {
	IidxID      string                  `json:"iidx_id"`
	Begin       time.Time               `json:"begin"`
	End         time.Time               `json:"end"`
	Records     []schema.ActivityRecord `json:"records"`
	Diagnostics []string                `json:"diagnostics,omitempty"`
}

func styleAcronyms(styles []schema.PlayStyle) []string {
	acronyms := make([]string, len(styles))
	for i, s := range styles {
		acronyms[i] = s.Acronym()
	}
	return acronyms
}

// logAnalysisHeader logs what is about to be analyzed.
func logAnalysisHeader(ctx context.Context, cfg *contract.Config, s *Session) {
	if shouldSuppressHeader(ctx) {
		return
	}
	logging.Info().
		Str("iidx_id", s.Ledger.IidxID).
		Str("active_version", version.FormatVersion(cfg.ActiveVersion)).
		Strs("styles", styleAcronyms(cfg.Styles)).
		Int("files", len(s.Files)).
		Int("musics", s.Table.MusicCount()).
		Msg("Analyzing scores")
}

// AnalyzeVersion runs the analyzer on the active version. When mgr has an analysis
// store, the run and every chart result are recorded; tracking failures only warn.
func (s *Session) AnalyzeVersion(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*VersionResult, error) {
	logAnalysisHeader(ctx, cfg, s)

	a, err := analyzer.New(s.Table, cfg.ActiveVersion)
	if err != nil {
		return nil, err
	}

	// --- 0. Begin Analysis Tracking (if configured) ---
	var analysisID int64
	var analysisStore contract.AnalysisStore
	if mgr != nil {
		analysisStore = mgr.GetAnalysisStore()
	}
	startTime := time.Now()
	if analysisStore != nil {
		configParams := map[string]any{
			"active_version": cfg.ActiveVersion,
			"score_version":  cfg.ScoreVersion,
			"styles":         styleAcronyms(cfg.Styles),
			"files":          len(s.Files),
			"music_db":       cfg.MusicDatabase,
		}
		analysisID, err = analysisStore.BeginAnalysis(startTime, s.Ledger.IidxID, cfg.ActiveVersion, configParams)
		if err != nil {
			contract.LogWarn("Analysis tracking initialization failed", err)
			analysisID = 0
		}
	}

	// --- 1. Core Analysis ---
	analysis, err := a.Analyze(s.Ledger)
	if err != nil {
		return nil, err
	}

	result := &VersionResult{
		IidxID:        s.Ledger.IidxID,
		ActiveVersion: analysis.ActiveVersion,
		AnalysisID:    analysisID,
		Statistics:    analysis.StatisticsRecords(cfg.Styles),
		Charts:        analysis.ChartResultRecords(s.Table, cfg.Styles, startTime),
		Diagnostics:   append(append([]string(nil), s.Diagnostics...), analysis.Diagnostics...),
	}

	// --- 2. Record Results and End Analysis Tracking ---
	if analysisStore != nil && analysisID > 0 {
		for i := range result.Charts {
			result.Charts[i].AnalysisID = analysisID
			if err := analysisStore.RecordChartResult(analysisID, result.Charts[i]); err != nil {
				contract.LogWarn("Failed to record chart result", err)
			}
		}
		if err := analysisStore.EndAnalysis(analysisID, time.Now(), len(result.Charts)); err != nil {
			contract.LogWarn("Failed to finalize analysis tracking", err)
		}
	}
	return result, nil
}

// AnalyzeActivity lists the score updates between cfg.Begin and cfg.End.
// Without a begin the whole window of the active version is used.
func (s *Session) AnalyzeActivity(ctx context.Context, cfg *contract.Config) (*ActivityResult, error) {
	logAnalysisHeader(ctx, cfg, s)

	a, err := analyzer.New(s.Table, cfg.ActiveVersion)
	if err != nil {
		return nil, err
	}

	var activity *analyzer.ActivityAnalysis
	if cfg.Begin.IsZero() {
		activity, err = a.AnalyzeVersionActivity(s.Ledger)
	} else {
		activity, err = a.AnalyzeActivity(s.Ledger, cfg.Begin, cfg.End)
	}
	if err != nil {
		return nil, err
	}

	records, err := activity.Records(s.Table, cfg.Styles)
	if err != nil {
		return nil, err
	}
	return &ActivityResult{
		IidxID:      s.Ledger.IidxID,
		Begin:       activity.Begin,
		End:         activity.End,
		Records:     records,
		Diagnostics: s.Diagnostics,
	}, nil
}
