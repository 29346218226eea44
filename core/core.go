// Package core loads score data and runs the analyses behind every command.
package core

import (
	"context"
	"time"

	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/internal/outwriter"
)

// ExecutorFunc defines the function signature for executing different analysis modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// GetVersionResults loads the session and analyzes the active version.
func GetVersionResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*VersionResult, time.Duration, error) {
	start := time.Now()
	s, err := LoadSession(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	result, err := s.AnalyzeVersion(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	return result, time.Since(start), nil
}

// GetActivityResults loads the session and lists the activity of the configured window.
func GetActivityResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*ActivityResult, time.Duration, error) {
	start := time.Now()
	s, err := LoadSession(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	result, err := s.AnalyzeActivity(ctx, cfg)
	if err != nil {
		return nil, 0, err
	}
	return result, time.Since(start), nil
}

// ExecuteAnalyze analyzes the active version and prints the chart results.
// It serves as the main entry point for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetVersionResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	logDiagnostics(result.Diagnostics)
	return outwriter.NewOutWriter().WriteChartResults(result.Charts, cfg, duration)
}

// ExecuteStatistics analyzes the active version and prints its statistics tables.
func ExecuteStatistics(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, _, err := GetVersionResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	logDiagnostics(result.Diagnostics)
	return outwriter.NewOutWriter().WriteVersionStatistics(result.Statistics, result.ActiveVersion, cfg)
}

// ExecuteActivity prints the score updates of the configured window.
func ExecuteActivity(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, _, err := GetActivityResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	logDiagnostics(result.Diagnostics)
	return outwriter.NewOutWriter().WriteActivity(result.Records, result.Begin, result.End, cfg)
}
