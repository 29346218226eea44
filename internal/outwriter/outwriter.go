// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the command layer.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteVersionStatistics prints the statistics tables of a version using the configured output format.
func (ow *OutWriter) WriteVersionStatistics(records []schema.StatisticsRecord, activeVersion int, cfg *contract.Config) error {
	return WriteStatisticsResults(records, activeVersion, cfg)
}

// WriteChartResults prints the analyzed charts using the configured output format.
func (ow *OutWriter) WriteChartResults(records []schema.ChartResultRecord, cfg *contract.Config, duration time.Duration) error {
	return WriteChartResults(records, cfg, duration)
}

// WriteActivity prints the charts that changed during an activity window.
func (ow *OutWriter) WriteActivity(records []schema.ActivityRecord, begin, end time.Time, cfg *contract.Config) error {
	return WriteActivityResults(records, begin, end, cfg)
}

// WriteScoreLevel prints the key scores of a chart, and the level of exScore when it is not negative.
func (ow *OutWriter) WriteScoreLevel(noteCount, exScore int, cfg *contract.Config) error {
	return WriteScoreLevelResults(noteCount, exScore, cfg)
}

// GetMaxTableTitleWidth calculates the maximum width for music titles in table output
// based on terminal width and the width taken by the other columns.
func GetMaxTableTitleWidth(cfg *contract.Config, baseWidth int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Table borders, separators, and padding
	baseWidth += 20

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}

// WriteVersions writes the supported versions.
func (ow *OutWriter) WriteVersions(cfg *contract.Config) error {
	return WriteVersionList(cfg)
}
