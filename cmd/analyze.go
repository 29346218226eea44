package cmd

import (
	"github.com/huangsam/score2dx/core"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/spf13/cobra"
)

// analyzeCmd reports the version and career bests of every chart.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [csv-path...]",
	Short: "Show version and career bests of every chart of a version.",
	Long: `Merge score CSVs into the player's ledger and report each chart of the active version.

For every chart available in the active version, shows:
- The version best clear type, DJ level, EX score and miss count
- The score level relative to the nearest level boundary, e.g. AAA-78
- The career best EX score and the version it was set in

Positional arguments are score CSV files or directories of them. File names must
follow the export convention <iidx-id>_<sp|dp>_score.csv.

Examples:
  # Analyze the latest version from a folder of exports
  score2dx analyze --music-db musics.json ./exports

  # Single play charts of BISTROVER only
  score2dx analyze --music-db musics.json --active-version 28 --style sp ./exports

  # Export every chart to CSV for tracking
  score2dx analyze --music-db musics.json --limit 20000 --output csv --output-file charts.csv ./exports`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run chart analysis", err)
		}
	},
}
