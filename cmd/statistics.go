package cmd

import (
	"github.com/huangsam/score2dx/core"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/spf13/cobra"
)

// statisticsCmd reports version best counts per difficulty.
var statisticsCmd = &cobra.Command{
	Use:   "statistics [csv-path...]",
	Short: "Count version bests by clear type, DJ level and score level.",
	Long: `Summarize the version bests of the active version for every style difficulty.

Beginner charts are left out. Each difficulty is broken down by:
- Clear type (NO PLAY through FULLCOMBO CLEAR)
- DJ level (F through AAA)
- Score level category (A- through MAX)

Examples:
  # Statistics of the latest version
  score2dx statistics --music-db musics.json ./exports

  # Double play statistics as JSON
  score2dx statistics --music-db musics.json --style dp --output json ./exports`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStatistics(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run statistics", err)
		}
	},
}
