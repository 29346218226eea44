package cmd

import (
	"github.com/huangsam/score2dx/core"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/spf13/cobra"
)

// activityCmd lists score updates within a date window.
var activityCmd = &cobra.Command{
	Use:   "activity [csv-path...]",
	Short: "List chart score updates between two date times.",
	Long: `Walk the ledger and list every chart whose score changed inside a window.

Each update shows the clear type and EX score before and after the play, so
improvements and new clears can be tracked session by session.

The window defaults to the release of the active version and stays open when
--end is omitted. Dates are in UTC.

Examples:
  # Everything played this version
  score2dx activity --music-db musics.json ./exports

  # One week of play
  score2dx activity --music-db musics.json --begin 2021-11-01 --end "2021-11-07 23:59" ./exports`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteActivity(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run activity analysis", err)
		}
	},
}
