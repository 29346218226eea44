package cmd

import (
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/internal/outwriter"
	"github.com/spf13/cobra"
)

// versionsCmd lists the versions that accept score data.
var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List supported versions and their date windows.",
	Long: `List every version whose scores can be recorded, with its date window in UTC.

A score belongs to the version whose window contains its play time. The window of
the latest version stays open.

Examples:
  score2dx versions
  score2dx versions --output json`,
	Args:    cobra.NoArgs,
	PreRunE: outputSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := outwriter.NewOutWriter().WriteVersions(cfg); err != nil {
			contract.LogFatal("Cannot list versions", err)
		}
	},
}
