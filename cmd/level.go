package cmd

import (
	"fmt"

	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/internal/logging"
	"github.com/huangsam/score2dx/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// outputSetup validates the configuration for commands that only format output.
// It does not open the persistence layer.
func outputSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	initLogging()
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	input.CSVPathStrs = nil
	return contract.ProcessAndValidate(cfg, input)
}

// levelCmd computes key scores for a note count.
var levelCmd = &cobra.Command{
	Use:   "level",
	Short: "Show the key EX scores of a chart and classify an EX score.",
	Long: `Compute the EX score boundaries of every DJ level for a chart with the given notes.

The maximum EX score is twice the note count. Each level boundary is shown with
the score where the level's minus range begins.

With --score, also classifies the EX score, e.g. AAA-78 or AA+12.

Examples:
  # Key scores of a 1000 note chart
  score2dx level --notes 1000

  # Where does 1700 stand?
  score2dx level --notes 1000 --score 1700`,
	Args:    cobra.NoArgs,
	PreRunE: outputSetup,
	Run: func(_ *cobra.Command, _ []string) {
		notes := viper.GetInt("notes")
		score := viper.GetInt("score")
		logging.Debug().Int("notes", notes).Int("score", score).Msg("Computing score level")
		if err := outwriter.NewOutWriter().WriteScoreLevel(notes, score, cfg); err != nil {
			contract.LogFatal("Cannot compute score level", err)
		}
	},
}
