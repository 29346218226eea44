// Package cmd defines the command-line interface for score2dx.
package cmd

import (
	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statisticsCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(levelCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("iidx-id", "", "IIDX id of the player, e.g. 1234-5678 (defaults to the first CSV)")
	rootCmd.PersistentFlags().String("music-db", "", "Path to the music database (JSON or YAML)")
	rootCmd.PersistentFlags().Int("active-version", version.LatestVersionIndex, "Version index to analyze")
	rootCmd.PersistentFlags().Int("score-version", contract.AutoScoreVersion, "Version the CSV scores belong to (-1 derives it from the CSV dates)")
	rootCmd.PersistentFlags().String("style", "all", "Play style filter: all or sp or dp")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Import cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: trace or debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", contract.DefaultLogFormat, "Log format: console or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of activityCmd to Viper
	activityCmd.Flags().String("begin", "", "Window begin, 'YYYY-MM-DD' or 'YYYY-MM-DD HH:MM' in UTC (defaults to the active version's release)")
	activityCmd.Flags().String("end", "", "Window end, same format (empty leaves the window open)")
	if err := viper.BindPFlags(activityCmd.Flags()); err != nil {
		contract.LogFatal("Error binding activity flags", err)
	}

	// Bind all flags of levelCmd to Viper
	levelCmd.Flags().Int("notes", 0, "Note count of the chart")
	levelCmd.Flags().Int("score", -1, "EX score to classify (omit to only list key scores)")
	if err := viper.BindPFlags(levelCmd.Flags()); err != nil {
		contract.LogFatal("Error binding level flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
