package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/internal/logging"
	"github.com/huangsam/score2dx/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 100
	MaxResultLimit     = 20000
	DefaultPrecision   = 1
	DefaultLogLevel    = "info"
	DefaultLogFormat   = logging.FormatConsole
)

// AutoScoreVersion lets the importer derive the score version from the CSV dates.
const AutoScoreVersion = -1

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// dateLayouts are accepted for --begin and --end.
var dateLayouts = []string{schema.DateTimeLayout, "2006-01-02"}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	CSVPaths      []string
	IidxID        string
	MusicDatabase string
	ActiveVersion int
	ScoreVersion  int // AutoScoreVersion unless overridden

	// Activity window. A zero End leaves the window open.
	Begin time.Time
	End   time.Time

	Styles      []schema.PlayStyle
	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	LogLevel  string
	LogFormat string
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	CSVPathStrs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	IidxID            string `mapstructure:"iidx-id"`
	MusicDatabase     string `mapstructure:"music-db"`
	ActiveVersion     int    `mapstructure:"active-version"`
	ScoreVersion      int    `mapstructure:"score-version"`
	Style             string `mapstructure:"style"`
	OutputFile        string `mapstructure:"output-file"`
	Limit             int    `mapstructure:"limit"`
	Workers           int    `mapstructure:"workers"`
	Precision         int    `mapstructure:"precision"`
	Output            string `mapstructure:"output"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	LogLevel          string `mapstructure:"log-level"`
	LogFormat         string `mapstructure:"log-format"`

	// --- Fields from activityCmd.Flags() ---
	Begin string `mapstructure:"begin"`
	End   string `mapstructure:"end"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.CSVPaths = slices.Clone(c.CSVPaths)
	clone.Styles = slices.Clone(c.Styles)
	return &clone
}

// HasStyle reports whether the style filter selects the play style.
func (c *Config) HasStyle(style schema.PlayStyle) bool {
	return slices.Contains(c.Styles, style)
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processVersions(cfg, input); err != nil {
		return err
	}
	if err := processActivityRange(cfg, input); err != nil {
		return err
	}
	return processCSVPaths(cfg, input)
}

// ProcessProfilingConfig enables profiling when a prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	// Cache and analysis must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.MusicDatabase = strings.TrimSpace(input.MusicDatabase)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	cfg.Styles, err = parseStyles(input.Style)
	if err != nil {
		return err
	}

	cfg.IidxID = strings.TrimSpace(input.IidxID)
	if cfg.IidxID != "" && !schema.IsIidxID(cfg.IidxID) {
		return fmt.Errorf("invalid iidx id '%s'. expected dddd-dddd", cfg.IidxID)
	}

	cfg.LogLevel = input.LogLevel
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if !logging.ValidLevel(cfg.LogLevel) {
		return fmt.Errorf("invalid log level '%s'", input.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.LogFormat != logging.FormatConsole && cfg.LogFormat != logging.FormatJSON {
		return fmt.Errorf("invalid log format '%s'. must be console, json", input.LogFormat)
	}
	return nil
}

// parseStyles accepts "", "all", "sp", "dp" or a comma separated list.
func parseStyles(s string) ([]schema.PlayStyle, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return slices.Clone(schema.PlayStyles[:]), nil
	}
	var styles []schema.PlayStyle
	for part := range strings.SplitSeq(s, ",") {
		style, err := schema.ParsePlayStyle(part)
		if err != nil {
			return nil, fmt.Errorf("invalid --style value: %w", err)
		}
		if !slices.Contains(styles, style) {
			styles = append(styles, style)
		}
	}
	slices.Sort(styles)
	return styles, nil
}

// processVersions validates the active and score versions.
func processVersions(cfg *Config, input *ConfigRawInput) error {
	cfg.ActiveVersion = input.ActiveVersion
	if !version.IsSupportedScoreVersion(cfg.ActiveVersion) {
		return fmt.Errorf("active version %d is not supported. must be %d to %d",
			input.ActiveVersion, version.FirstDateTimeVersionIndex, version.LatestVersionIndex)
	}

	cfg.ScoreVersion = input.ScoreVersion
	if cfg.ScoreVersion != AutoScoreVersion && !version.IsSupportedScoreVersion(cfg.ScoreVersion) {
		return fmt.Errorf("score version %d is not supported. must be %d to %d",
			input.ScoreVersion, version.FirstDateTimeVersionIndex, version.LatestVersionIndex)
	}
	return nil
}

// processActivityRange parses the optional activity window.
func processActivityRange(cfg *Config, input *ConfigRawInput) error {
	cfg.Begin, cfg.End = time.Time{}, time.Time{}

	if input.Begin != "" {
		t, err := ParseDateTime(input.Begin)
		if err != nil {
			return fmt.Errorf("invalid begin date time '%s': %w", input.Begin, err)
		}
		cfg.Begin = t
	}
	if input.End != "" {
		t, err := ParseDateTime(input.End)
		if err != nil {
			return fmt.Errorf("invalid end date time '%s': %w", input.End, err)
		}
		cfg.End = t
	}

	if !cfg.Begin.IsZero() && !cfg.End.IsZero() && cfg.Begin.After(cfg.End) {
		return fmt.Errorf("begin (%s) cannot be after end (%s)", version.FormatDateTime(cfg.Begin), version.FormatDateTime(cfg.End))
	}
	return nil
}

// processCSVPaths resolves positional CSV paths.
func processCSVPaths(cfg *Config, input *ConfigRawInput) error {
	paths, err := ResolveCSVPaths(input.CSVPathStrs)
	if err != nil {
		return err
	}
	cfg.CSVPaths = paths
	return nil
}

// ResolveCSVPaths makes paths absolute; directories expand to their *.csv files.
func ResolveCSVPaths(paths []string) ([]string, error) {
	var resolved []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}
		if !info.IsDir() {
			resolved = append(resolved, abs)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(abs, "*.csv"))
		if err != nil {
			return nil, err
		}
		slices.Sort(matches)
		resolved = append(resolved, matches...)
	}
	return resolved, nil
}

// ParseDateTime parses "2006-01-02 15:04" or "2006-01-02" in UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// RevalidateAnalysis applies per-request overrides to a cloned config.
// Empty or zero values keep what the config already has.
func RevalidateAnalysis(cfg *Config, dataPath, style string, activeVersion int) error {
	if dataPath != "" {
		paths, err := ResolveCSVPaths([]string{dataPath})
		if err != nil {
			return err
		}
		cfg.CSVPaths = paths
	}
	if len(cfg.CSVPaths) == 0 {
		return fmt.Errorf("data_path is required")
	}
	if style != "" {
		styles, err := parseStyles(style)
		if err != nil {
			return err
		}
		cfg.Styles = styles
	}
	if activeVersion != 0 {
		if !version.IsSupportedScoreVersion(activeVersion) {
			return fmt.Errorf("active version %d is not supported. must be %d to %d",
				activeVersion, version.FirstDateTimeVersionIndex, version.LatestVersionIndex)
		}
		cfg.ActiveVersion = activeVersion
	}
	return nil
}

// RevalidateActivity applies a per-request activity window to a cloned config.
func RevalidateActivity(cfg *Config, begin, end string) error {
	return processActivityRange(cfg, &ConfigRawInput{Begin: begin, End: end})
}
