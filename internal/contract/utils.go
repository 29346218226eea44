package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/score2dx/internal/logging"
	"github.com/huangsam/score2dx/schema"
)

// Color variables for clear type labels, from worst to best lamp.
var clearTypeColors = [schema.ClearTypeCount]*color.Color{
	color.New(color.FgHiBlack),           // NO PLAY
	color.New(color.FgRed),               // FAILED
	color.New(color.FgMagenta),           // ASSIST
	color.New(color.FgGreen),             // EASY
	color.New(color.FgCyan),              // CLEAR
	color.New(color.FgWhite, color.Bold), // HARD
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgHiCyan, color.Bold),
}

// Category colors for score level buckets.
var (
	MaxColor    = color.New(color.FgHiYellow, color.Bold)
	AAAColor    = color.New(color.FgYellow)
	AAColor     = color.New(color.FgWhite)
	BelowAColor = color.New(color.FgHiBlack)
)

// GetPlainClearLabel returns the clear type label used by CSV, JSON and plain tables.
func GetPlainClearLabel(ct schema.ClearType) string {
	return ct.String()
}

// GetColorClearLabel returns a colored clear type label for console output (table).
func GetColorClearLabel(ct schema.ClearType) string {
	text := GetPlainClearLabel(ct)
	if int(ct) < 0 || int(ct) >= schema.ClearTypeCount {
		return text
	}
	return clearTypeColors[ct].Sprint(text)
}

// GetColorCategoryLabel returns a colored score level category.
func GetColorCategoryLabel(c schema.ScoreLevelCategory) string {
	text := c.String()
	switch {
	case c >= schema.MaxMinus:
		return MaxColor.Sprint(text)
	case c >= schema.AAAMinus:
		return AAAColor.Sprint(text)
	case c >= schema.AAMinus:
		return AAColor.Sprint(text)
	case c == schema.AMinus:
		return BelowAColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logging.Error().Err(err).Msg(msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	logging.Warn().Err(err).Msg(msg)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the import cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".score2dx_cache.db"
	}
	return filepath.Join(homeDir, ".score2dx_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".score2dx_analysis.db"
	}
	return filepath.Join(homeDir, ".score2dx_analysis.db")
}

// TruncateTitle truncates a music title to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so that at least one character of the title is kept.
func TruncateTitle(title string, maxWidth int) string {
	runes := []rune(title)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return title
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
