package schema

import (
	"fmt"
	"regexp"
)

var iidxIDPattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

// IsIidxID reports whether s looks like "1234-5678".
func IsIidxID(s string) bool {
	return iidxIDPattern.MatchString(s)
}

// ToMusicID builds a music id from the debut version and the index within it.
func ToMusicID(versionIndex, musicIndex int) int {
	return versionIndex*1000 + musicIndex
}

// SplitMusicID returns the debut version and the index within it.
func SplitMusicID(musicID int) (versionIndex, musicIndex int) {
	return musicID / 1000, musicID % 1000
}

// FormatMusicID formats a music id as five digits.
func FormatMusicID(musicID int) string {
	return fmt.Sprintf("%05d", musicID)
}

// ChartID identifies one (music, style, difficulty) chart.
type ChartID int

// ToChartID builds a chart id: musicID*10 + styleDifficulty.
func ToChartID(musicID int, style PlayStyle, diff Difficulty) ChartID {
	return ChartID(musicID*StyleDifficultyCount + int(ToStyleDifficulty(style, diff)))
}

// ToChartIDFromStyleDifficulty builds a chart id from a combined style difficulty.
func ToChartIDFromStyleDifficulty(musicID int, sd StyleDifficulty) ChartID {
	return ChartID(musicID*StyleDifficultyCount + int(sd))
}

// Split returns the music id, play style and difficulty.
func (c ChartID) Split() (int, PlayStyle, Difficulty) {
	musicID := int(c) / StyleDifficultyCount
	style, diff := StyleDifficulty(int(c) % StyleDifficultyCount).Split()
	return musicID, style, diff
}

// StyleDifficulty returns the combined style difficulty of the chart.
func (c ChartID) StyleDifficulty() StyleDifficulty {
	return StyleDifficulty(int(c) % StyleDifficultyCount)
}

// MusicID returns the music of the chart.
func (c ChartID) MusicID() int {
	return int(c) / StyleDifficultyCount
}

func (c ChartID) String() string {
	return fmt.Sprintf("%s-%s", FormatMusicID(c.MusicID()), c.StyleDifficulty())
}
