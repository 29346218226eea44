package schema

import (
	"fmt"
	"strings"
)

// ScoreLevel is a level boundary of the EX score scale, Min and Max included.
type ScoreLevel int

// All score levels.
const (
	LevelMin ScoreLevel = iota
	LevelF
	LevelE
	LevelD
	LevelC
	LevelB
	LevelA
	LevelAA
	LevelAAA
	LevelMax
	ScoreLevelCount int = iota
)

var scoreLevelNames = [ScoreLevelCount]string{"Min", "F", "E", "D", "C", "B", "A", "AA", "AAA", "Max"}

func (l ScoreLevel) String() string {
	if int(l) < 0 || int(l) >= ScoreLevelCount {
		return fmt.Sprintf("ScoreLevel(%d)", int(l))
	}
	return scoreLevelNames[l]
}

// ScoreRange places a score relative to its nearest level boundary.
type ScoreRange int

// All score ranges.
const (
	LevelPlus ScoreRange = iota
	AtLevel
	LevelMinus
)

func (r ScoreRange) String() string {
	switch r {
	case LevelPlus:
		return "LevelPlus"
	case AtLevel:
		return "AtLevel"
	case LevelMinus:
		return "LevelMinus"
	}
	return fmt.Sprintf("ScoreRange(%d)", int(r))
}

// Suffix returns "+", "" or "-".
func (r ScoreRange) Suffix() string {
	switch r {
	case LevelPlus:
		return "+"
	case AtLevel:
		return ""
	case LevelMinus:
		return "-"
	}
	return "?"
}

// ScoreLevelCategory is the coarse bucket used for statistics.
type ScoreLevelCategory int

// All score level categories.
const (
	AMinus ScoreLevelCategory = iota
	AEqPlus
	AAMinus
	AAEqPlus
	AAAMinus
	AAAEqPlus
	MaxMinus
	CategoryMax
	ScoreLevelCategoryCount int = iota
)

func (c ScoreLevelCategory) String() string {
	switch c {
	case AMinus:
		return "A-"
	case AEqPlus:
		return "A"
	case AAMinus:
		return "AA-"
	case AAEqPlus:
		return "AA"
	case AAAMinus:
		return "AAA-"
	case AAAEqPlus:
		return "AAA"
	case MaxMinus:
		return "MAX-"
	case CategoryMax:
		return "MAX"
	}
	return fmt.Sprintf("ScoreLevelCategory(%d)", int(c))
}

// ParseScoreLevelCategory parses the display form of a category, e.g. "AAA-".
func ParseScoreLevelCategory(s string) (ScoreLevelCategory, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for i := range ScoreLevelCategoryCount {
		if ScoreLevelCategory(i).String() == upper {
			return ScoreLevelCategory(i), nil
		}
	}
	return 0, fmt.Errorf("invalid score level category %q", s)
}
