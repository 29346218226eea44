// Package schema has the enums, identifiers and score models shared by all parts of score2dx.
package schema

import (
	"fmt"
	"strings"
)

// PlayStyle is single or double play.
type PlayStyle int

// All play styles.
const (
	SinglePlay PlayStyle = iota
	DoublePlay
	PlayStyleCount int = iota
)

// PlayStyles lists every play style in index order.
var PlayStyles = [PlayStyleCount]PlayStyle{SinglePlay, DoublePlay}

func (s PlayStyle) String() string {
	switch s {
	case SinglePlay:
		return "SinglePlay"
	case DoublePlay:
		return "DoublePlay"
	}
	return fmt.Sprintf("PlayStyle(%d)", int(s))
}

// Acronym returns SP or DP.
func (s PlayStyle) Acronym() string {
	switch s {
	case SinglePlay:
		return "SP"
	case DoublePlay:
		return "DP"
	}
	return "??"
}

// ParsePlayStyle accepts the acronym or the full name, case-insensitively.
func ParsePlayStyle(s string) (PlayStyle, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SP", "SINGLEPLAY":
		return SinglePlay, nil
	case "DP", "DOUBLEPLAY":
		return DoublePlay, nil
	}
	return 0, fmt.Errorf("invalid play style %q", s)
}

// Difficulty is the chart difficulty within a play style.
type Difficulty int

// All difficulties.
const (
	Beginner Difficulty = iota
	Normal
	Hyper
	Another
	Leggendaria
	DifficultyCount int = iota
)

// Difficulties lists every difficulty in index order.
var Difficulties = [DifficultyCount]Difficulty{Beginner, Normal, Hyper, Another, Leggendaria}

func (d Difficulty) String() string {
	switch d {
	case Beginner:
		return "Beginner"
	case Normal:
		return "Normal"
	case Hyper:
		return "Hyper"
	case Another:
		return "Another"
	case Leggendaria:
		return "Leggendaria"
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// Acronym returns the one letter form (B, N, H, A, L).
func (d Difficulty) Acronym() string {
	switch d {
	case Beginner:
		return "B"
	case Normal:
		return "N"
	case Hyper:
		return "H"
	case Another:
		return "A"
	case Leggendaria:
		return "L"
	}
	return "?"
}

// StyleDifficulty combines play style and difficulty: style*5 + difficulty.
type StyleDifficulty int

// All style difficulties.
const (
	SPB StyleDifficulty = iota
	SPN
	SPH
	SPA
	SPL
	DPB
	DPN
	DPH
	DPA
	DPL
	StyleDifficultyCount int = iota
)

// ToStyleDifficulty combines a play style and a difficulty.
func ToStyleDifficulty(style PlayStyle, diff Difficulty) StyleDifficulty {
	return StyleDifficulty(int(style)*DifficultyCount + int(diff))
}

// Split returns the play style and difficulty.
func (sd StyleDifficulty) Split() (PlayStyle, Difficulty) {
	return PlayStyle(int(sd) / DifficultyCount), Difficulty(int(sd) % DifficultyCount)
}

// IsBeginner reports SPB and DPB, which are left out of statistics.
func (sd StyleDifficulty) IsBeginner() bool {
	return sd == SPB || sd == DPB
}

func (sd StyleDifficulty) String() string {
	if int(sd) < 0 || int(sd) >= StyleDifficultyCount {
		return fmt.Sprintf("StyleDifficulty(%d)", int(sd))
	}
	style, diff := sd.Split()
	return style.Acronym() + diff.Acronym()
}

// ParseStyleDifficulty parses forms like "SPA" or "dph".
func ParseStyleDifficulty(s string) (StyleDifficulty, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for i := range StyleDifficultyCount {
		if StyleDifficulty(i).String() == upper {
			return StyleDifficulty(i), nil
		}
	}
	return 0, fmt.Errorf("invalid style difficulty %q", s)
}

// ClearType is the clear lamp of a chart score, ordered from worst to best.
type ClearType int

// All clear types.
const (
	NoPlay ClearType = iota
	Failed
	AssistClear
	EasyClear
	NormalClear
	HardClear
	ExHardClear
	FullComboClear
	ClearTypeCount int = iota
)

// Name returns the upper snake case identifier, e.g. EX_HARD_CLEAR.
func (c ClearType) Name() string {
	switch c {
	case NoPlay:
		return "NO_PLAY"
	case Failed:
		return "FAILED"
	case AssistClear:
		return "ASSIST_CLEAR"
	case EasyClear:
		return "EASY_CLEAR"
	case NormalClear:
		return "CLEAR"
	case HardClear:
		return "HARD_CLEAR"
	case ExHardClear:
		return "EX_HARD_CLEAR"
	case FullComboClear:
		return "FULLCOMBO_CLEAR"
	}
	return fmt.Sprintf("ClearType(%d)", int(c))
}

// String returns the display form with spaces, e.g. EX HARD CLEAR.
func (c ClearType) String() string {
	return strings.ReplaceAll(c.Name(), "_", " ")
}

// ParseClearType accepts both the identifier and the display form.
func ParseClearType(s string) (ClearType, error) {
	normalized := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), " ", "_")
	for i := range ClearTypeCount {
		if ClearType(i).Name() == normalized {
			return ClearType(i), nil
		}
	}
	return 0, fmt.Errorf("invalid clear type %q", s)
}

// DjLevel is the 8 grade scale from F to AAA.
type DjLevel int

// All DJ levels.
const (
	DjF DjLevel = iota
	DjE
	DjD
	DjC
	DjB
	DjA
	DjAA
	DjAAA
	DjLevelCount int = iota
)

var djLevelNames = [DjLevelCount]string{"F", "E", "D", "C", "B", "A", "AA", "AAA"}

func (d DjLevel) String() string {
	if int(d) < 0 || int(d) >= DjLevelCount {
		return fmt.Sprintf("DjLevel(%d)", int(d))
	}
	return djLevelNames[d]
}

// ParseDjLevel parses a DJ level name. "---" is treated as F.
func ParseDjLevel(s string) (DjLevel, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(s))
	if trimmed == "---" {
		return DjF, nil
	}
	for i, name := range djLevelNames {
		if name == trimmed {
			return DjLevel(i), nil
		}
	}
	return 0, fmt.Errorf("invalid dj level %q", s)
}

// ChartStatus denotes the availability of a chart at one version.
type ChartStatus int

// All chart statuses.
const (
	NotAvailable ChartStatus = iota
	BeginAvailable
	Available
	Removed
)

func (c ChartStatus) String() string {
	switch c {
	case NotAvailable:
		return "NotAvailable"
	case BeginAvailable:
		return "BeginAvailable"
	case Available:
		return "Available"
	case Removed:
		return "Removed"
	}
	return fmt.Sprintf("ChartStatus(%d)", int(c))
}

// IsAvailable reports BeginAvailable or Available.
func (c ChartStatus) IsAvailable() bool {
	return c == BeginAvailable || c == Available
}
