package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ChartInfo is the reference metadata of a chart at one version.
type ChartInfo struct {
	Level int `json:"level" yaml:"level"`
	Note  int `json:"note" yaml:"note"`
}

// ChartScore is one observed score of a chart.
// MissCount is nil when the source has no miss count, which is not the same as zero misses.
type ChartScore struct {
	ClearType   ClearType `json:"clear_type"`
	DjLevel     DjLevel   `json:"dj_level"`
	ExScore     int       `json:"ex_score"`
	PGreatCount int       `json:"pgreat_count"`
	GreatCount  int       `json:"great_count"`
	MissCount   *int      `json:"miss_count,omitempty"`
}

// IsTrivial reports a score that carries no information: zero EX score and no miss count.
func (c ChartScore) IsTrivial() bool {
	return c.ExScore == 0 && c.MissCount == nil
}

// Clone returns a copy that does not share the miss count pointer.
func (c ChartScore) Clone() ChartScore {
	if c.MissCount != nil {
		miss := *c.MissCount
		c.MissCount = &miss
	}
	return c
}

func (c ChartScore) String() string {
	miss := "N/A"
	if c.MissCount != nil {
		miss = strconv.Itoa(*c.MissCount)
	}
	return fmt.Sprintf("ChartScore {Clear: %s, DjLevel: %s, Score: %d (%d/%d), Miss: %s}",
		c.ClearType, c.DjLevel, c.ExScore, c.PGreatCount, c.GreatCount, miss)
}

// Miss returns a pointer to n, for building scores with a miss count.
func Miss(n int) *int {
	return &n
}

// ChartScoreRecord is a chart score together with where and when it was recorded.
type ChartScoreRecord struct {
	Score        ChartScore `json:"score"`
	VersionIndex int        `json:"version_index"`
	DateTime     time.Time  `json:"date_time"`
}

func (r ChartScoreRecord) String() string {
	return fmt.Sprintf("[%02d][%s]: %s", r.VersionIndex, r.DateTime.Format(DateTimeLayout), r.Score)
}

// MusicScore is one snapshot of every difficulty of a music in one play style.
// Each line of a score CSV is one MusicScore.
type MusicScore struct {
	MusicID   int                          `json:"music_id"`
	PlayStyle PlayStyle                    `json:"play_style"`
	PlayCount int                          `json:"play_count"`
	DateTime  time.Time                    `json:"date_time"`
	Charts    [DifficultyCount]*ChartScore `json:"charts"`
}

// NewMusicScore creates a MusicScore with no chart scores.
func NewMusicScore(musicID int, style PlayStyle, playCount int, dateTime time.Time) MusicScore {
	return MusicScore{MusicID: musicID, PlayStyle: style, PlayCount: playCount, DateTime: dateTime}
}

// ChartScore returns the score of the difficulty, or nil if it is absent.
func (m *MusicScore) ChartScore(diff Difficulty) *ChartScore {
	return m.Charts[diff]
}

// SetChartScore stores a copy of the score for the difficulty.
func (m *MusicScore) SetChartScore(diff Difficulty, score ChartScore) {
	cloned := score.Clone()
	m.Charts[diff] = &cloned
}

// ResetChartScore removes the score of the difficulty.
func (m *MusicScore) ResetChartScore(diff Difficulty) {
	m.Charts[diff] = nil
}

// ChartCount returns the number of difficulties with a score.
func (m *MusicScore) ChartCount() int {
	count := 0
	for _, c := range m.Charts {
		if c != nil {
			count++
		}
	}
	return count
}

// Clone returns a deep copy.
func (m MusicScore) Clone() MusicScore {
	for i, c := range m.Charts {
		if c != nil {
			cloned := c.Clone()
			m.Charts[i] = &cloned
		}
	}
	return m
}

func (m *MusicScore) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "MusicScore [%s][%s]: PlayCount %d", FormatMusicID(m.MusicID), m.DateTime.Format(DateTimeLayout), m.PlayCount)
	for _, diff := range Difficulties {
		if c := m.Charts[diff]; c != nil {
			fmt.Fprintf(&sb, "\n[%s]: %s|%s|%d", ToStyleDifficulty(m.PlayStyle, diff), c.ClearType, c.DjLevel, c.ExScore)
		}
	}
	return sb.String()
}

// RecordType selects what "better" means when comparing chart scores.
type RecordType int

// All record types.
const (
	ScoreRecord RecordType = iota
	MissRecord
	RecordTypeCount int = iota
)

func (r RecordType) String() string {
	switch r {
	case ScoreRecord:
		return "Score"
	case MissRecord:
		return "Miss"
	}
	return fmt.Sprintf("RecordType(%d)", int(r))
}

// IsBetterRecord reports whether lhs is strictly better than rhs.
// Miss comparison requires both miss counts and is false otherwise.
func IsBetterRecord(recordType RecordType, lhs, rhs ChartScore) bool {
	switch recordType {
	case ScoreRecord:
		return lhs.ExScore > rhs.ExScore
	case MissRecord:
		if lhs.MissCount == nil || rhs.MissCount == nil {
			return false
		}
		return *lhs.MissCount < *rhs.MissCount
	}
	return false
}

// HasRecord reports whether the score can take part in comparisons of the record type.
func HasRecord(recordType RecordType, score ChartScore) bool {
	if recordType == MissRecord {
		return score.MissCount != nil
	}
	return true
}

// BestType selects a record of a career record.
type BestType int

// All best types.
const (
	VersionBest BestType = iota
	OtherBest
	CareerBest
)

func (b BestType) String() string {
	switch b {
	case VersionBest:
		return "VersionBest"
	case OtherBest:
		return "OtherBest"
	case CareerBest:
		return "CareerBest"
	}
	return fmt.Sprintf("BestType(%d)", int(b))
}

// BestScoreType names the four career best slots kept per difficulty.
type BestScoreType int

// All best score types.
const (
	BestExScore BestScoreType = iota
	SecondBestExScore
	BestMiss
	SecondBestMiss
	BestScoreTypeCount int = iota
)

func (b BestScoreType) String() string {
	switch b {
	case BestExScore:
		return "BestExScore"
	case SecondBestExScore:
		return "SecondBestExScore"
	case BestMiss:
		return "BestMiss"
	case SecondBestMiss:
		return "SecondBestMiss"
	}
	return fmt.Sprintf("BestScoreType(%d)", int(b))
}

// FindMode controls whether a time lookup includes the exact instant.
type FindMode int

// All find modes.
const (
	AtDateTime FindMode = iota
	BeforeDateTime
)

func (f FindMode) String() string {
	switch f {
	case AtDateTime:
		return "AtDateTime"
	case BeforeDateTime:
		return "BeforeDateTime"
	}
	return fmt.Sprintf("FindMode(%d)", int(f))
}
