// Package scorelevel classifies EX scores into score levels, DJ levels and statistic categories.
//
// The EX score scale [0, 2*notes] is cut into 18 equal parts. Even cut points
// are level boundaries (F at 2/18, E at 4/18, ... AAA at 16/18, Max at 18/18)
// and odd cut points are half levels, where a score starts counting as
// "minus" the next level.
package scorelevel

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/score2dx/schema"
)

const pivotCount = 19

// ErrNonPositiveNote is returned when a chart has no notes.
var ErrNonPositiveNote = errors.New("note count is non-positive")

// Result is a score level, the position relative to it, and the distance in EX score.
type Result struct {
	Level schema.ScoreLevel
	Range schema.ScoreRange
	Diff  int
}

// FindScoreLevelDiff classifies exScore for a chart with noteCount notes.
// exScore is clamped to [0, 2*noteCount].
func FindScoreLevelDiff(noteCount, exScore int) (Result, error) {
	if noteCount <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrNonPositiveNote, noteCount)
	}

	maxScore := noteCount * 2
	exScore = min(max(exScore, 0), maxScore)
	if exScore == maxScore {
		return Result{Level: schema.LevelMax, Range: schema.AtLevel}, nil
	}

	var pivots [pivotCount]int
	for i := range pivotCount {
		pivots[i] = ceilDiv(maxScore*i, pivotCount-1)
	}

	// Small charts repeat pivot values; the greatest index wins.
	index := 0
	for i, p := range pivots {
		if p <= exScore {
			index = i
		}
	}
	begin, end := pivots[index], pivots[index+1]

	var r Result
	if index%2 == 0 {
		r.Level = schema.ScoreLevel(index / 2)
		r.Diff = exScore - begin
		r.Range = schema.AtLevel
		if r.Diff != 0 {
			r.Range = schema.LevelPlus
		}
	} else {
		r.Level = schema.ScoreLevel((index + 1) / 2)
		r.Range = schema.LevelMinus
		r.Diff = end - exScore
	}

	if r.Level == schema.LevelMin {
		r.Level = schema.LevelF
		r.Range = schema.LevelMinus
		r.Diff = FindKeyScore(noteCount, schema.LevelF) - exScore
	}
	return r, nil
}

// FindKeyScore returns the minimum EX score for a level.
func FindKeyScore(noteCount int, level schema.ScoreLevel) int {
	return ceilDiv(noteCount*2*int(level), 9)
}

// FindHalfKeyScore returns the EX score where a score becomes "minus" the level.
func FindHalfKeyScore(noteCount int, level schema.ScoreLevel) int {
	return ceilDiv(noteCount*2*(int(level)*2-1), 18)
}

// KeyScore holds the EX scores where a chart reaches "minus" a level and the level itself.
type KeyScore struct {
	Level     schema.ScoreLevel
	HalfScore int
	Score     int
}

// KeyScores returns the key scores of every level from F to Max.
func KeyScores(noteCount int) ([]KeyScore, error) {
	if noteCount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNonPositiveNote, noteCount)
	}
	scores := make([]KeyScore, 0, schema.ScoreLevelCount-1)
	for level := schema.LevelF; level <= schema.LevelMax; level++ {
		scores = append(scores, KeyScore{
			Level:     level,
			HalfScore: FindHalfKeyScore(noteCount, level),
			Score:     FindKeyScore(noteCount, level),
		})
	}
	return scores, nil
}

// FindDjLevel returns the DJ level of exScore.
func FindDjLevel(noteCount, exScore int) (schema.DjLevel, error) {
	r, err := FindScoreLevelDiff(noteCount, exScore)
	if err != nil {
		return schema.DjF, err
	}
	return r.DjLevel(), nil
}

// FindCategory returns the statistics category of exScore.
func FindCategory(noteCount, exScore int) (schema.ScoreLevelCategory, error) {
	r, err := FindScoreLevelDiff(noteCount, exScore)
	if err != nil {
		return schema.AMinus, err
	}
	return r.Category(), nil
}

// DjLevel collapses the result to the 8 step DJ level scale.
func (r Result) DjLevel() schema.DjLevel {
	switch {
	case r.Level <= schema.LevelF:
		return schema.DjF
	case r.Level == schema.LevelMax:
		return schema.DjAAA
	case r.Range != schema.LevelMinus:
		return schema.DjLevel(int(r.Level) - 1)
	default:
		return schema.DjLevel(int(r.Level) - 2)
	}
}

// Category collapses the result to a statistics bucket.
// Everything below A is AMinus.
func (r Result) Category() schema.ScoreLevelCategory {
	var category schema.ScoreLevelCategory
	switch r.Level {
	case schema.LevelA:
		category = schema.AMinus
	case schema.LevelAA:
		category = schema.AAMinus
	case schema.LevelAAA:
		category = schema.AAAMinus
	case schema.LevelMax:
		category = schema.MaxMinus
	default:
		return schema.AMinus
	}
	if r.Range != schema.LevelMinus {
		category++
	}
	return category
}

// String returns forms like "AAA+", "AAA" or "AAA-".
func (r Result) String() string {
	name := strings.ToUpper(r.Level.String())
	if r.Level == schema.LevelMin {
		name = "F"
	}
	return name + r.Range.Suffix()
}

// DiffString returns forms like "AAA-5" or "AA+12". A zero diff is written "+0", e.g. "MAX+0".
func (r Result) DiffString() string {
	if r.Diff == 0 {
		return r.String() + "+0"
	}
	return r.String() + strconv.Itoa(r.Diff)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
