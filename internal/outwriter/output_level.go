package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/score2dx/core/scorelevel"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// ScoreLevelReport is the JSON form of a score level lookup.
type ScoreLevelReport struct {
	NoteCount  int             `json:"note_count"`
	MaxScore   int             `json:"max_score"`
	ExScore    *int            `json:"ex_score,omitempty"`
	ScoreLevel string          `json:"score_level,omitempty"`
	DjLevel    string          `json:"dj_level,omitempty"`
	Category   string          `json:"category,omitempty"`
	KeyScores  []KeyScoreEntry `json:"key_scores"`
}

// KeyScoreEntry is one level of a ScoreLevelReport.
type KeyScoreEntry struct {
	Level     string `json:"level"`
	HalfScore int    `json:"half_score"`
	Score     int    `json:"score"`
}

// BuildScoreLevelReport computes the key scores of a chart. A negative exScore is left out.
func BuildScoreLevelReport(noteCount, exScore int) (*ScoreLevelReport, error) {
	keyScores, err := scorelevel.KeyScores(noteCount)
	if err != nil {
		return nil, err
	}
	report := &ScoreLevelReport{NoteCount: noteCount, MaxScore: noteCount * 2}
	for _, k := range keyScores {
		report.KeyScores = append(report.KeyScores, KeyScoreEntry{
			Level:     scorelevel.Result{Level: k.Level, Range: schema.AtLevel}.String(),
			HalfScore: k.HalfScore,
			Score:     k.Score,
		})
	}
	if exScore < 0 {
		return report, nil
	}
	result, err := scorelevel.FindScoreLevelDiff(noteCount, exScore)
	if err != nil {
		return nil, err
	}
	report.ExScore = &exScore
	report.ScoreLevel = result.DiffString()
	report.DjLevel = result.DjLevel().String()
	report.Category = result.Category().String()
	return report, nil
}

// WriteScoreLevelResults outputs a score level report, dispatching based on the output format configured.
func WriteScoreLevelResults(noteCount, exScore int, cfg *contract.Config) error {
	report, err := BuildScoreLevelReport(noteCount, exScore)
	if err != nil {
		return err
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"level", "half_score", "score"}, func(cw *csv.Writer) error {
				for _, k := range report.KeyScores {
					if err := cw.Write([]string{k.Level, strconv.Itoa(k.HalfScore), strconv.Itoa(k.Score)}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for score levels")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoreLevelTable(w, report, cfg)
		}, "Wrote table")
	}
}

func writeScoreLevelTable(w io.Writer, report *ScoreLevelReport, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Level", "Minus from", "Key score"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, k := range report.KeyScores {
		data = append(data, []string{k.Level, strconv.Itoa(k.HalfScore), strconv.Itoa(k.Score)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Notes: %d, max EX score: %d\n", report.NoteCount, report.MaxScore); err != nil {
		return err
	}
	if report.ExScore == nil {
		return nil
	}
	_, err := fmt.Fprintf(w, "EX score %d is %s (DJ level %s, category %s)\n",
		*report.ExScore, report.ScoreLevel, report.DjLevel, categoryLabel(report.Category, cfg))
	return err
}
