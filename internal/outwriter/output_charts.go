package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/internal/parquet"
	"github.com/huangsam/score2dx/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// chartTableBaseWidth is the width of every chart table column except the title.
const chartTableBaseWidth = 70

// WriteChartResults outputs the analyzed charts, dispatching based on the output format configured.
// Tables are cut to the result limit; machine formats get every chart.
func WriteChartResults(records []schema.ChartResultRecord, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, records)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVChartResults(w, records)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(cfg.OutputFile, parquet.ConvertChartResultRecords(records))
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChartTable(w, records, cfg, duration)
		}, "Wrote table")
	}
}

func writeCSVChartResults(w io.Writer, records []schema.ChartResultRecord) error {
	header := []string{
		"chart_id",
		"music_id",
		"title",
		"style_difficulty",
		"level",
		"note_count",
		"clear_type",
		"dj_level",
		"ex_score",
		"miss_count",
		"score_level",
		"category",
		"career_best_ex_score",
		"career_best_version",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range records {
			rec := []string{
				strconv.FormatInt(r.ChartID, 10),
				schema.FormatMusicID(int(r.MusicID)),
				r.Title,
				r.StyleDifficulty,
				strconv.Itoa(int(r.Level)),
				strconv.Itoa(int(r.NoteCount)),
				r.ClearType,
				r.DjLevel,
				strconv.Itoa(int(r.ExScore)),
				optionalInt(r.MissCount),
				r.ScoreLevelDiff,
				r.Category,
				optionalInt(r.CareerBestExScore),
				optionalInt(r.CareerBestVersion),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeChartTable generates and writes the human-readable table.
func writeChartTable(w io.Writer, records []schema.ChartResultRecord, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Title", "Chart", "Lv", "Clear", "DJ", "EX", "Miss", "Level", "Best"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	shown := records
	if cfg.ResultLimit > 0 && len(shown) > cfg.ResultLimit {
		shown = shown[:cfg.ResultLimit]
	}
	titleWidth := GetMaxTableTitleWidth(cfg, chartTableBaseWidth)

	var data [][]string
	for i, r := range shown {
		best := ""
		if r.CareerBestExScore != nil && *r.CareerBestExScore > r.ExScore {
			// A career best above the version best comes from another version.
			best = fmt.Sprintf("%d (%s) +%d", *r.CareerBestExScore, optionalInt(r.CareerBestVersion), *r.CareerBestExScore-r.ExScore)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateTitle(r.Title, titleWidth),
			r.StyleDifficulty,
			strconv.Itoa(int(r.Level)),
			clearLabel(r.ClearType, cfg),
			r.DjLevel,
			strconv.Itoa(int(r.ExScore)),
			optionalInt(r.MissCount),
			r.ScoreLevelDiff,
			best,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d of %d charts\n", len(shown), len(records)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}
