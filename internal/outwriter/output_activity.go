package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/internal/parquet"
	"github.com/huangsam/score2dx/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const activityTableBaseWidth = 75

// WriteActivityResults outputs the activity records, dispatching based on the output format configured.
func WriteActivityResults(records []schema.ActivityRecord, begin, end time.Time, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, records)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVActivity(w, records)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(cfg.OutputFile, parquet.ConvertActivityRecords(records))
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeActivityTable(w, records, begin, end, cfg)
		}, "Wrote table")
	}
}

func writeCSVActivity(w io.Writer, records []schema.ActivityRecord) error {
	header := []string{
		"date_time",
		"music_id",
		"title",
		"style_difficulty",
		"play_count",
		"clear_type",
		"dj_level",
		"ex_score",
		"miss_count",
		"previous_clear_type",
		"previous_ex_score",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range records {
			rec := []string{
				version.FormatDateTime(r.DateTime),
				schema.FormatMusicID(int(r.MusicID)),
				r.Title,
				r.StyleDifficulty,
				strconv.Itoa(int(r.PlayCount)),
				r.ClearType,
				r.DjLevel,
				strconv.Itoa(int(r.ExScore)),
				optionalInt(r.MissCount),
				optionalString(r.PreviousClearType),
				optionalInt(r.PreviousExScore),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeActivityTable lists the newest records up to the result limit.
func writeActivityTable(w io.Writer, records []schema.ActivityRecord, begin, end time.Time, cfg *contract.Config) error {
	to := "now"
	if !end.IsZero() {
		to = version.FormatDateTime(end)
	}
	if _, err := fmt.Fprintf(w, "Activity from %s to %s\n", version.FormatDateTime(begin), to); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Title", "Chart", "Clear", "EX", "Gain", "Miss"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	shown := records
	if cfg.ResultLimit > 0 && len(shown) > cfg.ResultLimit {
		shown = shown[len(shown)-cfg.ResultLimit:]
	}
	titleWidth := GetMaxTableTitleWidth(cfg, activityTableBaseWidth)

	var data [][]string
	for _, r := range shown {
		lamp := clearLabel(r.ClearType, cfg)
		if r.PreviousClearType != nil && *r.PreviousClearType != r.ClearType {
			lamp = clearLabel(*r.PreviousClearType, cfg) + " -> " + lamp
		}
		gain := ""
		if r.PreviousExScore != nil {
			gain = fmt.Sprintf("%+d", r.ExScore-*r.PreviousExScore)
		}
		data = append(data, []string{
			version.FormatDateTime(r.DateTime),
			contract.TruncateTitle(r.Title, titleWidth),
			r.StyleDifficulty,
			lamp,
			strconv.Itoa(int(r.ExScore)),
			gain,
			optionalInt(r.MissCount),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d of %d updates\n", len(shown), len(records))
	return err
}
