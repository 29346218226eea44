package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/internal/parquet"
	"github.com/huangsam/score2dx/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// statisticsDimensions is the order statistics tables are printed in.
var statisticsDimensions = []struct {
	name  string
	title string
}{
	{schema.ClearTypeDimension, "Clear types"},
	{schema.DjLevelDimension, "DJ levels"},
	{schema.CategoryDimension, "Score levels"},
}

// statisticsPivot is one dimension of the statistics laid out as a grid.
type statisticsPivot struct {
	rows   []string
	labels []string
	counts map[string]map[string]int
	totals map[string]int
}

// pivotStatistics groups records of one dimension by style difficulty, keeping first seen order.
func pivotStatistics(records []schema.StatisticsRecord, dimension string) statisticsPivot {
	p := statisticsPivot{counts: map[string]map[string]int{}, totals: map[string]int{}}
	seenLabels := map[string]bool{}
	for _, r := range records {
		if r.Dimension != dimension {
			continue
		}
		if _, ok := p.counts[r.StyleDifficulty]; !ok {
			p.rows = append(p.rows, r.StyleDifficulty)
			p.counts[r.StyleDifficulty] = map[string]int{}
		}
		if !seenLabels[r.Label] {
			seenLabels[r.Label] = true
			p.labels = append(p.labels, r.Label)
		}
		p.counts[r.StyleDifficulty][r.Label] = r.Count
		p.totals[r.StyleDifficulty] = r.Total
	}
	return p
}

// WriteStatisticsResults outputs the statistics, dispatching based on the output format configured.
func WriteStatisticsResults(records []schema.StatisticsRecord, activeVersion int, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, records)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVStatistics(w, records, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(cfg.OutputFile, parquet.ConvertStatisticsRecords(records))
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatisticsTables(w, records, activeVersion, cfg)
		}, "Wrote table")
	}
}

func writeCSVStatistics(w io.Writer, records []schema.StatisticsRecord, fmtFloat func(float64) string) error {
	header := []string{"style_difficulty", "dimension", "label", "count", "total", "percent"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range records {
			rec := []string{
				r.StyleDifficulty,
				r.Dimension,
				r.Label,
				strconv.Itoa(r.Count),
				strconv.Itoa(r.Total),
				fmtFloat(ratio(r.Count, r.Total)),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeStatisticsTables renders one table per dimension with a row per style difficulty.
func writeStatisticsTables(w io.Writer, records []schema.StatisticsRecord, activeVersion int, cfg *contract.Config) error {
	name := ""
	if activeVersion >= 0 && activeVersion < len(version.Names) {
		name = " " + version.Names[activeVersion]
	}
	if _, err := fmt.Fprintf(w, "Statistics of %s%s\n", version.FormatVersion(activeVersion), name); err != nil {
		return err
	}
	for _, dim := range statisticsDimensions {
		p := pivotStatistics(records, dim.name)
		if len(p.rows) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n%s\n", dim.title); err != nil {
			return err
		}

		table := tablewriter.NewWriter(w)
		headers := []string{"Chart"}
		for _, label := range p.labels {
			headers = append(headers, styleLabel(dim.name, label, cfg))
		}
		headers = append(headers, "Total")
		table.Header(headers)
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})

		var data [][]string
		for _, sd := range p.rows {
			row := []string{sd}
			for _, label := range p.labels {
				row = append(row, strconv.Itoa(p.counts[sd][label]))
			}
			row = append(row, strconv.Itoa(p.totals[sd]))
			data = append(data, row)
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	return nil
}

func styleLabel(dimension, label string, cfg *contract.Config) string {
	switch dimension {
	case schema.ClearTypeDimension:
		return clearLabel(label, cfg)
	case schema.CategoryDimension:
		return categoryLabel(label, cfg)
	}
	return label
}
