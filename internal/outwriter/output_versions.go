package outwriter

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/huangsam/score2dx/core/version"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// VersionEntry describes one version that accepts score data.
type VersionEntry struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Begin string `json:"begin"`
	End   string `json:"end,omitempty"` // last minute of the window, empty while open
}

// BuildVersionEntries lists every supported score version with its date window.
func BuildVersionEntries() ([]VersionEntry, error) {
	var entries []VersionEntry
	for _, v := range version.SupportedScoreVersions() {
		w, err := version.FindWindow(v)
		if err != nil {
			return nil, err
		}
		entry := VersionEntry{Index: v, Name: version.Names[v], Begin: version.FormatDateTime(w.Begin)}
		if !w.IsOpen() {
			entry.End = version.FormatDateTime(w.Last())
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// WriteVersionList outputs the supported versions, dispatching based on the output format configured.
func WriteVersionList(cfg *contract.Config) error {
	entries, err := BuildVersionEntries()
	if err != nil {
		return err
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, entries)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"index", "name", "begin", "end"}, func(cw *csv.Writer) error {
				for _, e := range entries {
					if err := cw.Write([]string{version.FormatVersion(e.Index), e.Name, e.Begin, e.End}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for the version list")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			table := tablewriter.NewWriter(w)
			table.Header([]string{"#", "Name", "Begin", "End"})
			table.Configure(func(cfg *tablewriter.Config) {
				cfg.Row.Alignment.Global = tw.AlignLeft
			})
			var data [][]string
			for _, e := range entries {
				data = append(data, []string{version.FormatVersion(e.Index), e.Name, e.Begin, e.End})
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			return table.Render()
		}, "Wrote table")
	}
}
