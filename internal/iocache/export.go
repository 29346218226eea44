package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/score2dx/internal/parquet"
)

// ExecuteAnalysisExport writes every stored run and chart result to two Parquet files
// named after outputFile.
func ExecuteAnalysisExport(w io.Writer, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetAnalysisStore()
	if store == nil {
		return errors.New("analysis store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total chart records: %d\n", status.TableSizes[chartResultsTable])

	analysisRuns, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	chartResults, err := store.GetAllChartResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve chart results: %w", err)
	}

	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquet.ConvertAnalysisRunRecords(analysisRuns), runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(analysisRuns), runsFile)

	chartsFile := outputFile + ".chart_results.parquet"
	if err := parquet.WriteChartResultsParquet(parquet.ConvertChartResultRecords(chartResults), chartsFile); err != nil {
		return fmt.Errorf("failed to write chart results: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d chart results to: %s\n", len(chartResults), chartsFile)

	return nil
}
