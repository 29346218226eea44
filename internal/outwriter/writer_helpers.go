package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/internal/logging"
	"github.com/huangsam/score2dx/internal/parquet"
	"github.com/huangsam/score2dx/schema"
)

// ErrParquetNeedsFile is returned when Parquet output is requested without an output file.
var ErrParquetNeedsFile = errors.New("parquet output requires --output-file")

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		logging.Info().Str("file", outputFile).Msg(successMsg)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// writeParquet writes rows to the configured output file.
func writeParquet[T any](outputFile string, rows []T) error {
	if outputFile == "" {
		return ErrParquetNeedsFile
	}
	if err := parquet.WriteFile(rows, outputFile); err != nil {
		return err
	}
	logging.Info().Str("file", outputFile).Int("rows", len(rows)).Msg("Wrote Parquet")
	return nil
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// ratio returns count/total as a percentage, or zero for an empty total.
func ratio(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) * 100 / float64(total)
}

// clearLabel colors a clear type label when colors are enabled.
func clearLabel(label string, cfg *contract.Config) string {
	if !cfg.UseColors {
		return label
	}
	ct, err := schema.ParseClearType(label)
	if err != nil {
		return label
	}
	return contract.GetColorClearLabel(ct)
}

// categoryLabel colors a score level category when colors are enabled.
func categoryLabel(label string, cfg *contract.Config) string {
	if !cfg.UseColors {
		return label
	}
	c, err := schema.ParseScoreLevelCategory(label)
	if err != nil {
		return label
	}
	return contract.GetColorCategoryLabel(c)
}

func optionalInt(v *int32) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
