package outwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{name: "precision 2", precision: 2, value: 3.14159, expected: "3.14"},
		{name: "precision 0", precision: 0, value: 3.14159, expected: "3"},
		{name: "precision 1", precision: 1, value: 66.666, expected: "66.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, intFmt := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			assert.Equal(t, "%d", intFmt)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"count": 3}))
	assert.Equal(t, "{\n  \"count\": 3\n}\n", buf.String())
}

func TestWriteCSVWithHeader(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"a", "b"}, func(w *csv.Writer) error {
		return w.Write([]string{"1", "two, three"})
	})
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\"two, three\"\n", buf.String())
}

func TestWriteWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	err := writeWithFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	}, "Wrote text")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	err = writeWithFile(filepath.Join(t.TempDir(), "missing", "out.txt"), func(io.Writer) error { return nil }, "Wrote text")
	assert.Error(t, err)
}

func TestWriteParquetNeedsFile(t *testing.T) {
	assert.ErrorIs(t, writeParquet[KeyScoreEntry]("", nil), ErrParquetNeedsFile)
}

func TestRatio(t *testing.T) {
	assert.Zero(t, ratio(3, 0))
	assert.InDelta(t, 25.0, ratio(1, 4), 1e-9)
}

func TestLabelsWithoutColors(t *testing.T) {
	cfg := &contract.Config{}
	assert.Equal(t, "HARD CLEAR", clearLabel("HARD CLEAR", cfg))
	assert.Equal(t, "AAA-", categoryLabel("AAA-", cfg))

	cfg.UseColors = true
	assert.Contains(t, clearLabel("HARD CLEAR", cfg), "HARD CLEAR")
	assert.Equal(t, "bogus", clearLabel("bogus", cfg))
	assert.Equal(t, "bogus", categoryLabel("bogus", cfg))
}

func TestOptionalFormatting(t *testing.T) {
	n := int32(5)
	s := "EASY CLEAR"
	assert.Equal(t, "5", optionalInt(&n))
	assert.Empty(t, optionalInt(nil))
	assert.Equal(t, s, optionalString(&s))
	assert.Empty(t, optionalString(nil))
}

// readOutput returns the content written to path.
func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// readCSV parses the CSV written to path.
func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(readOutput(t, path))).ReadAll()
	require.NoError(t, err)
	return rows
}

// readJSON decodes the JSON written to path into v.
func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, path)), v))
}
