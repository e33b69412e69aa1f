package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_WriteCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	tests := []struct {
		name     string
		options  WriteOptions
		expected string
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"Month", "Revenue"},
				Records: [][]string{{"2024-01", "300.00"}},
			},
			expected: "Month,Revenue\n2024-01,300.00\n",
		},
		{
			name: "bom prefix",
			options: WriteOptions{
				Headers:   []string{"A"},
				Records:   [][]string{{"1"}},
				BOMPrefix: true,
			},
			expected: "\xEF\xBB\xBFA\n1\n",
		},
		{
			name:     "no headers",
			options:  WriteOptions{Records: [][]string{{"x", "y"}}},
			expected: "x,y\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := strings.ReplaceAll(tt.name, " ", "_") + ".csv"
			require.NoError(t, w.WriteCSV(file, tt.options))

			data, err := os.ReadFile(filepath.Join(dir, file))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	require.NoError(t, w.WriteCSV("log.csv", WriteOptions{Headers: []string{"A"}, Records: [][]string{{"1"}}}))
	require.NoError(t, w.WriteCSV("log.csv", WriteOptions{Headers: []string{"A"}, Records: [][]string{{"2"}}, Append: true}))

	data, err := os.ReadFile(filepath.Join(dir, "log.csv"))
	require.NoError(t, err)
	assert.Equal(t, "A\n1\n2\n", string(data))
}

func TestCSVWriter_ResolvePath(t *testing.T) {
	w := NewCSVWriter("/out")
	assert.Equal(t, filepath.Join("/out", "a.csv"), w.resolvePath("a.csv"))
	assert.Equal(t, "/abs/a.csv", w.resolvePath("/abs/a.csv"))
	assert.Equal(t, "a.csv", NewCSVWriter("").resolvePath("a.csv"))
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, sampleReport()))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Summary"}, rows[0])
	assert.Equal(t, []string{"Field", "Value"}, rows[1])

	var titles []string
	for i, row := range rows {
		if len(row) == 1 && row[0] != "" && (i == 0 || rows[i-1][0] == "") {
			titles = append(titles, row[0])
		}
	}
	assert.Equal(t, []string{"Summary", "KPIs", "Monthly Trend", "Categories", "Segments"}, titles)
	assert.Contains(t, rows, []string{"Electronics", "400.00", "61.54"})
}

func TestCSVWriter_WriteReport(t *testing.T) {
	dir := t.TempDir()
	path, err := NewCSVWriter(dir).WriteReport("nested/report.csv", sampleReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "report.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM))
	assert.Contains(t, string(data), "total_revenue,650.00,59.09")
}
