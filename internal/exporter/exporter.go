package exporter

import (
	"fmt"
	"path/filepath"
	"time"
)

// ReportExporter writes KPI reports into an output directory
type ReportExporter struct {
	csvWriter *CSVWriter
	outDir    string
	now       func() time.Time
}

// NewReportExporter creates an exporter writing into outDir
func NewReportExporter(outDir string) *ReportExporter {
	return &ReportExporter{
		csvWriter: NewCSVWriter(outDir),
		outDir:    outDir,
		now:       time.Now,
	}
}

// Export writes the report in the given format and returns the written paths
func (e *ReportExporter) Export(report Report, format string) ([]string, error) {
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = e.now()
	}
	base := "kpi_report_" + report.GeneratedAt.UTC().Format("20060102_150405")

	var written []string
	if format == FormatCSV || format == FormatBoth {
		path, err := e.csvWriter.WriteReport(base+".csv", report)
		if err != nil {
			return written, fmt.Errorf("failed to export csv: %w", err)
		}
		written = append(written, path)
	}
	if format == FormatXLSX || format == FormatBoth {
		path := filepath.Join(e.outDir, base+".xlsx")
		if err := WriteXLSX(path, report); err != nil {
			return written, fmt.Errorf("failed to export xlsx: %w", err)
		}
		written = append(written, path)
	}
	if len(written) == 0 {
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	return written, nil
}

// ValidFormat reports whether format is csv, xlsx or both
func ValidFormat(format string) bool {
	switch format {
	case FormatCSV, FormatXLSX, FormatBoth:
		return true
	}
	return false
}
