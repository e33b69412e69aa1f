// Package exporter writes the KPI report as CSV or as an XLSX workbook.
//
// A Report is flattened into named Sections (summary, KPIs, monthly trend,
// categories, segments, forecast). The CSV encoding stacks the sections in one
// file separated by blank lines; the XLSX encoding puts each section on its own
// sheet.
//
// Example usage:
//
//	report := exporter.Report{KPIs: kpis, Trend: trend}
//	paths, err := exporter.NewReportExporter(cfg.Paths.ExportDir).Export(report, exporter.FormatBoth)
package exporter
