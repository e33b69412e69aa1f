// Package files discovers KPI report files written to the export directory.
//
// Report files are named kpi_report_YYYYMMDD_HHMMSS with a .csv or .xlsx
// extension. Discovery lists them newest first so the dashboard can offer
// previously saved reports for download.
//
//	discovery := files.NewDiscovery(exportDir)
//	reports, err := discovery.FindReports(".")
package files
