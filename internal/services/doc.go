// Package services implements the business operations behind the HTTP
// handlers and the kpi-report command.
//
// DashboardService reads the dataset bundle and the optional upstream
// artifacts through a shared dataset.Loader and turns them into KPI, trend,
// category, churn, segment, forecast, quality and preview views, chart images
// and exports. A missing optional artifact only disables its own view: the
// overview reports it through availability flags and warnings.
//
// PredictionService loads the scaler and classifier artifacts through the same
// cache and runs single-record churn inference.
//
// ReportService writes KPI reports into the export directory and lists or
// opens the saved files.
//
// HealthService reports liveness, readiness and version information.
//
// All services take their dependencies through constructors and log through an
// injected *slog.Logger.
package services
