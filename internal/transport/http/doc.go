// Package http implements the HTTP handlers of the dashboard server.
//
// Handlers are thin: they parse and validate query parameters and bodies,
// call a service interface and render the result. Successful JSON responses
// share one envelope:
//
//	{"status": "success", "data": ..., "count": 3}
//
// where count is present for list results. Every error goes through the
// central apierrors.ErrorHandler and is returned as an RFC 7807
// application/problem+json document.
//
// # Routes
//
//	GET  /                                  dashboard page
//	GET  /api/dashboard/{view}              overview, kpis, trend, categories, churn,
//	                                        segments, segments/assignments, forecast,
//	                                        quality, preview/{table}
//	GET  /api/model                         model info
//	POST /api/predict                       single-record churn prediction
//	POST /api/cache/invalidate              drop cached tables and artifacts
//	GET  /api/charts/{chart}.png            PNG charts
//	GET  /api/export/kpis.{csv,xlsx}        KPI report downloads
//	GET  /api/export/kpis?format=csv|xlsx   same, format picked by query
//	GET  /api/reports                       saved reports, newest first
//	POST /api/reports                       save a report to the export directory
//	GET  /api/reports/{name}                download a saved report
//
// Services are consumed through the interfaces in interfaces.go so handlers
// can be tested against testify mocks.
package http
