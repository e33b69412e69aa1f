// Package dataset owns all reads of the dashboard's CSV inputs.
//
// Tables are parsed once, normalized to canonical columns through an alias
// list and kept in a Cache keyed by (path, modification time). A Loader
// resolves the primary bundle through the two-tier fallback of the folder
// layout and exposes each optional artifact independently so that a missing
// forecast never blocks the KPI view.
package dataset
