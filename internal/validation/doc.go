// Package validation checks directories and files the dashboard reads from
// and writes to before they are used.
package validation
