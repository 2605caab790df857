// Package shift fetches the per-shift rollup for a production day and
// renders it for download.
//
// Rows are computed by the Telemetry API and are opaque here: the package
// checks for presence, orders columns for display, and never does
// arithmetic on the values. A day with no rows is reported as Empty rather
// than as an error.
//
// Export formats:
//
//	csv   passed through from the API unchanged
//	xlsx  built locally (one sheet, header row + data rows)
//	pdf   built locally (A4 landscape table)
package shift
