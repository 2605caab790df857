// Package insight turns the current reading into plain-English notes for
// the operator. At most one note is produced per metric, in declared metric
// order, and only for metrics at or beyond their warn bound.
//
// Report.Status separates "no data yet" (StatusWaiting) from "data present,
// nothing breached" (StatusNominal); both have an empty Insights list.
package insight
