// Package telemetry is the HTTP client for the Telemetry API that fronts
// the rolling-mill line.
//
// Endpoints used:
//
//	GET   /api/history?limit=N                  → []reading, ascending by ts
//	GET   /api/defects?flagged={0,1}&limit=N    → []defect record
//	POST  /api/defects                          → {id, ts}
//	PATCH /api/defects/{id}/flag                → {updated}
//	GET   /api/reports/shift?date=YYYY-MM-DD    → {date, rows}
//	GET   /api/reports/shift?...&format=csv     → text/csv
//
// Every call runs under its own timeout (DefaultTimeout unless overridden)
// and is attempted exactly once. Failures never panic and never return a nil
// slice: the caller gets an empty result plus one of *TransportError,
// *ResponseError or *ParseError, and can keep going with stale state.
//
// Payloads are decoded into the fixed shapes in pkg/types at this boundary.
// A payload that does not match (missing fields, wrong JSON types, bad
// timestamps) fails the whole call with a *ParseError rather than leaking
// partially-typed data.
//
// Each outgoing request carries a fresh X-Request-ID so API-side logs can be
// correlated with the monitor's own logs.
package telemetry
