// Package api implements the HTTP REST API the rendering layer reads.
//
// New(Deps) returns an http.Handler that serves:
//
//	GET   /api/v1/snapshot                latest cycle snapshot + updated_at, stale, uptime_pct
//	GET   /api/v1/insights                insight report, api_healthy, messages
//	GET   /api/v1/thresholds              threshold table in metric order
//	GET   /api/v1/settings                current control-surface settings
//	POST  /api/v1/refresh                 request an immediate cycle (202)
//	GET   /api/v1/defects?flagged=1&limit defect log from the Telemetry API
//	POST  /api/v1/defects                 validate and submit a defect (rate limited)
//	PATCH /api/v1/defects/{id}/flag       flag or unflag a record (rate limited)
//	GET   /api/v1/shift?date&format       shift report as json | csv | xlsx | pdf
//
// All JSON endpoints respond with Content-Type: application/json and return
// 405 for other methods. Validation failures are 400, rate-limited writes
// are 429 and Telemetry API failures are 502 with the upstream reason in
// the error body. Every response carries an X-Request-ID header.
//
// Before the first cycle finishes, /snapshot and /insights report the
// "waiting" status rather than an error.
package api
