// Package defects validates operator defect submissions and keeps a short
// read-through cache of the last defect listing.
//
// Submissions are checked locally before any request is sent: the rate must
// lie in [0, 100], batch and machine must be non-blank after trimming, and
// the defect type must be one of the known categories. A failed check is a
// *ValidationError and the Telemetry API is never contacted.
//
// The cache holds the result of the most recent successful List call. A
// successful Submit or SetFlag invalidates it so the next List goes back to
// the API; a failed call leaves it as it was.
package defects
