// Package cycle runs one evaluation pass: probe the Telemetry API, fetch the
// history window, classify the newest reading and derive insights.
//
// Run never returns an error. Failed fetches become an empty history, an
// absent current reading and an entry in Snapshot.Messages. The Snapshot
// carries no wall-clock fields, so two runs against an unchanged backend
// produce equal snapshots.
package cycle
