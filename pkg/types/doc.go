// Package types defines the Go types shared by every part of the monitor:
// the four line metrics, health states, telemetry readings, defect records
// and shift report rows.
//
// These are the canonical in-memory representations. Wire decoding lives in
// monitor/internal/telemetry, which converts Telemetry API payloads into
// these shapes at the boundary and never lets loosely-typed data inward.
package types
