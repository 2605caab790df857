package types

import (
	"math"
	"time"
)

// Reading is one timestamped sample of all four line metrics.
// Readings are created by the telemetry client and never mutated.
type Reading struct {
	Timestamp   time.Time `json:"ts"`
	Temperature float64   `json:"temperature"`
	Vibration   float64   `json:"vibration"`
	Throughput  float64   `json:"throughput"`
	DefectRate  float64   `json:"defects"`
}

// Value returns the value of metric m. The boolean is false for an unknown
// metric or a NaN value.
func (r Reading) Value(m Metric) (float64, bool) {
	var v float64
	switch m {
	case MetricTemperature:
		v = r.Temperature
	case MetricVibration:
		v = r.Vibration
	case MetricThroughput:
		v = r.Throughput
	case MetricDefectRate:
		v = r.DefectRate
	default:
		return 0, false
	}
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Latest returns a pointer to the last element of history, or nil when
// history is empty.
func Latest(history []Reading) *Reading {
	if len(history) == 0 {
		return nil
	}
	r := history[len(history)-1]
	return &r
}
