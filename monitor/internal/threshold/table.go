package threshold

import (
	"math"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

// Direction says which way a metric becomes unhealthy.
type Direction string

const (
	HighIsBad Direction = "high_is_bad"
	LowIsBad  Direction = "low_is_bad"
)

// Spec is the warn/critical pair for one metric.
type Spec struct {
	Direction Direction `json:"direction" yaml:"direction"`
	Warn      float64   `json:"warn" yaml:"warn"`
	Crit      float64   `json:"crit" yaml:"crit"`
}

// Table maps each metric to its limits. A Table is read-only once built.
type Table map[types.Metric]Spec

// Default is the process-wide limit table for line RM-01.
var Default = Table{
	types.MetricTemperature: {Direction: HighIsBad, Warn: 700, Crit: 750}, // °F
	types.MetricVibration:   {Direction: HighIsBad, Warn: 1.8, Crit: 2.5}, // mm/s
	types.MetricThroughput:  {Direction: LowIsBad, Warn: 260, Crit: 220},  // units/hr
	types.MetricDefectRate:  {Direction: HighIsBad, Warn: 2.0, Crit: 3.0}, // %
}

// Classify returns the health state of value v for metric m.
func (t Table) Classify(m types.Metric, v float64) types.HealthState {
	spec, ok := t[m]
	if !ok || math.IsNaN(v) {
		return types.StateUnknown
	}
	return spec.classify(v)
}

// ClassifyReading classifies every metric of r in declared order.
// A nil reading yields unknown for all metrics.
func (t Table) ClassifyReading(r *types.Reading) map[types.Metric]types.HealthState {
	out := make(map[types.Metric]types.HealthState, len(types.Metrics))
	for _, m := range types.Metrics {
		if r == nil {
			out[m] = types.StateUnknown
			continue
		}
		v, ok := r.Value(m)
		if !ok {
			out[m] = types.StateUnknown
			continue
		}
		out[m] = t.Classify(m, v)
	}
	return out
}

// Bands returns the limits for m, for drawing guide lines next to a chart.
func (t Table) Bands(m types.Metric) (Spec, bool) {
	s, ok := t[m]
	return s, ok
}

func (s Spec) classify(v float64) types.HealthState {
	if s.Direction == LowIsBad {
		switch {
		case v <= s.Crit:
			return types.StateCritical
		case v <= s.Warn:
			return types.StateWatch
		default:
			return types.StateOK
		}
	}
	switch {
	case v >= s.Crit:
		return types.StateCritical
	case v >= s.Warn:
		return types.StateWatch
	default:
		return types.StateOK
	}
}
