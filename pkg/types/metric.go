package types

// Metric names one of the four monitored line signals. The string value
// matches the field name used by the Telemetry API history endpoint.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricVibration   Metric = "vibration"
	MetricThroughput  Metric = "throughput"
	MetricDefectRate  Metric = "defects"
)

// Metrics is the declared metric order. Classification maps, insight lists
// and exports all iterate in this order.
var Metrics = []Metric{
	MetricTemperature,
	MetricVibration,
	MetricThroughput,
	MetricDefectRate,
}

// Label returns the operator-facing name of the metric.
func (m Metric) Label() string {
	switch m {
	case MetricTemperature:
		return "Work-Roll Temperature"
	case MetricVibration:
		return "Bearing Vibration"
	case MetricThroughput:
		return "Line Throughput"
	case MetricDefectRate:
		return "Surface Defects"
	default:
		return string(m)
	}
}

// Unit returns the display unit for the metric.
func (m Metric) Unit() string {
	switch m {
	case MetricTemperature:
		return "°F"
	case MetricVibration:
		return "mm/s"
	case MetricThroughput:
		return "units/hr"
	case MetricDefectRate:
		return "%"
	default:
		return ""
	}
}

// HealthState is the classification of one metric value.
type HealthState string

const (
	StateOK       HealthState = "ok"
	StateWatch    HealthState = "watch"
	StateCritical HealthState = "critical"
	StateUnknown  HealthState = "unknown"
)

// Rank orders states by severity: unknown < ok < watch < critical.
func (s HealthState) Rank() int {
	switch s {
	case StateOK:
		return 1
	case StateWatch:
		return 2
	case StateCritical:
		return 3
	default:
		return 0
	}
}
