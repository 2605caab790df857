package insight

import (
	"fmt"
	"strconv"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/threshold"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

// Status summarises a Report.
type Status string

const (
	StatusWaiting  Status = "waiting"  // no reading available
	StatusNominal  Status = "nominal"  // reading present, every metric below warn
	StatusAlerting Status = "alerting" // at least one insight
)

// Severity of an Insight. Mirrors the two non-ok health states.
type Severity = types.HealthState

// Insight is one operator note.
type Insight struct {
	Metric   types.Metric `json:"metric"`
	Severity Severity     `json:"severity"`
	Title    string       `json:"title"`
	Detail   string       `json:"detail"`
	// Action is the recommended first response on the line.
	Action string  `json:"action"`
	Value  float64 `json:"value"`
	Bound  float64 `json:"bound"`
}

// Report is the insight output for one reading.
type Report struct {
	Status   Status    `json:"status"`
	Insights []Insight `json:"insights"`
}

// wording holds the per-metric phrasing.
type wording struct {
	critTitle string
	warnTitle string
	format    string // value format verb
	action    string
}

var wordings = map[types.Metric]wording{
	types.MetricTemperature: {
		critTitle: "Temperature CRITICAL",
		warnTitle: "Temperature high",
		format:    "%.2f",
		action:    "Check coolant flow, roll gap, and furnace settings; reduce speed if needed.",
	},
	types.MetricVibration: {
		critTitle: "Vibration CRITICAL",
		warnTitle: "Vibration elevated",
		format:    "%.2f",
		action:    "Inspect bearings and lubrication; check misalignment or roll imbalance.",
	},
	types.MetricThroughput: {
		critTitle: "Throughput CRITICAL (low)",
		warnTitle: "Throughput low",
		format:    "%.0f",
		action:    "Verify upstream coil feed, stand speed, and scheduler targets.",
	},
	types.MetricDefectRate: {
		critTitle: "Defects CRITICAL",
		warnTitle: "Defects high",
		format:    "%.2f",
		action:    "Run surface inspection; check coolant, work-roll condition, and strip cleanliness.",
	},
}

// Generate builds the insight report for r using limits from table.
// A nil r yields StatusWaiting.
func Generate(table threshold.Table, r *types.Reading) Report {
	if r == nil {
		return Report{Status: StatusWaiting, Insights: []Insight{}}
	}

	out := make([]Insight, 0, len(types.Metrics))
	for _, m := range types.Metrics {
		v, ok := r.Value(m)
		if !ok {
			continue
		}
		spec, ok := table.Bands(m)
		if !ok {
			continue
		}

		var bound float64
		state := table.Classify(m, v)
		switch state {
		case types.StateCritical:
			bound = spec.Crit
		case types.StateWatch:
			bound = spec.Warn
		default:
			continue
		}
		out = append(out, build(m, state, v, bound, spec.Direction))
	}

	if len(out) == 0 {
		return Report{Status: StatusNominal, Insights: out}
	}
	return Report{Status: StatusAlerting, Insights: out}
}

func build(m types.Metric, state types.HealthState, v, bound float64, dir threshold.Direction) Insight {
	w, ok := wordings[m]
	if !ok {
		w = wording{critTitle: string(m) + " CRITICAL", warnTitle: string(m) + " watch", format: "%.2f"}
	}

	title := w.warnTitle
	if state == types.StateCritical {
		title = w.critTitle
	}

	cmp := "≥"
	if dir == threshold.LowIsBad {
		cmp = "≤"
	}
	value := fmt.Sprintf(w.format, v)
	unit := m.Unit()
	switch unit {
	case "%":
		value += unit
	case "":
	default:
		value += " " + unit
	}

	return Insight{
		Metric:   m,
		Severity: state,
		Title:    title,
		Detail:   fmt.Sprintf("Now %s (%s %s)", value, cmp, strconv.FormatFloat(bound, 'f', -1, 64)),
		Action:   w.action,
		Value:    v,
		Bound:    bound,
	}
}
