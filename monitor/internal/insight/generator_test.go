package insight

import (
	"testing"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/threshold"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

func reading(temp, vib, thr, def float64) *types.Reading {
	return &types.Reading{Temperature: temp, Vibration: vib, Throughput: thr, DefectRate: def}
}

func TestGenerate_NoReading_Waiting(t *testing.T) {
	rep := Generate(threshold.Default, nil)
	if rep.Status != StatusWaiting {
		t.Errorf("Status = %q, want %q", rep.Status, StatusWaiting)
	}
	if len(rep.Insights) != 0 {
		t.Errorf("Insights = %d, want 0", len(rep.Insights))
	}
}

func TestGenerate_AllNominal(t *testing.T) {
	rep := Generate(threshold.Default, reading(650, 1.0, 300, 0.5))
	if rep.Status != StatusNominal {
		t.Errorf("Status = %q, want %q", rep.Status, StatusNominal)
	}
	if len(rep.Insights) != 0 {
		t.Errorf("Insights = %+v, want none", rep.Insights)
	}
	if rep.Status == Generate(threshold.Default, nil).Status {
		t.Error("nominal and waiting must be distinguishable")
	}
}

func TestGenerate_OnePerMetricInOrder(t *testing.T) {
	// temperature critical, vibration watch, throughput critical, defects watch
	rep := Generate(threshold.Default, reading(760, 2.0, 200, 2.5))
	if rep.Status != StatusAlerting {
		t.Fatalf("Status = %q, want alerting", rep.Status)
	}

	want := []struct {
		metric types.Metric
		sev    types.HealthState
		title  string
	}{
		{types.MetricTemperature, types.StateCritical, "Temperature CRITICAL"},
		{types.MetricVibration, types.StateWatch, "Vibration elevated"},
		{types.MetricThroughput, types.StateCritical, "Throughput CRITICAL (low)"},
		{types.MetricDefectRate, types.StateWatch, "Defects high"},
	}
	if len(rep.Insights) != len(want) {
		t.Fatalf("Insights len = %d, want %d: %+v", len(rep.Insights), len(want), rep.Insights)
	}
	for i, w := range want {
		got := rep.Insights[i]
		if got.Metric != w.metric || got.Severity != w.sev || got.Title != w.title {
			t.Errorf("insight[%d] = {%s %s %q}, want {%s %s %q}",
				i, got.Metric, got.Severity, got.Title, w.metric, w.sev, w.title)
		}
		if got.Action == "" {
			t.Errorf("insight[%d] has no recommended action", i)
		}
	}
}

func TestGenerate_CriticalSuppressesWatch(t *testing.T) {
	rep := Generate(threshold.Default, reading(800, 1.0, 300, 0.5))
	if len(rep.Insights) != 1 {
		t.Fatalf("Insights len = %d, want 1", len(rep.Insights))
	}
	if rep.Insights[0].Severity != types.StateCritical {
		t.Errorf("Severity = %q, want critical", rep.Insights[0].Severity)
	}
	if rep.Insights[0].Bound != 750 {
		t.Errorf("Bound = %v, want 750", rep.Insights[0].Bound)
	}
}

func TestGenerate_CountMatchesClassifier(t *testing.T) {
	samples := []*types.Reading{
		reading(700, 1.8, 260, 2.0),
		reading(699, 1.79, 261, 1.99),
		reading(750, 0, 0, 100),
		reading(0, 0, 1000, 0),
	}
	for _, r := range samples {
		var want int
		for _, m := range types.Metrics {
			v, _ := r.Value(m)
			s := threshold.Default.Classify(m, v)
			if s == types.StateWatch || s == types.StateCritical {
				want++
			}
		}
		if got := len(Generate(threshold.Default, r).Insights); got != want {
			t.Errorf("reading %+v: %d insights, want %d", *r, got, want)
		}
	}
}

func TestGenerate_DetailWording(t *testing.T) {
	tests := []struct {
		r    *types.Reading
		want string
	}{
		{reading(760, 1, 300, 0), "Now 760.00 °F (≥ 750)"},
		{reading(650, 1.9, 300, 0), "Now 1.90 mm/s (≥ 1.8)"},
		{reading(650, 1, 250, 0), "Now 250 units/hr (≤ 260)"},
		{reading(650, 1, 300, 3.25), "Now 3.25% (≥ 3)"},
	}
	for _, tc := range tests {
		rep := Generate(threshold.Default, tc.r)
		if len(rep.Insights) != 1 {
			t.Fatalf("Insights len = %d, want 1", len(rep.Insights))
		}
		if got := rep.Insights[0].Detail; got != tc.want {
			t.Errorf("Detail = %q, want %q", got, tc.want)
		}
	}
}
