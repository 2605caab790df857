package cycle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/insight"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/telemetry"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/threshold"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

// stubSource returns history (trimmed to limit) or err for every call.
type stubSource struct {
	history []types.Reading
	err     error
	limits  []int
}

func (s *stubSource) FetchHistory(_ context.Context, limit int) ([]types.Reading, error) {
	s.limits = append(s.limits, limit)
	if s.err != nil {
		return []types.Reading{}, s.err
	}
	h := s.history
	if len(h) > limit {
		h = h[len(h)-limit:]
	}
	return h, nil
}

func at(sec int, temp, vib, thr, def float64) types.Reading {
	return types.Reading{
		Timestamp:   time.Date(2026, 3, 1, 8, 0, sec, 0, time.UTC),
		Temperature: temp, Vibration: vib, Throughput: thr, DefectRate: def,
	}
}

func TestRun_BackendDown(t *testing.T) {
	src := &stubSource{err: &telemetry.TransportError{Op: "history", Err: errors.New("connection refused")}}
	snap := NewEvaluator(nil).Run(context.Background(), src, 150)

	if snap.APIHealthy {
		t.Error("APIHealthy = true, want false")
	}
	if snap.Current != nil {
		t.Errorf("Current = %+v, want nil", snap.Current)
	}
	if snap.History == nil || len(snap.History) != 0 {
		t.Errorf("History = %v, want empty non-nil", snap.History)
	}
	if len(snap.Insights.Insights) != 0 {
		t.Errorf("Insights = %+v, want none", snap.Insights.Insights)
	}
	if snap.Insights.Status != insight.StatusWaiting {
		t.Errorf("Status = %q, want waiting (not nominal)", snap.Insights.Status)
	}
	for _, m := range types.Metrics {
		if snap.States[m] != types.StateUnknown {
			t.Errorf("States[%s] = %q, want unknown", m, snap.States[m])
		}
	}
	if len(snap.Messages) != 2 {
		t.Errorf("Messages = %v, want one per failed fetch", snap.Messages)
	}
}

func TestRun_HappyPath(t *testing.T) {
	src := &stubSource{history: []types.Reading{
		at(0, 650, 1.0, 300, 0.5),
		at(2, 690, 1.2, 290, 0.6),
		at(4, 760, 1.9, 250, 0.7),
	}}
	snap := NewEvaluator(threshold.Default).Run(context.Background(), src, 150)

	if !snap.APIHealthy {
		t.Error("APIHealthy = false, want true")
	}
	if len(src.limits) != 2 || src.limits[0] != 1 || src.limits[1] != 150 {
		t.Errorf("fetch limits = %v, want [1 150]", src.limits)
	}
	if len(snap.History) != 3 {
		t.Fatalf("History len = %d, want 3", len(snap.History))
	}
	if snap.Current == nil || snap.Current.Temperature != 760 {
		t.Fatalf("Current = %+v, want last reading", snap.Current)
	}

	want := map[types.Metric]types.HealthState{
		types.MetricTemperature: types.StateCritical,
		types.MetricVibration:   types.StateWatch,
		types.MetricThroughput:  types.StateWatch,
		types.MetricDefectRate:  types.StateOK,
	}
	if !reflect.DeepEqual(snap.States, want) {
		t.Errorf("States = %v, want %v", snap.States, want)
	}
	if snap.Insights.Status != insight.StatusAlerting || len(snap.Insights.Insights) != 3 {
		t.Errorf("Insights = %+v", snap.Insights)
	}
	if len(snap.Messages) != 0 {
		t.Errorf("Messages = %v, want none", snap.Messages)
	}
}

func TestRun_AllNominal(t *testing.T) {
	src := &stubSource{history: []types.Reading{at(0, 650, 1.0, 300, 0.5)}}
	snap := NewEvaluator(nil).Run(context.Background(), src, 150)
	if snap.Insights.Status != insight.StatusNominal {
		t.Errorf("Status = %q, want nominal", snap.Insights.Status)
	}
}

func TestRun_Idempotent(t *testing.T) {
	src := &stubSource{history: []types.Reading{
		at(0, 700, 1.8, 260, 2.0),
		at(2, 705, 1.9, 255, 2.1),
	}}
	ev := NewEvaluator(nil)
	first := ev.Run(context.Background(), src, 450)
	second := ev.Run(context.Background(), src, 450)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("snapshots differ:\n%+v\n%+v", first, second)
	}
}

func TestRun_ProbeFailsHistoryOK(t *testing.T) {
	calls := 0
	src := sourceFunc(func(_ context.Context, limit int) ([]types.Reading, error) {
		calls++
		if calls == 1 {
			return []types.Reading{}, &telemetry.ResponseError{Op: "history", Status: 503}
		}
		return []types.Reading{at(0, 650, 1.0, 300, 0.5)}, nil
	})
	snap := NewEvaluator(nil).Run(context.Background(), src, 150)
	if snap.APIHealthy {
		t.Error("APIHealthy = true after failed probe")
	}
	if snap.Current == nil {
		t.Error("history fetch should still populate Current")
	}
	if len(snap.Messages) != 1 {
		t.Errorf("Messages = %v", snap.Messages)
	}
}

type sourceFunc func(ctx context.Context, limit int) ([]types.Reading, error)

func (f sourceFunc) FetchHistory(ctx context.Context, limit int) ([]types.Reading, error) {
	return f(ctx, limit)
}

// The cycle must finish within the client timeout when the backend hangs.
func TestRun_SlowBackendBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	}))
	defer srv.Close()

	c := telemetry.New(srv.URL, telemetry.WithTimeout(50*time.Millisecond))
	start := time.Now()
	snap := NewEvaluator(nil).Run(context.Background(), c, 150)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Run took %v", elapsed)
	}
	if snap.APIHealthy {
		t.Error("APIHealthy = true against a hanging backend")
	}
}
