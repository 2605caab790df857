package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/cycle"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/telemetry"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

const namespace = "pcs"

// states lists every health state exported as a state-set series.
var states = []types.HealthState{
	types.StateOK,
	types.StateWatch,
	types.StateCritical,
	types.StateUnknown,
}

// Metrics holds the registered collectors.
type Metrics struct {
	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec

	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	apiHealthy    prometheus.Gauge
	uptime        prometheus.Gauge
	historyPoints prometheus.Gauge

	lineValue *prometheus.GaugeVec
	lineState *prometheus.GaugeVec
	insights  *prometheus.GaugeVec

	defectWrites *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Telemetry API requests by operation and result.",
		}, []string{"op", "result"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Telemetry API request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Evaluation cycles by insight status.",
		}, []string{"status"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one evaluation cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		apiHealthy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_healthy",
			Help:      "1 if the last cycle's API probe succeeded.",
		}),
		uptime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_uptime_ratio",
			Help:      "Share of recent cycles with a healthy API probe (0-1).",
		}),
		historyPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_points",
			Help:      "Readings fetched in the last cycle.",
		}),
		lineValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "line_metric_value",
			Help:      "Latest reading per line metric.",
		}, []string{"metric"}),
		lineState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "line_metric_state",
			Help:      "1 for the current health state of each line metric, 0 otherwise.",
		}, []string{"metric", "state"}),
		insights: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "insights",
			Help:      "Active insights by severity.",
		}, []string{"severity"}),
		defectWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "defect_writes_total",
			Help:      "Defect submissions and flag changes by result.",
		}, []string{"kind", "result"}),
	}

	reg.MustRegister(
		m.apiRequests, m.apiLatency,
		m.cycles, m.cycleDuration, m.apiHealthy, m.uptime, m.historyPoints,
		m.lineValue, m.lineState, m.insights,
		m.defectWrites,
	)
	return m
}

// ObserveRequest implements telemetry.Observer.
func (m *Metrics) ObserveRequest(op string, err error, elapsed time.Duration) {
	m.apiRequests.WithLabelValues(op, telemetry.Kind(err)).Inc()
	m.apiLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveCycle records one finished cycle. uptimePct is 0–100.
func (m *Metrics) ObserveCycle(snap cycle.Snapshot, uptimePct float64, elapsed time.Duration) {
	m.cycles.WithLabelValues(string(snap.Insights.Status)).Inc()
	m.cycleDuration.Observe(elapsed.Seconds())
	m.uptime.Set(uptimePct / 100)
	m.historyPoints.Set(float64(len(snap.History)))
	if snap.APIHealthy {
		m.apiHealthy.Set(1)
	} else {
		m.apiHealthy.Set(0)
	}

	for _, metric := range types.Metrics {
		v, ok := 0.0, false
		if snap.Current != nil {
			v, ok = snap.Current.Value(metric)
		}
		if ok {
			m.lineValue.WithLabelValues(string(metric)).Set(v)
		} else {
			m.lineValue.DeleteLabelValues(string(metric))
		}

		cur := snap.States[metric]
		if cur == "" {
			cur = types.StateUnknown
		}
		for _, s := range states {
			on := 0.0
			if s == cur {
				on = 1
			}
			m.lineState.WithLabelValues(string(metric), string(s)).Set(on)
		}
	}

	var watch, crit float64
	for _, in := range snap.Insights.Insights {
		switch in.Severity {
		case types.StateCritical:
			crit++
		case types.StateWatch:
			watch++
		}
	}
	m.insights.WithLabelValues(string(types.StateWatch)).Set(watch)
	m.insights.WithLabelValues(string(types.StateCritical)).Set(crit)
}

// ObserveDefectWrite counts a submit or flag call. kind is "submit" or "flag".
func (m *Metrics) ObserveDefectWrite(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.defectWrites.WithLabelValues(kind, result).Inc()
}
