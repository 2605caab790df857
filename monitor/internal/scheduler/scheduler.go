package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/config"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/cycle"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/export"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/store"
)

// idleRecheck is how often a disabled scheduler looks at the config again.
const idleRecheck = time.Second

// Runner executes one cycle. *cycle.Evaluator satisfies it.
type Runner interface {
	Run(ctx context.Context, src cycle.HistorySource, limit int) cycle.Snapshot
}

// SourceFactory builds a history source for a config snapshot.
type SourceFactory func(cfg *config.Config) cycle.HistorySource

// CycleObserver is told about every finished cycle. *metrics.Metrics
// satisfies it.
type CycleObserver interface {
	ObserveCycle(snap cycle.Snapshot, uptimePct float64, elapsed time.Duration)
}

// Scheduler ties the config, evaluator and store together.
type Scheduler struct {
	cfg     *config.Holder
	eval    *cycle.Evaluator
	runner  Runner
	sources SourceFactory
	store   *store.Store
	obs     CycleObserver

	trigger chan struct{}
}

// New returns a Scheduler. obs may be nil.
func New(cfg *config.Holder, eval *cycle.Evaluator, sources SourceFactory, st *store.Store, obs CycleObserver) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		eval:    eval,
		runner:  eval,
		sources: sources,
		store:   st,
		obs:     obs,
		trigger: make(chan struct{}, 1),
	}
}

// Trigger requests an immediate cycle. Requests made while one is already
// pending are coalesced.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run executes cycles until ctx is cancelled. The first cycle runs
// immediately when refresh is enabled.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("scheduler: started")
	defer slog.Info("scheduler: stopped")

	if s.cfg.Get().Refresh.Enabled {
		s.Tick(ctx)
	}

	for {
		cfg := s.cfg.Get()
		wait := cfg.Refresh.Interval
		if !cfg.Refresh.Enabled || wait <= 0 {
			wait = idleRecheck
		}
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.trigger:
			timer.Stop()
			s.Tick(ctx)
		case <-timer.C:
			if s.cfg.Get().Refresh.Enabled {
				s.Tick(ctx)
			}
		}
	}
}

// Tick runs exactly one cycle with the current config and publishes it.
func (s *Scheduler) Tick(ctx context.Context) cycle.Snapshot {
	cfg := s.cfg.Get()
	start := time.Now()

	snap := s.runner.Run(ctx, s.sources(cfg), cfg.History.Window)
	elapsed := time.Since(start)

	s.store.Put(snap)
	if s.obs != nil {
		s.obs.ObserveCycle(snap, s.store.UptimePct(), elapsed)
	}

	if path := cfg.Export.TextfilePath; path != "" {
		if err := export.WriteTextfile(path, snap, s.eval.Table); err != nil {
			slog.Error("scheduler: textfile export failed", "path", path, "err", err)
		}
	}

	slog.Debug("scheduler: cycle done",
		"elapsed", elapsed,
		"api_healthy", snap.APIHealthy,
		"status", snap.Insights.Status,
	)
	return snap
}
