package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/api"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/config"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/cycle"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/defects"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/metrics"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/scheduler"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/shift"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/store"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/telemetry"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/threshold"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to config file; empty uses defaults and PCS_API_BASE")
	uiDir := flag.String("ui-dir", "", "serve the dashboard static files from this directory; leave empty to disable")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	level := new(slog.LevelVar)
	level.Set(cfg.Log.SlogLevel())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("pcs-monitor starting",
		"config", *configPath,
		"api_base", cfg.API.BaseURL,
		"http_port", cfg.Server.HTTPPort,
		"refresh_enabled", cfg.Refresh.Enabled,
		"refresh_interval", cfg.Refresh.Interval,
		"history_window", cfg.History.Window,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	holder := config.NewHolder(cfg)
	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, holder, func(next *config.Config, _ []config.Change) {
				level.Set(next.Log.SlogLevel())
			})
			if err != nil {
				slog.Error("config watch stopped", "err", err)
			}
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// One transport for every client; a fresh Client per call picks up the
	// current base URL and timeout.
	hc := telemetry.NewHTTPClient()
	clientFor := func(c *config.Config) *telemetry.Client {
		return telemetry.New(c.API.BaseURL,
			telemetry.WithTimeout(c.API.RequestTimeout),
			telemetry.WithHTTPClient(hc),
			telemetry.WithObserver(m),
		)
	}

	table := threshold.Default
	st := store.New(cfg.Server.SnapshotTTL)

	sched := scheduler.New(holder, cycle.NewEvaluator(table),
		func(c *config.Config) cycle.HistorySource { return clientFor(c) },
		st, m)
	go sched.Run(ctx)

	hub := ws.New(st, table, cfg.Server.BroadcastInterval)
	go hub.Run(ctx)

	handler := api.New(api.Deps{
		Store:   st,
		Config:  holder,
		Table:   table,
		Defects: defects.NewManager(func() defects.Backend { return clientFor(holder.Get()) }),
		Shift:   shift.NewAggregator(func() shift.Source { return clientFor(holder.Get()) }),
		Refresh: sched.Trigger,
		Writes:  m,
	})

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", handler)
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	if *uiDir != "" {
		fs := http.FileServer(http.Dir(*uiDir))
		httpMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			path := *uiDir + r.URL.Path
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, *uiDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
		slog.Info("serving UI static files", "dir", *uiDir)
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           httpMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("pcs-monitor shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}
