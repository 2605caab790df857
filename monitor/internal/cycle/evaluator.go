package cycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/insight"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/telemetry"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/threshold"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

// probeLimit is the number of points fetched to decide API health.
const probeLimit = 1

// HistorySource supplies readings. *telemetry.Client satisfies it.
type HistorySource interface {
	FetchHistory(ctx context.Context, limit int) ([]types.Reading, error)
}

// Snapshot is the consolidated result of one cycle.
type Snapshot struct {
	History    []types.Reading                    `json:"history"`
	Current    *types.Reading                     `json:"current"`
	States     map[types.Metric]types.HealthState `json:"states"`
	Insights   insight.Report                     `json:"insights"`
	APIHealthy bool                               `json:"api_healthy"`

	// Messages are operator-facing descriptions of failed fetches.
	Messages []string `json:"messages"`
}

// Evaluator runs cycles against a fixed threshold table.
type Evaluator struct {
	Table threshold.Table
}

// NewEvaluator returns an Evaluator using table, or threshold.Default when
// table is nil.
func NewEvaluator(table threshold.Table) *Evaluator {
	if table == nil {
		table = threshold.Default
	}
	return &Evaluator{Table: table}
}

// Run performs one cycle against src with a history window of limit points.
func (e *Evaluator) Run(ctx context.Context, src HistorySource, limit int) Snapshot {
	snap := Snapshot{
		History:  []types.Reading{},
		Messages: []string{},
	}

	// Health probe; the result only matters as success/failure.
	if _, err := src.FetchHistory(ctx, probeLimit); err != nil {
		snap.Messages = append(snap.Messages, message("API probe", err))
	} else {
		snap.APIHealthy = true
	}

	// History window. Independent of the probe outcome.
	hist, err := src.FetchHistory(ctx, limit)
	if err != nil {
		snap.Messages = append(snap.Messages, message("history fetch", err))
	} else if hist != nil {
		snap.History = hist
	}

	snap.Current = types.Latest(snap.History)
	snap.States = e.Table.ClassifyReading(snap.Current)
	snap.Insights = insight.Generate(e.Table, snap.Current)

	slog.Debug("cycle: complete",
		"api_healthy", snap.APIHealthy,
		"points", len(snap.History),
		"status", snap.Insights.Status,
		"insights", len(snap.Insights.Insights),
	)
	return snap
}

func message(what string, err error) string {
	switch telemetry.Kind(err) {
	case "transport":
		return fmt.Sprintf("%s failed: Telemetry API unreachable (%v)", what, err)
	case "response":
		return fmt.Sprintf("%s failed: Telemetry API returned an error (%v)", what, err)
	case "parse":
		return fmt.Sprintf("%s failed: unexpected response (%v)", what, err)
	default:
		return fmt.Sprintf("%s failed: %v", what, err)
	}
}
