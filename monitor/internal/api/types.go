package api

import (
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/insight"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/threshold"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

// InsightsResponse is the payload for GET /api/v1/insights.
type InsightsResponse struct {
	insight.Report
	APIHealthy bool     `json:"api_healthy"`
	Stale      bool     `json:"stale"`
	Messages   []string `json:"messages"`
}

// ThresholdResponse is one row of GET /api/v1/thresholds.
type ThresholdResponse struct {
	Metric    types.Metric        `json:"metric"`
	Label     string              `json:"label"`
	Unit      string              `json:"unit"`
	Direction threshold.Direction `json:"direction"`
	Warn      float64             `json:"warn"`
	Crit      float64             `json:"crit"`
}

// SettingsResponse is the payload for GET /api/v1/settings.
type SettingsResponse struct {
	BaseURL         string `json:"base_url"`
	RequestTimeout  string `json:"request_timeout"`
	RefreshEnabled  bool   `json:"refresh_enabled"`
	RefreshInterval string `json:"refresh_interval"`
	HistoryWindow   int    `json:"history_window"`
	HistoryWindows  []int  `json:"history_windows"`
}

// DefectsResponse is the payload for GET /api/v1/defects. Stale is set when
// the Telemetry API failed and Records is the last successful listing;
// Message then carries the failure.
type DefectsResponse struct {
	Records []types.DefectRecord `json:"records"`
	Count   int                  `json:"count"`
	Stale   bool                 `json:"stale"`
	Message string               `json:"message,omitempty"`
}

// flagRequest is the body of PATCH /api/v1/defects/{id}/flag.
type flagRequest struct {
	Flagged *bool `json:"flagged"`
}

// FlagResponse is the payload for a successful flag change.
type FlagResponse struct {
	ID      int64 `json:"id"`
	Flagged bool  `json:"flagged"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
