package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/config"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/cycle"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/defects"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/insight"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/shift"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/store"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/threshold"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// WriteObserver counts defect writes. *metrics.Metrics satisfies it.
type WriteObserver interface {
	ObserveDefectWrite(kind string, err error)
}

// Deps are the collaborators the handler reads from.
type Deps struct {
	Store   *store.Store
	Config  *config.Holder
	Table   threshold.Table
	Defects *defects.Manager
	Shift   *shift.Aggregator
	// Refresh requests an immediate cycle. Optional.
	Refresh func()
	// Writes is the optional observer for submit and flag calls.
	Writes WriteObserver
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	deps Deps
	mux  *http.ServeMux

	limMu   sync.Mutex
	limits  config.LimitsConfig // limits the limiter was last tuned to
	limiter *rate.Limiter
}

// New creates a Handler and registers all routes. Defect writes share one
// token bucket; a config reload that changes limits retunes it on the next
// write.
func New(d Deps) http.Handler {
	if d.Table == nil {
		d.Table = threshold.Default
	}
	lim := d.Config.Get().Limits
	h := &Handler{
		deps:    d,
		mux:     http.NewServeMux(),
		limits:  lim,
		limiter: rate.NewLimiter(rate.Limit(lim.SubmitRate), lim.SubmitBurst),
	}

	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)
	h.mux.HandleFunc("/api/v1/insights", h.insights)
	h.mux.HandleFunc("/api/v1/thresholds", h.thresholds)
	h.mux.HandleFunc("/api/v1/settings", h.settings)
	h.mux.HandleFunc("/api/v1/refresh", h.refresh)
	h.mux.HandleFunc("/api/v1/defects", h.defectsRoot)
	h.mux.HandleFunc("/api/v1/defects/", h.defectFlag) // subtree: {id}/flag
	h.mux.HandleFunc("/api/v1/shift", h.shiftReport)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", id)
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// snapshot returns GET /api/v1/snapshot.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.view())
}

// insights returns GET /api/v1/insights.
func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	v := h.view()
	jsonResp(w, http.StatusOK, InsightsResponse{
		Report:     v.Insights,
		APIHealthy: v.APIHealthy,
		Stale:      v.Stale,
		Messages:   v.Messages,
	})
}

// thresholds returns GET /api/v1/thresholds.
func (h *Handler) thresholds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	out := make([]ThresholdResponse, 0, len(types.Metrics))
	for _, m := range types.Metrics {
		spec, ok := h.deps.Table.Bands(m)
		if !ok {
			continue
		}
		out = append(out, ThresholdResponse{
			Metric:    m,
			Label:     m.Label(),
			Unit:      m.Unit(),
			Direction: spec.Direction,
			Warn:      spec.Warn,
			Crit:      spec.Crit,
		})
	}
	jsonResp(w, http.StatusOK, out)
}

// settings returns GET /api/v1/settings.
func (h *Handler) settings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	cfg := h.deps.Config.Get()
	jsonResp(w, http.StatusOK, SettingsResponse{
		BaseURL:         cfg.API.BaseURL,
		RequestTimeout:  cfg.API.RequestTimeout.String(),
		RefreshEnabled:  cfg.Refresh.Enabled,
		RefreshInterval: cfg.Refresh.Interval.String(),
		HistoryWindow:   cfg.History.Window,
		HistoryWindows:  config.HistoryWindows,
	})
}

// refresh handles POST /api/v1/refresh.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.deps.Refresh != nil {
		h.deps.Refresh()
	}
	jsonResp(w, http.StatusAccepted, map[string]bool{"accepted": true})
}

// defectsRoot dispatches GET and POST /api/v1/defects.
func (h *Handler) defectsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listDefects(w, r)
	case http.MethodPost:
		h.submitDefect(w, r)
	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) listDefects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := defects.Filter{FlaggedOnly: q.Get("flagged") == "1" || q.Get("flagged") == "true"}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			jsonErr(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		f.Limit = n
	}

	recs, err := h.deps.Defects.List(r.Context(), f)
	if err != nil {
		cached, ok := h.deps.Defects.Cached(f)
		if !ok {
			h.fail(w, err)
			return
		}
		slog.Warn("api: serving cached defect log", "err", err)
		jsonResp(w, http.StatusOK, DefectsResponse{
			Records: cached,
			Count:   len(cached),
			Stale:   true,
			Message: err.Error(),
		})
		return
	}
	jsonResp(w, http.StatusOK, DefectsResponse{Records: recs, Count: len(recs)})
}

func (h *Handler) submitDefect(w http.ResponseWriter, r *http.Request) {
	var sub defects.Submission
	if err := decodeBody(w, r, &sub); err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := defects.Validate(sub); err != nil {
		h.fail(w, err)
		return
	}
	if !h.allow() {
		jsonErr(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	res, err := h.deps.Defects.Submit(r.Context(), sub)
	h.observeWrite("submit", err)
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonResp(w, http.StatusCreated, res)
}

// defectFlag handles PATCH /api/v1/defects/{id}/flag.
func (h *Handler) defectFlag(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/defects/")
	idStr, ok := strings.CutSuffix(rest, "/flag")
	if !ok || idStr == "" || strings.Contains(idStr, "/") {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPatch {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "id must be an integer")
		return
	}
	if id <= 0 {
		h.fail(w, &defects.ValidationError{Field: "id", Reason: "must be positive"})
		return
	}

	var body flagRequest
	if err := decodeBody(w, r, &body); err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Flagged == nil {
		jsonErrField(w, http.StatusBadRequest, "flagged is required", "flagged")
		return
	}
	if !h.allow() {
		jsonErr(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	found, err := h.deps.Defects.SetFlag(r.Context(), id, *body.Flagged)
	h.observeWrite("flag", err)
	if err != nil {
		h.fail(w, err)
		return
	}
	if !found {
		jsonErr(w, http.StatusNotFound, "defect not found")
		return
	}
	jsonResp(w, http.StatusOK, FlagResponse{ID: id, Flagged: *body.Flagged})
}

// shiftReport handles GET /api/v1/shift.
func (h *Handler) shiftReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	date := r.URL.Query().Get("date")
	format := r.URL.Query().Get("format")

	switch format {
	case "", "json":
		rep, err := h.deps.Shift.Report(r.Context(), date)
		if err != nil {
			h.fail(w, err)
			return
		}
		jsonResp(w, http.StatusOK, rep)

	case "csv":
		data, err := h.deps.Shift.CSV(r.Context(), date)
		if err != nil {
			h.fail(w, err)
			return
		}
		attachment(w, "text/csv", fileName(date, "csv"), data)

	case "xlsx", "pdf":
		rep, err := h.deps.Shift.Report(r.Context(), date)
		if err != nil {
			h.fail(w, err)
			return
		}
		var data []byte
		var ctype string
		if format == "xlsx" {
			data, err = shift.BuildXLSX(rep)
			ctype = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		} else {
			data, err = shift.BuildPDF(rep)
			ctype = "application/pdf"
		}
		if err != nil {
			jsonErr(w, http.StatusInternalServerError, "render report: "+err.Error())
			return
		}
		attachment(w, ctype, fileName(rep.Date, format), data)

	default:
		jsonErrField(w, http.StatusBadRequest, "format must be json, csv, xlsx or pdf", "format")
	}
}

// --- helpers ----------------------------------------------------------------

// view returns the current store view, or a waiting view before the first
// cycle has been stored.
func (h *Handler) view() store.View {
	return BuildView(h.deps.Store, h.deps.Table)
}

// BuildView returns st's latest view. Before the first cycle it returns a
// stale view whose insights report the waiting status. Shared with the
// WebSocket hub so both surfaces serve the same schema.
func BuildView(st *store.Store, table threshold.Table) store.View {
	if v, ok := st.View(); ok {
		return v
	}
	return store.View{
		Snapshot: cycle.Snapshot{
			History:  []types.Reading{},
			States:   table.ClassifyReading(nil),
			Insights: insight.Generate(table, nil),
			Messages: []string{},
		},
		Stale:     true,
		UptimePct: st.UptimePct(),
	}
}

// allow takes one write token, first retuning the limiter if the limits in
// the current config differ from the ones it was built with.
func (h *Handler) allow() bool {
	cur := h.deps.Config.Get().Limits
	h.limMu.Lock()
	if cur != h.limits {
		now := time.Now()
		h.limiter.SetLimitAt(now, rate.Limit(cur.SubmitRate))
		h.limiter.SetBurstAt(now, cur.SubmitBurst)
		h.limits = cur
		slog.Info("api: write limits changed", "submit_rate", cur.SubmitRate, "submit_burst", cur.SubmitBurst)
	}
	h.limMu.Unlock()
	return h.limiter.Allow()
}

func (h *Handler) observeWrite(kind string, err error) {
	if h.deps.Writes == nil {
		return
	}
	var ve *defects.ValidationError
	if errors.As(err, &ve) {
		return
	}
	h.deps.Writes.ObserveDefectWrite(kind, err)
}

// fail maps an error from the defect or shift layer onto a status code.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	var ve *defects.ValidationError
	switch {
	case errors.As(err, &ve):
		jsonErrField(w, http.StatusBadRequest, ve.Error(), ve.Field)
	case errors.Is(err, context.Canceled):
		jsonErr(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		jsonErr(w, http.StatusBadGateway, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func fileName(date, ext string) string {
	if date == "" {
		return "shift." + ext
	}
	return "shift_" + date + "." + ext
}

func attachment(w http.ResponseWriter, ctype, name string, data []byte) {
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func jsonErrField(w http.ResponseWriter, code int, msg, field string) {
	jsonResp(w, code, errorResponse{Error: msg, Field: field})
}
