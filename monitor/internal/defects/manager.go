package defects

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/telemetry"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

// Backend is the subset of the Telemetry API the manager needs.
// *telemetry.Client satisfies it.
type Backend interface {
	FetchDefects(ctx context.Context, q telemetry.DefectQuery) ([]types.DefectRecord, error)
	SubmitDefect(ctx context.Context, s telemetry.DefectSubmission) (telemetry.DefectReceipt, error)
	SetDefectFlag(ctx context.Context, id int64, flagged bool) (int, error)
}

// Submission is an operator-entered defect before validation.
// DefectType may be a display label or a compact form ("edge_crack").
type Submission struct {
	BatchID    string  `json:"batch_id"`
	Machine    string  `json:"machine"`
	DefectType string  `json:"defect_type"`
	Rate       float64 `json:"rate"`
	Flagged    bool    `json:"flagged"`
}

// SubmitResult is returned by a successful Submit. Refresh tells the
// rendering layer to reload the defect listing.
type SubmitResult struct {
	Refresh bool                    `json:"refresh"`
	Receipt telemetry.DefectReceipt `json:"receipt"`
}

// Filter selects which records List returns. A zero Limit means the API
// default, so Filter{} and Filter{Limit: telemetry.DefaultDefectLimit}
// share a cache entry.
type Filter struct {
	FlaggedOnly bool
	Limit       int
}

func (f Filter) normalized() Filter {
	if f.Limit <= 0 {
		f.Limit = telemetry.DefaultDefectLimit
	}
	return f
}

type cacheEntry struct {
	filter  Filter
	records []types.DefectRecord
}

// Manager owns defect listing, submission and flagging.
type Manager struct {
	backend func() Backend

	mu    sync.Mutex
	cache *cacheEntry
}

// NewManager returns a Manager. backend is called on every operation so a
// configuration reload (new base URL) takes effect without rebuilding it.
func NewManager(backend func() Backend) *Manager {
	return &Manager{backend: backend}
}

// List fetches defect records. On success the result replaces the cache.
// On failure the cache is left untouched and an empty slice is returned.
func (m *Manager) List(ctx context.Context, f Filter) ([]types.DefectRecord, error) {
	f = f.normalized()
	q := telemetry.DefectQuery{Limit: f.Limit}
	if f.FlaggedOnly {
		flagged := true
		q.Flagged = &flagged
	}

	recs, err := m.backend().FetchDefects(ctx, q)
	if err != nil {
		return []types.DefectRecord{}, err
	}

	m.mu.Lock()
	m.cache = &cacheEntry{filter: f, records: recs}
	m.mu.Unlock()
	return recs, nil
}

// Cached returns the last listing fetched with filter f, if still valid.
// The rendering layer falls back to it when List fails.
func (m *Manager) Cached(f Filter) ([]types.DefectRecord, bool) {
	f = f.normalized()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cache == nil || m.cache.filter != f {
		return nil, false
	}
	return m.cache.records, true
}

// Submit validates s and, if valid, sends it to the Telemetry API.
func (m *Manager) Submit(ctx context.Context, s Submission) (SubmitResult, error) {
	sub, err := Validate(s)
	if err != nil {
		return SubmitResult{}, err
	}

	rc, err := m.backend().SubmitDefect(ctx, sub)
	if err != nil {
		return SubmitResult{}, err
	}

	m.invalidate()
	slog.Info("defects: submitted", "id", rc.ID, "batch_id", sub.BatchID, "type", sub.DefectType)
	return SubmitResult{Refresh: true, Receipt: rc}, nil
}

// SetFlag flags or unflags record id. It returns false when the API
// reported no matching record.
func (m *Manager) SetFlag(ctx context.Context, id int64, flagged bool) (bool, error) {
	if id <= 0 {
		return false, &ValidationError{Field: "id", Reason: "must be positive"}
	}
	n, err := m.backend().SetDefectFlag(ctx, id, flagged)
	if err != nil {
		return false, err
	}
	if n > 0 {
		m.invalidate()
	}
	return n > 0, nil
}

func (m *Manager) invalidate() {
	m.mu.Lock()
	m.cache = nil
	m.mu.Unlock()
}

// Validate normalizes s into a wire submission or returns the first
// rejected field as a *ValidationError.
func Validate(s Submission) (telemetry.DefectSubmission, error) {
	batch := strings.TrimSpace(s.BatchID)
	if batch == "" {
		return telemetry.DefectSubmission{}, &ValidationError{Field: "batch_id", Reason: "required"}
	}
	machine := strings.TrimSpace(s.Machine)
	if machine == "" {
		return telemetry.DefectSubmission{}, &ValidationError{Field: "machine", Reason: "required"}
	}
	dt, err := types.ParseDefectType(s.DefectType)
	if err != nil {
		return telemetry.DefectSubmission{}, &ValidationError{Field: "defect_type", Reason: err.Error()}
	}
	if math.IsNaN(s.Rate) || s.Rate < 0 || s.Rate > 100 {
		return telemetry.DefectSubmission{}, &ValidationError{Field: "rate", Reason: "must be between 0 and 100"}
	}
	return telemetry.DefectSubmission{
		BatchID:    batch,
		Machine:    machine,
		DefectType: dt,
		Rate:       s.Rate,
		Flagged:    s.Flagged,
	}, nil
}
