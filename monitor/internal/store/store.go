package store

import (
	"sync"
	"time"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/cycle"
)

// uptimeWindow is the number of recent cycle outcomes tracked for uptime %.
const uptimeWindow = 20

// Entry is a snapshot together with the time it was stored.
type Entry struct {
	Snapshot  cycle.Snapshot
	UpdatedAt time.Time
	// Seq increments on every Put, starting at 1.
	Seq uint64
}

// View is the read model served to the rendering layer.
type View struct {
	cycle.Snapshot
	UpdatedAt time.Time `json:"updated_at"`
	Stale     bool      `json:"stale"`
	UptimePct float64   `json:"uptime_pct"`
	Seq       uint64    `json:"seq"`
}

// Store is a thread-safe holder for the most recent snapshot. There is a
// single writer (the scheduler) and any number of readers.
type Store struct {
	mu      sync.RWMutex
	latest  *Entry
	history []bool // API health per cycle, newest last
	ttl     time.Duration
	now     func() time.Time // injectable for deterministic tests
}

// New creates a Store. A snapshot older than ttl is reported stale;
// ttl <= 0 disables staleness.
func New(ttl time.Duration) *Store {
	return &Store{
		ttl: ttl,
		now: time.Now,
	}
}

// Put replaces the latest snapshot and records its API health outcome.
// Callers must not modify snap's slices or maps after calling Put.
func (s *Store) Put(snap cycle.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var seq uint64 = 1
	if s.latest != nil {
		seq = s.latest.Seq + 1
	}
	s.latest = &Entry{Snapshot: snap, UpdatedAt: s.now(), Seq: seq}

	if len(s.history) >= uptimeWindow {
		s.history = s.history[1:]
	}
	s.history = append(s.history, snap.APIHealthy)
}

// Latest returns the most recent entry and whether one exists.
func (s *Store) Latest() (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

// View returns the latest snapshot with staleness and uptime applied.
// The boolean is false before the first Put.
func (s *Store) View() (View, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return View{}, false
	}
	return View{
		Snapshot:  s.latest.Snapshot,
		UpdatedAt: s.latest.UpdatedAt,
		Stale:     s.staleLocked(),
		UptimePct: s.uptimeLocked(),
		Seq:       s.latest.Seq,
	}, true
}

// Stale reports whether the latest snapshot is older than the TTL.
// An empty store is stale.
func (s *Store) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.staleLocked()
}

// UptimePct returns the share of the last cycles in which the API was
// healthy, as 0–100. It is 100 before the first cycle.
func (s *Store) UptimePct() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uptimeLocked()
}

func (s *Store) staleLocked() bool {
	if s.latest == nil {
		return true
	}
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(s.latest.UpdatedAt) > s.ttl
}

func (s *Store) uptimeLocked() float64 {
	if len(s.history) == 0 {
		return 100
	}
	var ok int
	for _, up := range s.history {
		if up {
			ok++
		}
	}
	return float64(ok) / float64(len(s.history)) * 100
}
