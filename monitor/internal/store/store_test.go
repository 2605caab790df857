package store

import (
	"sync"
	"testing"
	"time"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/cycle"
)

func snap(healthy bool) cycle.Snapshot {
	return cycle.Snapshot{APIHealthy: healthy, Messages: []string{}}
}

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestLatest_Empty(t *testing.T) {
	st := New(time.Minute)
	if _, ok := st.Latest(); ok {
		t.Fatal("Latest on empty store: expected false, got true")
	}
	if _, ok := st.View(); ok {
		t.Fatal("View on empty store: expected false, got true")
	}
	if !st.Stale() {
		t.Error("empty store should be stale")
	}
}

func TestPut_Overwrites(t *testing.T) {
	st := New(time.Minute)
	st.Put(snap(false))
	st.Put(snap(true))

	e, ok := st.Latest()
	if !ok {
		t.Fatal("Latest: expected entry after two Puts")
	}
	if !e.Snapshot.APIHealthy {
		t.Error("APIHealthy: got false, want true from the second Put")
	}
	if e.Seq != 2 {
		t.Errorf("Seq: got %d, want 2", e.Seq)
	}
}

func TestView_Stale(t *testing.T) {
	base := time.Now()
	st := New(10 * time.Second)

	st.now = fixedClock(base)
	st.Put(snap(true))

	st.now = fixedClock(base.Add(5 * time.Second))
	if v, _ := st.View(); v.Stale {
		t.Error("Stale: got true within TTL")
	}

	st.now = fixedClock(base.Add(11 * time.Second))
	v, _ := st.View()
	if !v.Stale {
		t.Error("Stale: got false after TTL elapsed")
	}
	if !v.UpdatedAt.Equal(base) {
		t.Errorf("UpdatedAt: got %v, want %v", v.UpdatedAt, base)
	}
}

func TestStale_ZeroTTLNeverStale(t *testing.T) {
	base := time.Now()
	st := New(0)
	st.now = fixedClock(base)
	st.Put(snap(true))
	st.now = fixedClock(base.Add(24 * time.Hour))
	if st.Stale() {
		t.Error("Stale with ttl=0: got true, want false")
	}
}

func TestUptimePct(t *testing.T) {
	st := New(time.Minute)
	if got := st.UptimePct(); got != 100 {
		t.Errorf("UptimePct before any cycle: got %v, want 100", got)
	}

	st.Put(snap(true))
	st.Put(snap(false))
	st.Put(snap(true))
	st.Put(snap(false))
	if got := st.UptimePct(); got != 50 {
		t.Errorf("UptimePct: got %v, want 50", got)
	}
}

func TestUptimePct_Window(t *testing.T) {
	st := New(time.Minute)
	for i := 0; i < uptimeWindow; i++ {
		st.Put(snap(false))
	}
	for i := 0; i < uptimeWindow; i++ {
		st.Put(snap(true))
	}
	if got := st.UptimePct(); got != 100 {
		t.Errorf("UptimePct after window rolled over: got %v, want 100", got)
	}
}

func TestConcurrentMixedOps(t *testing.T) {
	st := New(time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			st.Put(snap(n%2 == 0))
		}(i)
		go func() {
			defer wg.Done()
			st.View()
		}()
	}
	wg.Wait()

	if e, _ := st.Latest(); e.Seq != 50 {
		t.Errorf("Seq after 50 puts: got %d, want 50", e.Seq)
	}
}
