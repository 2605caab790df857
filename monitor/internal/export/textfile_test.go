package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/cycle"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/insight"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/threshold"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

func testSnapshot() cycle.Snapshot {
	r := &types.Reading{
		Timestamp:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Temperature: 760, Vibration: 1.0, Throughput: 250, DefectRate: 0.5,
	}
	return cycle.Snapshot{
		History:    []types.Reading{*r},
		Current:    r,
		States:     threshold.Default.ClassifyReading(r),
		Insights:   insight.Generate(threshold.Default, r),
		APIHealthy: true,
		Messages:   []string{},
	}
}

func TestEncode(t *testing.T) {
	data, err := Encode(Families(testSnapshot(), threshold.Default))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"# TYPE pcs_line_value gauge",
		`pcs_line_value{metric="temperature"} 760`,
		`pcs_line_state_rank{metric="temperature"} 3`,
		`pcs_line_state_rank{metric="throughput"} 2`,
		`pcs_line_warn_bound{metric="throughput",direction="low_is_bad"} 260`,
		`pcs_line_crit_bound{metric="temperature",direction="high_is_bad"} 750`,
		"pcs_line_api_healthy 1",
		"pcs_line_last_reading_timestamp_seconds 1.772352e+09",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestEncode_NoReading(t *testing.T) {
	snap := cycle.Snapshot{
		History:  []types.Reading{},
		States:   threshold.Default.ClassifyReading(nil),
		Insights: insight.Generate(threshold.Default, nil),
	}
	data, err := Encode(Families(snap, threshold.Default))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out := string(data)
	if strings.Contains(out, "pcs_line_value") {
		t.Error("value family written without a reading")
	}
	if strings.Contains(out, "last_reading_timestamp") {
		t.Error("timestamp written without a reading")
	}
	if !strings.Contains(out, `pcs_line_state_rank{metric="defects"} 0`) {
		t.Errorf("unknown state not exported:\n%s", out)
	}
	if !strings.Contains(out, "pcs_line_api_healthy 0") {
		t.Errorf("api_healthy not 0:\n%s", out)
	}
}

func TestWriteTextfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pcs.prom")

	if err := WriteTextfile(path, testSnapshot(), threshold.Default); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "pcs_line_api_healthy 1") {
		t.Errorf("unexpected content:\n%s", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the textfile", len(entries))
	}
}

func TestWriteTextfile_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "pcs.prom")
	if err := WriteTextfile(path, testSnapshot(), threshold.Default); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
