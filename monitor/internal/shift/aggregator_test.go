package shift

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/defects"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/telemetry"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

type fakeSource struct {
	report types.ShiftReport
	csv    []byte
	err    error
	calls  int
}

func (f *fakeSource) FetchShiftReport(_ context.Context, date string) (types.ShiftReport, error) {
	f.calls++
	if f.err != nil {
		return types.ShiftReport{Date: date, Rows: []types.ShiftReportRow{}}, f.err
	}
	return f.report, nil
}

func (f *fakeSource) FetchShiftReportCSV(context.Context, string) ([]byte, error) {
	f.calls++
	return f.csv, f.err
}

func newAgg(src *fakeSource) *Aggregator {
	return NewAggregator(func() Source { return src })
}

func sampleRows() []types.ShiftReportRow {
	return []types.ShiftReportRow{
		{"shift": "Shift A (06-14)", "samples": 120.0, "avg_temperature": 612.4, "max_temperature": 701.0, "extra": "x"},
		{"shift": "Shift B (14-22)", "samples": 80.0, "avg_temperature": 640.1, "max_temperature": 720.5},
	}
}

func TestReport_Rows(t *testing.T) {
	src := &fakeSource{report: types.ShiftReport{Date: "2026-03-01", Rows: sampleRows()}}
	rep, err := newAgg(src).Report(context.Background(), "2026-03-01")
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if rep.Empty {
		t.Error("Empty = true, want false")
	}
	if len(rep.Rows) != 2 {
		t.Errorf("len(Rows) = %d, want 2", len(rep.Rows))
	}
	want := []string{"shift", "samples", "avg_temperature", "max_temperature", "extra"}
	if len(rep.Columns) != len(want) {
		t.Fatalf("Columns = %v, want %v", rep.Columns, want)
	}
	for i := range want {
		if rep.Columns[i] != want[i] {
			t.Errorf("Columns[%d] = %q, want %q", i, rep.Columns[i], want[i])
		}
	}
}

func TestReport_EmptyDay(t *testing.T) {
	src := &fakeSource{report: types.ShiftReport{Date: "2026-03-02", Rows: []types.ShiftReportRow{}}}
	rep, err := newAgg(src).Report(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("Report() error = %v, want nil for an empty day", err)
	}
	if !rep.Empty {
		t.Error("Empty = false, want true")
	}
}

func TestReport_BadDate(t *testing.T) {
	src := &fakeSource{}
	for _, d := range []string{"03/01/2026", "2026-13-01", "yesterday"} {
		_, err := newAgg(src).Report(context.Background(), d)
		var ve *defects.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("Report(%q) error = %v, want *ValidationError", d, err)
		}
	}
	if src.calls != 0 {
		t.Errorf("source called %d times for invalid dates", src.calls)
	}
}

func TestReport_UpstreamFailure(t *testing.T) {
	src := &fakeSource{err: &telemetry.TransportError{Op: "shift_report", Err: errors.New("refused")}}
	rep, err := newAgg(src).Report(context.Background(), "")
	if telemetry.Kind(err) != "transport" {
		t.Fatalf("Kind(err) = %q, want transport", telemetry.Kind(err))
	}
	if rep.Empty {
		t.Error("a failed fetch must not be reported as an empty day")
	}
	if rep.Rows == nil {
		t.Error("Rows is nil")
	}
}

func TestCSV_Passthrough(t *testing.T) {
	src := &fakeSource{csv: []byte("shift,samples\nShift A (06-14),120")}
	got, err := newAgg(src).CSV(context.Background(), "2026-03-01")
	if err != nil {
		t.Fatalf("CSV() error = %v", err)
	}
	if !bytes.Equal(got, src.csv) {
		t.Errorf("CSV() = %q", got)
	}
}

func TestColumns_Empty(t *testing.T) {
	if cols := Columns(nil); len(cols) != 0 {
		t.Errorf("Columns(nil) = %v", cols)
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"Shift C (22-06)", "Shift C (22-06)"},
		{120.0, "120"},
		{612.45, "612.45"},
		{true, "true"},
	}
	for _, tc := range tests {
		if got := formatCell(tc.in); got != tc.want {
			t.Errorf("formatCell(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildXLSX(t *testing.T) {
	rows := sampleRows()
	rep := Report{Date: "2026-03-01", Rows: rows, Columns: Columns(rows)}

	data, err := BuildXLSX(rep)
	if err != nil {
		t.Fatalf("BuildXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	header, _ := f.GetCellValue(sheetName, "A1")
	if header != "shift" {
		t.Errorf("A1 = %q, want shift", header)
	}
	first, _ := f.GetCellValue(sheetName, "A2")
	if first != "Shift A (06-14)" {
		t.Errorf("A2 = %q", first)
	}
	samples, _ := f.GetCellValue(sheetName, "B3")
	if samples != "80" {
		t.Errorf("B3 = %q, want 80", samples)
	}
}

func TestBuildPDF(t *testing.T) {
	rows := sampleRows()
	for _, rep := range []Report{
		{Date: "2026-03-01", Rows: rows, Columns: Columns(rows)},
		{Date: "2026-03-02", Rows: []types.ShiftReportRow{}, Empty: true},
	} {
		data, err := BuildPDF(rep)
		if err != nil {
			t.Fatalf("BuildPDF(%s) error = %v", rep.Date, err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF-")) {
			t.Errorf("BuildPDF(%s) output is not a PDF", rep.Date)
		}
	}
}
