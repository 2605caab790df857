package shift

import (
	"context"
	"time"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/defects"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

// DateLayout is the accepted report date format.
const DateLayout = "2006-01-02"

// Source is the part of the Telemetry API the aggregator reads.
// *telemetry.Client satisfies it.
type Source interface {
	FetchShiftReport(ctx context.Context, date string) (types.ShiftReport, error)
	FetchShiftReportCSV(ctx context.Context, date string) ([]byte, error)
}

// Report is a shift rollup ready for display.
type Report struct {
	Date    string                 `json:"date"`
	Rows    []types.ShiftReportRow `json:"rows"`
	Columns []string               `json:"columns"`
	// Empty is true when the API returned no rows for the day.
	Empty bool `json:"empty"`
}

// Aggregator serves shift reports from a Source.
type Aggregator struct {
	source func() Source
}

// NewAggregator returns an Aggregator. source is resolved per call.
func NewAggregator(source func() Source) *Aggregator {
	return &Aggregator{source: source}
}

// Report fetches the rollup for date. An empty date means "today" as the
// API sees it. A day with no data returns Empty and a nil error.
func (a *Aggregator) Report(ctx context.Context, date string) (Report, error) {
	if err := ValidateDate(date); err != nil {
		return Report{Date: date, Rows: []types.ShiftReportRow{}, Columns: []string{}}, err
	}

	rep, err := a.source().FetchShiftReport(ctx, date)
	if err != nil {
		return Report{Date: date, Rows: []types.ShiftReportRow{}, Columns: []string{}}, err
	}

	return Report{
		Date:    rep.Date,
		Rows:    rep.Rows,
		Columns: Columns(rep.Rows),
		Empty:   len(rep.Rows) == 0,
	}, nil
}

// CSV returns the API-rendered CSV for date.
func (a *Aggregator) CSV(ctx context.Context, date string) ([]byte, error) {
	if err := ValidateDate(date); err != nil {
		return []byte{}, err
	}
	return a.source().FetchShiftReportCSV(ctx, date)
}

// ValidateDate accepts "" or a YYYY-MM-DD calendar date.
func ValidateDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return &defects.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	return nil
}
