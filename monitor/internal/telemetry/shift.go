package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

const (
	opShiftReport    = "shift_report"
	opShiftReportCSV = "shift_report_csv"
)

// FetchShiftReport returns the shift rollup for date (YYYY-MM-DD). An empty
// date lets the API pick the current day. Rows is never nil.
func (c *Client) FetchShiftReport(ctx context.Context, date string) (types.ShiftReport, error) {
	body, err := c.do(ctx, opShiftReport, http.MethodGet, "/api/reports/shift", dateParams(date), nil)
	if err != nil {
		logFailure(opShiftReport, err)
		return types.ShiftReport{Date: date, Rows: []types.ShiftReportRow{}}, err
	}

	var raw struct {
		Date string                 `json:"date"`
		Rows []types.ShiftReportRow `json:"rows"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		err = &ParseError{Op: opShiftReport, Err: err}
		logFailure(opShiftReport, err)
		return types.ShiftReport{Date: date, Rows: []types.ShiftReportRow{}}, err
	}

	rep := types.ShiftReport{Date: raw.Date, Rows: raw.Rows}
	if rep.Date == "" {
		rep.Date = date
	}
	if rep.Rows == nil {
		rep.Rows = []types.ShiftReportRow{}
	}
	return rep, nil
}

// FetchShiftReportCSV returns the API-rendered CSV export for date.
func (c *Client) FetchShiftReportCSV(ctx context.Context, date string) ([]byte, error) {
	q := dateParams(date)
	q.Set("format", "csv")
	body, err := c.do(ctx, opShiftReportCSV, http.MethodGet, "/api/reports/shift", q, nil)
	if err != nil {
		logFailure(opShiftReportCSV, err)
		return []byte{}, err
	}
	return body, nil
}

func dateParams(date string) url.Values {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	return q
}
