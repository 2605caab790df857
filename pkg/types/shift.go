package types

// ShiftReportRow is one aggregate row of a shift report. Its columns are
// computed by the Telemetry API and treated as opaque here.
type ShiftReportRow map[string]any

// ShiftReport is the shift rollup for a single day.
type ShiftReport struct {
	Date string           `json:"date"`
	Rows []ShiftReportRow `json:"rows"`
}
