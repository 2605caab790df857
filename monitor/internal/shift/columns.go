package shift

import (
	"sort"
	"strconv"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

// preferredColumns lead the column order when present. Anything else the
// API adds follows in lexical order.
var preferredColumns = []string{
	"shift",
	"samples",
	"avg_temperature",
	"avg_vibration",
	"avg_throughput",
	"avg_defects",
	"min_temperature",
	"max_temperature",
}

// Columns returns the union of keys across rows in display order.
func Columns(rows []types.ShiftReportRow) []string {
	seen := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			seen[k] = true
		}
	}

	cols := make([]string, 0, len(seen))
	for _, c := range preferredColumns {
		if seen[c] {
			cols = append(cols, c)
			delete(seen, c)
		}
	}
	rest := make([]string, 0, len(seen))
	for c := range seen {
		rest = append(rest, c)
	}
	sort.Strings(rest)
	return append(cols, rest...)
}

// formatCell renders a decoded JSON value for text output.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
