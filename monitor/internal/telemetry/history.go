package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

const opHistory = "history"

// wireReading is the /api/history element. Pointers detect missing fields.
type wireReading struct {
	TS          *string  `json:"ts"`
	Temperature *float64 `json:"temperature"`
	Vibration   *float64 `json:"vibration"`
	Throughput  *float64 `json:"throughput"`
	Defects     *float64 `json:"defects"`
}

// FetchHistory returns up to limit readings, oldest first. On failure the
// slice is empty and err describes why.
func (c *Client) FetchHistory(ctx context.Context, limit int) ([]types.Reading, error) {
	if limit <= 0 {
		return []types.Reading{}, fmt.Errorf("telemetry %s: limit must be positive, got %d", opHistory, limit)
	}

	q := url.Values{"limit": {strconv.Itoa(limit)}}
	body, err := c.do(ctx, opHistory, http.MethodGet, "/api/history", q, nil)
	if err != nil {
		logFailure(opHistory, err)
		return []types.Reading{}, err
	}

	out, err := decodeHistory(body)
	if err != nil {
		err = &ParseError{Op: opHistory, Err: err}
		logFailure(opHistory, err)
		return []types.Reading{}, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func decodeHistory(body []byte) ([]types.Reading, error) {
	var raw []wireReading
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	out := make([]types.Reading, 0, len(raw))
	for i, w := range raw {
		if w.TS == nil || w.Temperature == nil || w.Vibration == nil || w.Throughput == nil || w.Defects == nil {
			return nil, fmt.Errorf("point %d: missing field", i)
		}
		ts, err := parseTimestamp(*w.TS)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out = append(out, types.Reading{
			Timestamp:   ts,
			Temperature: *w.Temperature,
			Vibration:   *w.Vibration,
			Throughput:  *w.Throughput,
			DefectRate:  *w.Defects,
		})
	}
	return out, nil
}

// timestampLayouts are tried in order. The API emits RFC 3339 with
// milliseconds; SQLite-style values without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("bad timestamp " + strconv.Quote(s))
}
