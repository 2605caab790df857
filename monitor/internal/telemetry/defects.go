package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

const (
	opDefects      = "defects"
	opSubmitDefect = "submit_defect"
	opFlagDefect   = "flag_defect"

	// DefaultDefectLimit matches the API's own default page size.
	DefaultDefectLimit = 100
)

// DefectQuery filters a defect listing.
type DefectQuery struct {
	// Flagged restricts the listing to flagged (true) or unflagged (false)
	// records. nil lists everything.
	Flagged *bool
	// Limit caps the number of records. Zero means DefaultDefectLimit.
	Limit int
}

// DefectSubmission is the body of a defect-creation request.
type DefectSubmission struct {
	BatchID    string           `json:"batch_id"`
	Machine    string           `json:"machine"`
	DefectType types.DefectType `json:"defect_type"`
	Rate       float64          `json:"rate"`
	Flagged    bool             `json:"flagged"`
}

// DefectReceipt is the API's acknowledgement of a created record.
type DefectReceipt struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"ts"`
}

type wireDefect struct {
	ID         int64    `json:"id"`
	TS         string   `json:"ts"`
	BatchID    *string  `json:"batch_id"`
	Machine    *string  `json:"machine"`
	DefectType *string  `json:"defect_type"`
	Rate       *float64 `json:"rate"`
	Flagged    flexBool `json:"flagged"`
}

// flexBool accepts JSON booleans and the 0/1 integers SQLite hands back.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true", "1":
		*b = true
	case "false", "0", "null":
		*b = false
	default:
		return fmt.Errorf("flagged: unexpected value %s", data)
	}
	return nil
}

// FetchDefects lists defect records, newest first as returned by the API.
func (c *Client) FetchDefects(ctx context.Context, q DefectQuery) ([]types.DefectRecord, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultDefectLimit
	}
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if q.Flagged != nil {
		params.Set("flagged", boolParam(*q.Flagged))
	}

	body, err := c.do(ctx, opDefects, http.MethodGet, "/api/defects", params, nil)
	if err != nil {
		logFailure(opDefects, err)
		return []types.DefectRecord{}, err
	}

	out, err := decodeDefects(body)
	if err != nil {
		err = &ParseError{Op: opDefects, Err: err}
		logFailure(opDefects, err)
		return []types.DefectRecord{}, err
	}

	// The API only filters on flagged=1; apply the filter locally so
	// flagged=0 means "unflagged only".
	if q.Flagged != nil {
		kept := out[:0]
		for _, d := range out {
			if d.Flagged == *q.Flagged {
				kept = append(kept, d)
			}
		}
		out = kept
	}
	return out, nil
}

func decodeDefects(body []byte) ([]types.DefectRecord, error) {
	var raw []wireDefect
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	out := make([]types.DefectRecord, 0, len(raw))
	for i, w := range raw {
		if w.BatchID == nil || w.Machine == nil || w.DefectType == nil || w.Rate == nil {
			return nil, fmt.Errorf("record %d: missing field", i)
		}
		rec := types.DefectRecord{
			ID:      w.ID,
			BatchID: *w.BatchID,
			Machine: *w.Machine,
			Rate:    *w.Rate,
			Flagged: bool(w.Flagged),
		}
		// Free-text types from older clients are kept as Other.
		dt, err := types.ParseDefectType(*w.DefectType)
		if err != nil {
			dt = types.DefectOther
		}
		rec.DefectType = dt
		if w.TS != "" {
			ts, err := parseTimestamp(w.TS)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			rec.Timestamp = ts
		}
		out = append(out, rec)
	}
	return out, nil
}

// SubmitDefect creates a defect record. The submission is sent as-is;
// field validation is the caller's job.
func (c *Client) SubmitDefect(ctx context.Context, s DefectSubmission) (DefectReceipt, error) {
	body, err := c.do(ctx, opSubmitDefect, http.MethodPost, "/api/defects", nil, s)
	if err != nil {
		logFailure(opSubmitDefect, err)
		return DefectReceipt{}, err
	}

	var raw struct {
		ID *int64 `json:"id"`
		TS string `json:"ts"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		err = &ParseError{Op: opSubmitDefect, Err: err}
		logFailure(opSubmitDefect, err)
		return DefectReceipt{}, err
	}
	if raw.ID == nil {
		err := &ParseError{Op: opSubmitDefect, Err: errors.New("response has no id")}
		logFailure(opSubmitDefect, err)
		return DefectReceipt{}, err
	}

	rc := DefectReceipt{ID: *raw.ID}
	if raw.TS != "" {
		if ts, err := parseTimestamp(raw.TS); err == nil {
			rc.Timestamp = ts
		}
	}
	return rc, nil
}

// SetDefectFlag flags or unflags record id. It returns the number of rows
// the API reports as updated (0 when id does not exist).
func (c *Client) SetDefectFlag(ctx context.Context, id int64, flagged bool) (int, error) {
	path := "/api/defects/" + strconv.FormatInt(id, 10) + "/flag"
	body, err := c.do(ctx, opFlagDefect, http.MethodPatch, path, nil, map[string]bool{"flagged": flagged})
	if err != nil {
		logFailure(opFlagDefect, err)
		return 0, err
	}

	var raw struct {
		Updated int `json:"updated"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		err = &ParseError{Op: opFlagDefect, Err: err}
		logFailure(opFlagDefect, err)
		return 0, err
	}
	return raw.Updated, nil
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
