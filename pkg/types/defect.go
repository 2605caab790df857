package types

import (
	"fmt"
	"strings"
	"time"
)

// DefectType is the category of a logged surface defect.
type DefectType string

// Values are the labels the Telemetry API stores in defect_type.
const (
	DefectEdgeCrack      DefectType = "Edge Crack"
	DefectSurfaceScratch DefectType = "Surface Scratch"
	DefectThicknessError DefectType = "Thickness Error"
	DefectOther          DefectType = "Other"
)

// DefectTypes lists every known defect type in display order.
var DefectTypes = []DefectType{
	DefectEdgeCrack,
	DefectSurfaceScratch,
	DefectThicknessError,
	DefectOther,
}

// ParseDefectType accepts the display label or a compact form such as
// "edge_crack" or "EdgeCrack", case-insensitively.
func ParseDefectType(s string) (DefectType, error) {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range DefectTypes {
		if strings.ReplaceAll(strings.ToLower(string(t)), " ", "") == key {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown defect type %q", s)
}

// DefectRecord is one entry of the defect log. Ownership lives in the
// Telemetry API; the monitor only holds short-lived copies.
type DefectRecord struct {
	ID         int64      `json:"id"`
	Timestamp  time.Time  `json:"ts"`
	BatchID    string     `json:"batch_id"`
	Machine    string     `json:"machine"`
	DefectType DefectType `json:"defect_type"`
	Rate       float64    `json:"rate"`
	Flagged    bool       `json:"flagged"`
}
