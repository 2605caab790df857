package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/cycle"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/monitor/internal/threshold"
	"github.com/jennyle0421/arconic-pcs-telemetry-dashboard/pkg/types"
)

// Families builds the exported metric families for snap. Bounds come from
// table so dashboards can draw guide lines next to the value.
func Families(snap cycle.Snapshot, table threshold.Table) []*dto.MetricFamily {
	healthy := 0.0
	if snap.APIHealthy {
		healthy = 1
	}

	value := gaugeFamily("pcs_line_value", "Latest reading per line metric.")
	state := gaugeFamily("pcs_line_state_rank", "Health state rank per line metric: 0 unknown, 1 ok, 2 watch, 3 critical.")
	warn := gaugeFamily("pcs_line_warn_bound", "Warn bound per line metric.")
	crit := gaugeFamily("pcs_line_crit_bound", "Critical bound per line metric.")

	for _, m := range types.Metrics {
		if snap.Current != nil {
			if v, ok := snap.Current.Value(m); ok {
				value.Metric = append(value.Metric, gauge(v, "metric", string(m)))
			}
		}
		st := snap.States[m]
		state.Metric = append(state.Metric, gauge(float64(st.Rank()), "metric", string(m)))
		if spec, ok := table.Bands(m); ok {
			warn.Metric = append(warn.Metric, gauge(spec.Warn, "metric", string(m), "direction", string(spec.Direction)))
			crit.Metric = append(crit.Metric, gauge(spec.Crit, "metric", string(m), "direction", string(spec.Direction)))
		}
	}

	api := gaugeFamily("pcs_line_api_healthy", "1 if the Telemetry API probe succeeded.")
	api.Metric = append(api.Metric, gauge(healthy))

	out := []*dto.MetricFamily{api, value, state, warn, crit}
	if snap.Current != nil && !snap.Current.Timestamp.IsZero() {
		ts := gaugeFamily("pcs_line_last_reading_timestamp_seconds", "Timestamp of the newest reading.")
		ts.Metric = append(ts.Metric, gauge(float64(snap.Current.Timestamp.UnixMilli())/1000))
		out = append(out, ts)
	}
	return out
}

// Encode renders families in the text exposition format.
func Encode(families []*dto.MetricFamily) ([]byte, error) {
	var buf bytes.Buffer
	for _, mf := range families {
		if len(mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return nil, fmt.Errorf("export: encode %s: %w", mf.GetName(), err)
		}
	}
	return buf.Bytes(), nil
}

// WriteTextfile writes snap to path via a temp file and rename.
func WriteTextfile(path string, snap cycle.Snapshot, table threshold.Table) error {
	data, err := Encode(Families(snap, table))
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("export: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("export: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("export: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("export: chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("export: rename: %w", err)
	}
	return nil
}

func gaugeFamily(name, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
}

// gauge builds a gauge sample. labels alternate name, value.
func gauge(v float64, labels ...string) *dto.Metric {
	m := &dto.Metric{Gauge: &dto.Gauge{Value: proto.Float64(v)}}
	for i := 0; i+1 < len(labels); i += 2 {
		m.Label = append(m.Label, &dto.LabelPair{
			Name:  proto.String(labels[i]),
			Value: proto.String(labels[i+1]),
		})
	}
	return m
}
