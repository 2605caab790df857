// Package config loads and watches the monitor configuration (config.yaml).
//
// Top-level types:
//   - Config{API, Refresh, History, Server, Limits, Export, Log}: the full tree
//   - APIConfig: base_url, request_timeout for the Telemetry API client
//   - RefreshConfig: enabled, interval (2s–15s) for the cycle scheduler
//   - HistoryConfig: window, one of 150 | 450 | 900 points
//   - ServerConfig: http_port, snapshot_ttl, broadcast_interval
//   - LimitsConfig: rate limit for defect writes through the HTTP API
//   - ExportConfig: textfile_path for the node-exporter textfile
//
// Load(path) reads a .env file if one exists, applies defaults, overlays the
// YAML file, then validates ranges and enums. The Telemetry API base URL
// resolves as: built-in default, then PCS_API_BASE, then api.base_url.
// An empty path skips the YAML step.
//
// Watch(ctx, path, holder, onChange) uses fsnotify to detect file changes,
// reloads the file, and publishes it to the Holder when Diff reports at least
// one changed key. Changed keys are logged one per line; server.* keys are
// only read at startup and are logged as needing a restart. A failed reload
// keeps the current config. Holder gives the scheduler and HTTP handlers a
// lock-free view of the current Config with the watcher as its only writer.
package config
