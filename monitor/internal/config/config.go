package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvAPIBase names the environment variable that supplies the default
// Telemetry API base URL.
const EnvAPIBase = "PCS_API_BASE"

// Default values applied when fields are absent from the config file.
const (
	DefaultBaseURL           = "http://localhost:4000"
	DefaultRequestTimeout    = 6 * time.Second
	DefaultRefreshInterval   = 3 * time.Second
	DefaultHistoryWindow     = 150
	DefaultHTTPPort          = 8090
	DefaultSnapshotTTL       = 30 * time.Second
	DefaultBroadcastInterval = 2 * time.Second
	DefaultSubmitRate        = 2.0
	DefaultSubmitBurst       = 5
	DefaultLogLevel          = "info"
)

// Refresh interval bounds.
const (
	MinRefreshInterval = 2 * time.Second
	MaxRefreshInterval = 15 * time.Second
)

// HistoryWindows are the allowed history window sizes, in points.
var HistoryWindows = []int{150, 450, 900}

// Config is the top-level monitor configuration.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	API     APIConfig     `yaml:"api" json:"api"`
	Refresh RefreshConfig `yaml:"refresh" json:"refresh"`
	History HistoryConfig `yaml:"history" json:"history"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Limits  LimitsConfig  `yaml:"limits" json:"limits"`
	Export  ExportConfig  `yaml:"export" json:"export"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

// APIConfig points the monitor at the Telemetry API.
type APIConfig struct {
	// BaseURL is the Telemetry API root, e.g. http://localhost:4000.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// RequestTimeout bounds each individual API call.
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// RefreshConfig controls the cycle scheduler.
type RefreshConfig struct {
	Enabled  bool          `yaml:"enabled" json:"enabled"`
	Interval time.Duration `yaml:"interval" json:"interval"`
}

// HistoryConfig sets how many points each cycle fetches.
type HistoryConfig struct {
	Window int `yaml:"window" json:"window"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, WebSocket hub and /metrics listen on.
	HTTPPort int `yaml:"http_port" json:"http_port"`

	// SnapshotTTL is the age after which the served snapshot is marked stale.
	SnapshotTTL time.Duration `yaml:"snapshot_ttl" json:"snapshot_ttl"`

	// BroadcastInterval is how often the WebSocket hub pushes snapshots.
	BroadcastInterval time.Duration `yaml:"broadcast_interval" json:"broadcast_interval"`
}

// LimitsConfig throttles defect writes (submit and flag) through the API.
type LimitsConfig struct {
	// SubmitRate is the sustained number of writes allowed per second.
	SubmitRate float64 `yaml:"submit_rate" json:"submit_rate"`
	// SubmitBurst is the token bucket size.
	SubmitBurst int `yaml:"submit_burst" json:"submit_burst"`
}

// ExportConfig configures the Prometheus textfile export.
type ExportConfig struct {
	// TextfilePath is where each cycle's gauges are written. Empty disables it.
	TextfilePath string `yaml:"textfile_path" json:"textfile_path"`
}

// LogConfig selects the log level: debug | info | warn | error.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// SlogLevel maps Level onto slog. Unknown values read as info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads the config file at path and returns a validated Config.
// An empty path returns the defaults (plus PCS_API_BASE).
func Load(path string) (*Config, error) {
	loadDotEnv()

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// loadDotEnv reads ./.env into the process environment. Variables already
// set are not overridden and a missing file is not an error.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config: .env not loaded", "err", err)
	}
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	base := DefaultBaseURL
	if v := strings.TrimSpace(os.Getenv(EnvAPIBase)); v != "" {
		base = v
	}
	return &Config{
		API: APIConfig{
			BaseURL:        base,
			RequestTimeout: DefaultRequestTimeout,
		},
		Refresh: RefreshConfig{
			Enabled:  true,
			Interval: DefaultRefreshInterval,
		},
		History: HistoryConfig{Window: DefaultHistoryWindow},
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			SnapshotTTL:       DefaultSnapshotTTL,
			BroadcastInterval: DefaultBroadcastInterval,
		},
		Limits: LimitsConfig{
			SubmitRate:  DefaultSubmitRate,
			SubmitBurst: DefaultSubmitBurst,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// validate checks ranges and enums.
func validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url %q must be an http(s) URL", cfg.API.BaseURL)
	}
	if cfg.API.RequestTimeout <= 0 {
		return fmt.Errorf("api.request_timeout must be positive")
	}
	if cfg.Refresh.Interval < MinRefreshInterval || cfg.Refresh.Interval > MaxRefreshInterval {
		return fmt.Errorf("refresh.interval must be between %s and %s, got %s",
			MinRefreshInterval, MaxRefreshInterval, cfg.Refresh.Interval)
	}
	if !validWindow(cfg.History.Window) {
		return fmt.Errorf("history.window must be one of %v, got %d", HistoryWindows, cfg.History.Window)
	}
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d out of range", cfg.Server.HTTPPort)
	}
	if cfg.Server.SnapshotTTL < 0 {
		return fmt.Errorf("server.snapshot_ttl must not be negative")
	}
	if cfg.Server.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}
	if cfg.Limits.SubmitRate <= 0 {
		return fmt.Errorf("limits.submit_rate must be positive")
	}
	if cfg.Limits.SubmitBurst < 1 {
		return fmt.Errorf("limits.submit_burst must be at least 1")
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	return nil
}

func validWindow(n int) bool {
	for _, w := range HistoryWindows {
		if n == w {
			return true
		}
	}
	return false
}
