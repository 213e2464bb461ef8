package config

import "time"

// Config is the root configuration structure for the policy dashboard.
type Config struct {
	// Backend selects where policies, data sources and rows are read from.
	Backend BackendConfig `yaml:"backend"`

	// Server contains HTTP API server configuration.
	Server ServerConfig `yaml:"server"`

	// Monitor contains configuration for scheduled violation scans.
	Monitor MonitorConfig `yaml:"monitor"`

	// Telemetry contains logging, metrics and health configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Backend modes.
const (
	BackendMemory   = "memory"
	BackendFixture  = "fixture"
	BackendSnapshot = "snapshot"
)

// BackendConfig selects and configures the policy engine backend.
type BackendConfig struct {
	// Mode is one of "memory", "fixture" or "snapshot".
	// Default: "fixture"
	Mode string `yaml:"mode"`

	// FixturePath is the YAML fixture file read in fixture mode.
	// Default: "./fixture.yaml"
	FixturePath string `yaml:"fixture_path"`

	// Watch reloads the fixture file when it changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a changed fixture is
	// reloaded.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// SnapshotPath is the SQLite snapshot read in snapshot mode and written
	// by "snapshot export".
	// Default: "data/snapshot.db"
	SnapshotPath string `yaml:"snapshot_path"`

	// RequestTimeout bounds each API request's backend calls.
	// Default: 30s
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// History backends.
const (
	HistorySQLite = "sqlite"
	HistoryMemory = "memory"
)

// MonitorConfig configures scheduled violation scans.
type MonitorConfig struct {
	// Enabled turns scheduled scans on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Schedule is a standard five-field cron expression or descriptor
	// such as "@every 5m".
	// Default: "*/5 * * * *"
	Schedule string `yaml:"schedule"`

	// HistoryBackend is "sqlite" or "memory".
	// Default: "sqlite"
	HistoryBackend string `yaml:"history_backend"`

	// HistoryPath is the SQLite history database.
	// Default: "data/history.db"
	HistoryPath string `yaml:"history_path"`

	// RetentionCount is how many scans are kept. Zero keeps all.
	// Default: 1000
	RetentionCount int `yaml:"retention_count"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Health  HealthConfig  `yaml:"health"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json", "text" or "console".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`

	// RedactCredentials hides passwords, tokens and keys in log values.
	// Data source configuration maps routinely carry credentials.
	// Default: true
	RedactCredentials bool `yaml:"redact_credentials"`

	// RedactPatterns are additional redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled exposes metrics.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "congress"
	Namespace string `yaml:"namespace"`

	// Subsystem follows the namespace in metric names.
	// Default: "dashboard"
	Subsystem string `yaml:"subsystem"`
}

// HealthConfig configures the health endpoints.
type HealthConfig struct {
	// LivenessPath is the liveness probe path.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the readiness probe path.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout bounds each readiness check.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
