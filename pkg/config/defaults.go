package config

import "time"

// Default values for configuration fields.
const (
	// Backend defaults
	DefaultBackendMode      = BackendFixture
	DefaultFixturePath      = "./fixture.yaml"
	DefaultDebounceInterval = 100 * time.Millisecond
	DefaultSnapshotPath     = "data/snapshot.db"
	DefaultRequestTimeout   = 30 * time.Second

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Monitor defaults
	DefaultMonitorEnabled  = true
	DefaultMonitorSchedule = "*/5 * * * *"
	DefaultHistoryBackend  = HistorySQLite
	DefaultHistoryPath     = "data/history.db"
	DefaultRetentionCount  = 1000

	// Telemetry defaults
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
	DefaultRedactCredentials = true
	DefaultMetricsEnabled    = true
	DefaultMetricsPath       = "/metrics"
	DefaultMetricsNamespace  = "congress"
	DefaultMetricsSubsystem  = "dashboard"
	DefaultLivenessPath      = "/health"
	DefaultReadinessPath     = "/ready"
	DefaultCheckTimeout      = 5 * time.Second
)

// Default returns a configuration with every default applied. Loading
// decodes YAML on top of it, so booleans that default to true stay true
// unless the file sets them.
func Default() *Config {
	cfg := &Config{
		Monitor: MonitorConfig{
			Enabled: DefaultMonitorEnabled,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{RedactCredentials: DefaultRedactCredentials},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Booleans are
// left alone; see Default.
func ApplyDefaults(cfg *Config) {
	// Backend defaults
	if cfg.Backend.Mode == "" {
		cfg.Backend.Mode = DefaultBackendMode
	}
	if cfg.Backend.FixturePath == "" {
		cfg.Backend.FixturePath = DefaultFixturePath
	}
	if cfg.Backend.DebounceInterval == 0 {
		cfg.Backend.DebounceInterval = DefaultDebounceInterval
	}
	if cfg.Backend.SnapshotPath == "" {
		cfg.Backend.SnapshotPath = DefaultSnapshotPath
	}
	if cfg.Backend.RequestTimeout == 0 {
		cfg.Backend.RequestTimeout = DefaultRequestTimeout
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Monitor defaults
	if cfg.Monitor.Schedule == "" {
		cfg.Monitor.Schedule = DefaultMonitorSchedule
	}
	if cfg.Monitor.HistoryBackend == "" {
		cfg.Monitor.HistoryBackend = DefaultHistoryBackend
	}
	if cfg.Monitor.HistoryPath == "" {
		cfg.Monitor.HistoryPath = DefaultHistoryPath
	}
	if cfg.Monitor.RetentionCount == 0 {
		cfg.Monitor.RetentionCount = DefaultRetentionCount
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultCheckTimeout
	}
}
