package config

import "time"

// Default values for configuration fields.
const (
	// Sanitizer defaults
	DefaultSanitizerMaxLength = 100000
	DefaultSanitizerMaxLines  = 5000

	// Permission store defaults
	DefaultStoreBackend  = "memory"
	DefaultStorePath     = "data/policies.db"
	DefaultWatchDebounce = 100 * time.Millisecond

	// Audit defaults
	DefaultAuditBackend   = "memory"
	DefaultAuditPath      = "data/audit.db"
	DefaultRetentionDays  = 90
	DefaultPruneSchedule  = "0 3 * * *"
	DefaultMetricsEnabled = true

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultMetricsNamespace = "cleargate"
)

// Default returns a configuration populated with default values.
// The result is valid without further modification.
func Default() *Config {
	return &Config{
		Detector: DetectorConfig{
			Severities: map[string]string{},
		},
		Sanitizer: SanitizerConfig{
			MaxLength: DefaultSanitizerMaxLength,
			MaxLines:  DefaultSanitizerMaxLines,
		},
		Permissions: PermissionsConfig{
			StoreBackend:  DefaultStoreBackend,
			StorePath:     DefaultStorePath,
			WatchDebounce: DefaultWatchDebounce,
		},
		Audit: AuditConfig{
			Backend: DefaultAuditBackend,
			Path:    DefaultAuditPath,
			Retention: RetentionConfig{
				Days:     DefaultRetentionDays,
				Schedule: DefaultPruneSchedule,
			},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:         DefaultLogLevel,
				Format:        DefaultLogFormat,
				RedactSecrets: true,
			},
			Metrics: MetricsConfig{
				Enabled:   DefaultMetricsEnabled,
				Namespace: DefaultMetricsNamespace,
			},
		},
	}
}
