package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for ClearGate.
// It contains all configuration sections for the egress gate: sensitive data
// detection, input sanitization, upload permissions, audit storage, and
// telemetry.
type Config struct {
	// Detector contains configuration for the sensitive data detector
	// including category severity overrides.
	Detector DetectorConfig `yaml:"detector"`

	// Sanitizer contains configuration for the input sanitizer including
	// length limits.
	Sanitizer SanitizerConfig `yaml:"sanitizer"`

	// Permissions contains configuration for the upload permission manager
	// including the directory policy store and policy file watching.
	Permissions PermissionsConfig `yaml:"permissions"`

	// Audit contains configuration for audit log storage and retention.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DetectorConfig contains configuration for the sensitive data detector.
type DetectorConfig struct {
	// Severities overrides the risk level for individual detection
	// categories. Keys are category names (e.g. "ip-address", "file-path"),
	// values are risk levels ("low", "medium", "high", "critical").
	// Only categories listed here are overridden; everything else keeps
	// its built-in level.
	Severities map[string]string `yaml:"severities"`
}

// SanitizerConfig contains configuration for the input sanitizer.
type SanitizerConfig struct {
	// MaxLength is the maximum input length in characters. Longer inputs
	// are truncated and flagged.
	// Default: 100000
	MaxLength int `yaml:"max_length"`

	// MaxLines is the maximum line count before the input is flagged
	// (the input is not truncated on this basis alone).
	// Default: 5000
	MaxLines int `yaml:"max_lines"`
}

// PermissionsConfig contains configuration for the upload permission manager.
type PermissionsConfig struct {
	// StoreBackend selects the directory policy store backend.
	// Valid values: "memory", "sqlite".
	// Default: "memory"
	StoreBackend string `yaml:"store_backend"`

	// StorePath is the SQLite database file path for the policy store.
	// Only used when StoreBackend is "sqlite".
	// Default: "data/policies.db"
	StorePath string `yaml:"store_path"`

	// PolicyFile is an optional YAML file holding directory policies
	// managed by an external settings UI. When set, policies are loaded
	// from it at startup.
	PolicyFile string `yaml:"policy_file"`

	// WatchPolicyFile enables live reloading of PolicyFile on change.
	// Default: false
	WatchPolicyFile bool `yaml:"watch_policy_file"`

	// WatchDebounce is the time to wait after a file change before
	// reloading, to coalesce editor write bursts.
	// Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// AuditConfig contains configuration for audit log storage.
type AuditConfig struct {
	// Backend selects the audit storage backend.
	// Valid values: "memory", "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path.
	// Only used when Backend is "sqlite".
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// Retention contains retention pruning settings.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig contains audit retention settings.
type RetentionConfig struct {
	// Days is the number of days to retain audit entries.
	// 0 means keep entries forever.
	// Default: 90
	Days int `yaml:"days"`

	// MaxEntries is the maximum number of entries to keep.
	// 0 means unlimited.
	MaxEntries int64 `yaml:"max_entries"`

	// Schedule is a cron expression for scheduled pruning.
	// Empty disables scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "text"
	Format string `yaml:"format"`

	// RedactSecrets masks secret-shaped values in log attributes before
	// they reach the handler.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus metric namespace.
	// Default: "cleargate"
	Namespace string `yaml:"namespace"`

	// ListenAddress is the address for the metrics HTTP endpoint.
	// Empty disables the endpoint (metrics are still collected).
	ListenAddress string `yaml:"listen_address"`
}

// Load reads and parses a configuration file, applies defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Sanitizer.MaxLength <= 0 {
		return fmt.Errorf("sanitizer.max_length must be positive, got %d", c.Sanitizer.MaxLength)
	}
	if c.Sanitizer.MaxLines <= 0 {
		return fmt.Errorf("sanitizer.max_lines must be positive, got %d", c.Sanitizer.MaxLines)
	}

	switch c.Permissions.StoreBackend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("permissions.store_backend must be \"memory\" or \"sqlite\", got %q", c.Permissions.StoreBackend)
	}
	if c.Permissions.StoreBackend == "sqlite" && c.Permissions.StorePath == "" {
		return fmt.Errorf("permissions.store_path is required for the sqlite backend")
	}

	switch c.Audit.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("audit.backend must be \"memory\" or \"sqlite\", got %q", c.Audit.Backend)
	}
	if c.Audit.Backend == "sqlite" && c.Audit.Path == "" {
		return fmt.Errorf("audit.path is required for the sqlite backend")
	}
	if c.Audit.Retention.Days < 0 {
		return fmt.Errorf("audit.retention.days must not be negative, got %d", c.Audit.Retention.Days)
	}

	for category, level := range c.Detector.Severities {
		switch level {
		case "low", "medium", "high", "critical":
		default:
			return fmt.Errorf("detector.severities[%q]: unknown risk level %q", category, level)
		}
	}

	switch c.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level must be one of debug, info, warn, error; got %q", c.Telemetry.Logging.Level)
	}
	switch c.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format must be \"json\" or \"text\", got %q", c.Telemetry.Logging.Format)
	}

	return nil
}
