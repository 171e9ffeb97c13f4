package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDefault_IsValid tests that the default configuration passes validation.
func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() configuration failed validation: %v", err)
	}
}

// TestLoad_AppliesDefaults tests that unset fields keep their defaults.
func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
audit:
  backend: memory
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Sanitizer.MaxLength != DefaultSanitizerMaxLength {
		t.Errorf("Expected default max_length %d, got %d", DefaultSanitizerMaxLength, cfg.Sanitizer.MaxLength)
	}
	if cfg.Telemetry.Logging.Level != "info" {
		t.Errorf("Expected default log level 'info', got %q", cfg.Telemetry.Logging.Level)
	}
}

// TestLoad_Overrides tests that explicit values override defaults.
func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
detector:
  severities:
    ip-address: high
    file-path: medium
sanitizer:
  max_length: 50000
audit:
  backend: sqlite
  path: /tmp/audit.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Detector.Severities["ip-address"] != "high" {
		t.Errorf("Expected ip-address severity 'high', got %q", cfg.Detector.Severities["ip-address"])
	}
	if cfg.Sanitizer.MaxLength != 50000 {
		t.Errorf("Expected max_length 50000, got %d", cfg.Sanitizer.MaxLength)
	}
	if cfg.Audit.Backend != "sqlite" {
		t.Errorf("Expected audit backend 'sqlite', got %q", cfg.Audit.Backend)
	}
}

// TestValidate_Errors tests that invalid configurations are rejected.
func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "negative max_length",
			mutate:  func(c *Config) { c.Sanitizer.MaxLength = -1 },
			wantErr: "max_length",
		},
		{
			name:    "unknown store backend",
			mutate:  func(c *Config) { c.Permissions.StoreBackend = "postgres" },
			wantErr: "store_backend",
		},
		{
			name:    "unknown audit backend",
			mutate:  func(c *Config) { c.Audit.Backend = "redis" },
			wantErr: "audit.backend",
		},
		{
			name:    "sqlite audit without path",
			mutate:  func(c *Config) { c.Audit.Backend = "sqlite"; c.Audit.Path = "" },
			wantErr: "audit.path",
		},
		{
			name:    "bad severity override",
			mutate:  func(c *Config) { c.Detector.Severities = map[string]string{"email": "severe"} },
			wantErr: "risk level",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Telemetry.Logging.Level = "trace" },
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoad_MissingFile tests that a missing config file returns an error.
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Expected error for missing config file, got nil")
	}
}

// writeConfig writes a config file to a temp directory and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}
