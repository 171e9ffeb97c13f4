// Package config provides configuration loading and validation for ClearGate.
//
// Configuration is loaded from a YAML file and validated before use. Each
// section maps to one subsystem (detector, sanitizer, permissions, audit,
// telemetry) and is handed to that subsystem's constructor by the
// composition root.
package config
