// Package telemetry groups the observability subsystems: structured
// logging with secret redaction and Prometheus metrics.
package telemetry
