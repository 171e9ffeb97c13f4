// Package metrics exports Prometheus counters and histograms for the
// detector, sanitizer, and permission subsystems.
package metrics
