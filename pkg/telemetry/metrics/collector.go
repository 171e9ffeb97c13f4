package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cleargate-hq/cleargate/pkg/config"
	"cleargate-hq/cleargate/pkg/detector"
	"cleargate-hq/cleargate/pkg/permission"
	"cleargate-hq/cleargate/pkg/sanitizer"
)

// Collector owns every Prometheus metric the gate exports: detector
// scans, sanitizer warnings, permission decisions, and audit failures.
// All recording methods are safe on a nil receiver so callers can wire
// metrics conditionally without guarding every call site.
type Collector struct {
	registry *prometheus.Registry

	scansTotal        *prometheus.CounterVec
	matchesTotal      *prometheus.CounterVec
	warningsTotal     *prometheus.CounterVec
	unsafeInputsTotal prometheus.Counter
	decisionsTotal    *prometheus.CounterVec
	decisionDuration  prometheus.Histogram
	auditFailures     prometheus.Counter
}

// NewCollector creates and registers the gate's metrics. If registry is
// nil a fresh registry is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	namespace := "cleargate"
	if cfg != nil && cfg.Namespace != "" {
		namespace = cfg.Namespace
	}

	c := &Collector{
		registry: registry,
		scansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detector_scans_total",
			Help:      "Content scans by aggregate recommendation.",
		}, []string{"recommendation"}),
		matchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detector_matches_total",
			Help:      "Sensitive pattern matches by type.",
		}, []string{"type"}),
		warningsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sanitizer_warnings_total",
			Help:      "Sanitization warnings by type.",
		}, []string{"type"}),
		unsafeInputsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sanitizer_unsafe_inputs_total",
			Help:      "Inputs whose risk score crossed the unsafe threshold.",
		}),
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "permission_decisions_total",
			Help:      "Upload permission decisions by outcome and destination.",
		}, []string{"decision", "destination"}),
		decisionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "permission_decision_duration_seconds",
			Help:      "Time spent deciding one permission check.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_append_failures_total",
			Help:      "Audit log writes that failed.",
		}),
	}

	registry.MustRegister(
		c.scansTotal,
		c.matchesTotal,
		c.warningsTotal,
		c.unsafeInputsTotal,
		c.decisionsTotal,
		c.decisionDuration,
		c.auditFailures,
	)
	return c
}

// RecordScan counts one detector scan and its matches.
func (c *Collector) RecordScan(result *detector.ScanResult) {
	if c == nil {
		return
	}
	c.scansTotal.WithLabelValues(string(result.Recommendation)).Inc()
	for _, match := range result.Matches {
		c.matchesTotal.WithLabelValues(string(match.Type)).Inc()
	}
}

// RecordSanitization counts one sanitizer pass and its warnings.
func (c *Collector) RecordSanitization(result *sanitizer.SanitizationResult) {
	if c == nil {
		return
	}
	for _, warning := range result.Warnings {
		c.warningsTotal.WithLabelValues(string(warning.Type)).Inc()
	}
	if !result.Safe {
		c.unsafeInputsTotal.Inc()
	}
}

// RecordDecision implements permission.MetricsRecorder.
func (c *Collector) RecordDecision(decision permission.Decision, destination permission.Destination, duration time.Duration) {
	if c == nil {
		return
	}
	c.decisionsTotal.WithLabelValues(string(decision), string(destination)).Inc()
	c.decisionDuration.Observe(duration.Seconds())
}

// RecordAuditFailure implements permission.MetricsRecorder.
func (c *Collector) RecordAuditFailure() {
	if c == nil {
		return
	}
	c.auditFailures.Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and composition.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
