package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"cleargate-hq/cleargate/pkg/detector"
	"cleargate-hq/cleargate/pkg/permission"
	"cleargate-hq/cleargate/pkg/sanitizer"
)

func TestCollector_RecordScan(t *testing.T) {
	c := NewCollector(nil, prometheus.NewRegistry())

	c.RecordScan(&detector.ScanResult{
		HasSensitiveData: true,
		Matches: []detector.SensitivePatternMatch{
			{Type: detector.MatchAPIKey, RiskLevel: detector.RiskCritical},
			{Type: detector.MatchEmail, RiskLevel: detector.RiskLow},
			{Type: detector.MatchEmail, RiskLevel: detector.RiskLow},
		},
		Recommendation: detector.RecommendBlock,
	})

	if got := testutil.ToFloat64(c.scansTotal.WithLabelValues("block")); got != 1 {
		t.Errorf("scans_total{block} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.matchesTotal.WithLabelValues("email")); got != 2 {
		t.Errorf("matches_total{email} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.matchesTotal.WithLabelValues("api-key")); got != 1 {
		t.Errorf("matches_total{api-key} = %v, want 1", got)
	}
}

func TestCollector_RecordSanitization(t *testing.T) {
	c := NewCollector(nil, prometheus.NewRegistry())

	c.RecordSanitization(&sanitizer.SanitizationResult{
		Safe:      false,
		RiskScore: 50,
		Warnings: []sanitizer.SanitizationWarning{
			{Type: sanitizer.WarningDataExfiltration, Severity: sanitizer.SeverityCritical},
		},
	})

	if got := testutil.ToFloat64(c.warningsTotal.WithLabelValues(string(sanitizer.WarningDataExfiltration))); got != 1 {
		t.Errorf("warnings_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.unsafeInputsTotal); got != 1 {
		t.Errorf("unsafe_inputs_total = %v, want 1", got)
	}
}

func TestCollector_RecordDecision(t *testing.T) {
	c := NewCollector(nil, prometheus.NewRegistry())

	c.RecordDecision(permission.DecisionDenied, permission.DestinationCloud, 2*time.Millisecond)
	c.RecordDecision(permission.DecisionAllowed, permission.DestinationLocal, time.Millisecond)

	if got := testutil.ToFloat64(c.decisionsTotal.WithLabelValues("denied", "cloud")); got != 1 {
		t.Errorf("decisions_total{denied,cloud} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.decisionsTotal.WithLabelValues("allowed", "local")); got != 1 {
		t.Errorf("decisions_total{allowed,local} = %v, want 1", got)
	}
}

func TestCollector_NilReceiverSafe(t *testing.T) {
	var c *Collector
	c.RecordScan(&detector.ScanResult{})
	c.RecordSanitization(&sanitizer.SanitizationResult{Safe: true})
	c.RecordDecision(permission.DecisionAllowed, permission.DestinationLocal, 0)
	c.RecordAuditFailure()
}
