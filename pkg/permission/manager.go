package permission

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"cleargate-hq/cleargate/pkg/audit"
	"cleargate-hq/cleargate/pkg/detector"
)

// MetricsRecorder receives decision events for telemetry. A nil recorder
// disables metrics.
type MetricsRecorder interface {
	RecordDecision(decision Decision, destination Destination, duration time.Duration)
	RecordAuditFailure()
}

// Manager coordinates upload permission checks: directory policies,
// the session cache, risk-based decisions, and the audit trail.
//
// All methods are safe for concurrent use. Checks are serialized so that
// the cache, the policy store, and the audit log observe decisions in a
// single consistent order.
type Manager struct {
	store   PolicyStore
	auditor audit.Storage
	cache   *sessionCache
	metrics MetricsRecorder
	logger  *slog.Logger

	// now is replaceable in tests.
	now func() time.Time

	mu sync.Mutex
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) ManagerOption {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(mgr *Manager) { mgr.logger = logger }
}

// NewManager creates a permission manager over the given policy store and
// audit log.
func NewManager(store PolicyStore, auditor audit.Storage, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:   store,
		auditor: auditor,
		cache:   newSessionCache(),
		logger:  slog.Default().With("component", "permission"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CheckUploadPermission decides whether the content described by req may
// proceed to its destination. Evaluation order:
//
//  1. Local destination: always allowed, no policy or cache consulted.
//  2. Session cache: a previous explicit decision for the same
//     (file, directory) pair is replayed.
//  3. Directory policy: always-allow and always-block decide outright;
//     ask-each-time falls through to the risk step.
//  4. Risk: critical scan results are denied, medium and high require
//     user consent, everything else is allowed.
//
// Exactly one audit entry is appended per call. If the policy store or
// the audit log fails, the error is returned and no decision is made up.
func (m *Manager) CheckUploadPermission(ctx context.Context, req *UploadPermissionRequest) (*PermissionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := m.now()

	resp, err := m.evaluate(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := m.appendAudit(ctx, req, resp); err != nil {
		if m.metrics != nil {
			m.metrics.RecordAuditFailure()
		}
		return nil, err
	}

	if m.metrics != nil {
		m.metrics.RecordDecision(resp.Decision, req.Destination, m.now().Sub(start))
	}
	m.logger.Debug("permission check",
		"file_id", req.FileID,
		"directory_id", req.DirectoryID,
		"destination", req.Destination,
		"decision", resp.Decision,
		"from_cache", resp.FromCache)
	return resp, nil
}

// evaluate runs the decision steps without touching the audit log.
func (m *Manager) evaluate(ctx context.Context, req *UploadPermissionRequest) (*PermissionResponse, error) {
	// Local inference never leaves the device.
	if req.Destination == DestinationLocal {
		return &PermissionResponse{
			Decision: DecisionAllowed,
			Reason:   "Local processing only",
		}, nil
	}

	if decision, ok := m.cache.get(req.FileID, req.DirectoryID); ok {
		return &PermissionResponse{
			Decision:  decision,
			Reason:    "cached decision",
			FromCache: true,
		}, nil
	}

	policy, err := m.store.Get(ctx, req.DirectoryID)
	if err != nil {
		return nil, err
	}
	if policy != nil {
		switch policy.Policy {
		case PolicyAlwaysAllow:
			return &PermissionResponse{
				Decision: DecisionAllowed,
				Reason:   "Directory policy allows uploads",
				Policy:   PolicyAlwaysAllow,
			}, nil
		case PolicyAlwaysBlock:
			return &PermissionResponse{
				Decision: DecisionDenied,
				Reason:   "Directory policy blocks uploads",
				Policy:   PolicyAlwaysBlock,
			}, nil
		case PolicyAskEachTime:
			// Fall through to the risk step; the policy is echoed so
			// callers know consent is policy-driven.
			resp := m.riskDecision(req)
			resp.Policy = PolicyAskEachTime
			return resp, nil
		}
	}

	return m.riskDecision(req), nil
}

// riskDecision maps the scan result onto a decision.
func (m *Manager) riskDecision(req *UploadPermissionRequest) *PermissionResponse {
	scan := &req.ScanResult
	if scan.HasSensitiveData {
		switch scan.OverallRiskLevel {
		case detector.RiskCritical:
			return &PermissionResponse{
				Decision: DecisionDenied,
				Reason:   "Critical risk data detected",
			}
		case detector.RiskHigh, detector.RiskMedium:
			return &PermissionResponse{
				Decision:            DecisionPending,
				RequiresUserConsent: true,
				Reason:              fmt.Sprintf("Sensitive data detected (%s risk), user consent required", scan.OverallRiskLevel),
			}
		}
	}
	return &PermissionResponse{
		Decision: DecisionAllowed,
		Reason:   "No sensitive data detected",
	}
}

// appendAudit writes the single audit entry for one check.
func (m *Manager) appendAudit(ctx context.Context, req *UploadPermissionRequest, resp *PermissionResponse) error {
	timestamp := req.Timestamp
	if timestamp.IsZero() {
		timestamp = m.now()
	}
	return m.auditor.Append(ctx, &audit.Entry{
		ID:            uuid.NewString(),
		FileID:        req.FileID,
		DirectoryID:   req.DirectoryID,
		Destination:   string(req.Destination),
		Provider:      req.Provider,
		Decision:      string(resp.Decision),
		Reason:        resp.Reason,
		Policy:        string(resp.Policy),
		SensitiveData: req.ScanResult.HasSensitiveData,
		Timestamp:     timestamp,
	})
}

// GrantPermission records an explicit user approval for a pending request.
// The decision is cached for the session; with remember set, the file's
// directory additionally gets a persistent always-allow policy.
func (m *Manager) GrantPermission(ctx context.Context, req *UploadPermissionRequest, remember bool) error {
	return m.resolvePending(ctx, req, DecisionAllowed, PolicyAlwaysAllow, remember)
}

// DenyPermission records an explicit user refusal for a pending request.
// The decision is cached for the session; with remember set, the file's
// directory additionally gets a persistent always-block policy.
func (m *Manager) DenyPermission(ctx context.Context, req *UploadPermissionRequest, remember bool) error {
	return m.resolvePending(ctx, req, DecisionDenied, PolicyAlwaysBlock, remember)
}

func (m *Manager) resolvePending(ctx context.Context, req *UploadPermissionRequest, decision Decision, mode PolicyMode, remember bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if remember {
		now := m.now()
		policy := &DirectoryPolicy{
			DirectoryID:   req.DirectoryID,
			DirectoryPath: filepath.Dir(req.FilePath),
			Policy:        mode,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if existing, err := m.store.Get(ctx, req.DirectoryID); err != nil {
			return err
		} else if existing != nil {
			policy.CreatedAt = existing.CreatedAt
		}
		if err := m.store.Set(ctx, policy); err != nil {
			return err
		}
	}

	m.cache.put(req.FileID, req.DirectoryID, decision)
	m.logger.Info("user decision recorded",
		"file_id", req.FileID,
		"directory_id", req.DirectoryID,
		"decision", decision,
		"remember", remember)
	return nil
}

// SetDirectoryPolicy creates or replaces the policy for a directory and
// invalidates session cache entries for that directory so the new policy
// takes effect on the next check.
func (m *Manager) SetDirectoryPolicy(ctx context.Context, directoryID, directoryPath string, mode PolicyMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPolicyMode, mode)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	policy := &DirectoryPolicy{
		DirectoryID:   directoryID,
		DirectoryPath: directoryPath,
		Policy:        mode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if existing, err := m.store.Get(ctx, directoryID); err != nil {
		return err
	} else if existing != nil {
		policy.CreatedAt = existing.CreatedAt
	}
	if err := m.store.Set(ctx, policy); err != nil {
		return err
	}

	dropped := m.cache.invalidateDirectory(directoryID)
	m.logger.Info("directory policy set",
		"directory_id", directoryID,
		"policy", mode,
		"cache_entries_invalidated", dropped)
	return nil
}

// GetDirectoryPolicy returns the policy for a directory, or nil when none
// is set.
func (m *Manager) GetDirectoryPolicy(ctx context.Context, directoryID string) (*DirectoryPolicy, error) {
	return m.store.Get(ctx, directoryID)
}

// RemoveDirectoryPolicy deletes the policy for a directory and invalidates
// its session cache entries. Returns false when no policy was set.
func (m *Manager) RemoveDirectoryPolicy(ctx context.Context, directoryID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed, err := m.store.Remove(ctx, directoryID)
	if err != nil {
		return false, err
	}
	if removed {
		m.cache.invalidateDirectory(directoryID)
		m.logger.Info("directory policy removed", "directory_id", directoryID)
	}
	return removed, nil
}

// ListDirectoryPolicies returns all directory policies ordered by
// directory ID.
func (m *Manager) ListDirectoryPolicies(ctx context.Context) ([]*DirectoryPolicy, error) {
	return m.store.List(ctx)
}

// ClearSessionCache drops all cached decisions. Persistent policies and
// the audit log are unaffected.
func (m *Manager) ClearSessionCache() {
	m.cache.clear()
	m.logger.Info("session cache cleared")
}

// SessionCacheSize returns the number of cached decisions.
func (m *Manager) SessionCacheSize() int {
	return m.cache.size()
}

// InvalidateDirectoryCache drops cached decisions for one directory.
// Used by the policy file watcher when a directory's policy changes
// outside the manager.
func (m *Manager) InvalidateDirectoryCache(directoryID string) int {
	return m.cache.invalidateDirectory(directoryID)
}

// Statistics folds the audit log into aggregate counters. Derived on
// demand so the counters always agree with the log, including after
// retention pruning. The fold holds the manager lock so no check can land
// between counts and leave them mutually inconsistent.
func (m *Manager) Statistics(ctx context.Context) (*Statistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sensitive := true
	stats := &Statistics{}
	folds := []struct {
		dst    *int64
		filter audit.Filter
	}{
		{&stats.TotalRequests, audit.Filter{}},
		{&stats.Allowed, audit.Filter{Decision: string(DecisionAllowed)}},
		{&stats.Denied, audit.Filter{Decision: string(DecisionDenied)}},
		{&stats.CloudUploads, audit.Filter{Destination: string(DestinationCloud)}},
		{&stats.LocalOnly, audit.Filter{Destination: string(DestinationLocal)}},
		{&stats.SensitiveDataDetected, audit.Filter{Sensitive: &sensitive}},
	}
	for _, f := range folds {
		n, err := m.auditor.Count(ctx, f.filter)
		if err != nil {
			return nil, err
		}
		*f.dst = n
	}
	return stats, nil
}

// AuditLogs returns audit entries matching the filter in insertion order.
func (m *Manager) AuditLogs(ctx context.Context, filter audit.Filter) ([]*audit.Entry, error) {
	return m.auditor.Query(ctx, filter)
}
