package permission

import (
	"context"
	"time"

	"cleargate-hq/cleargate/pkg/detector"
)

// Destination is where content is headed when a permission check runs.
type Destination string

const (
	// DestinationLocal means the content is bound for local inference and
	// never leaves the device.
	DestinationLocal Destination = "local"
	// DestinationCloud means the content would be uploaded to a cloud
	// model provider.
	DestinationCloud Destination = "cloud"
)

// Decision is the outcome of a permission check.
type Decision string

const (
	DecisionAllowed Decision = "allowed"
	DecisionDenied  Decision = "denied"
	// DecisionPending means the caller must obtain explicit user consent
	// and report it back via GrantPermission or DenyPermission.
	DecisionPending Decision = "pending"
)

// PolicyMode is a user-set default decision for a directory.
type PolicyMode string

const (
	PolicyAlwaysAllow PolicyMode = "always-allow"
	PolicyAlwaysBlock PolicyMode = "always-block"
	PolicyAskEachTime PolicyMode = "ask-each-time"
)

// Valid reports whether the mode is one of the known policy modes.
func (p PolicyMode) Valid() bool {
	switch p {
	case PolicyAlwaysAllow, PolicyAlwaysBlock, PolicyAskEachTime:
		return true
	}
	return false
}

// UploadPermissionRequest carries everything the manager needs to decide
// one upload. It is a value object and is never mutated after creation.
type UploadPermissionRequest struct {
	// FileID identifies the file within the chat client.
	FileID string `json:"file_id"`

	// FilePath is the file's path on disk, used to derive the directory
	// path when a policy is remembered.
	FilePath string `json:"file_path"`

	// DirectoryID identifies the directory the file belongs to.
	DirectoryID string `json:"directory_id"`

	// Destination is where the content is headed.
	Destination Destination `json:"destination"`

	// Provider is the model provider name (e.g. "openai", "anthropic").
	Provider string `json:"provider"`

	// ScanResult is the detector's verdict for the content.
	ScanResult detector.ScanResult `json:"scan_result"`

	// Timestamp is when the request was created.
	Timestamp time.Time `json:"timestamp"`
}

// PermissionResponse is the manager's answer to a permission check.
type PermissionResponse struct {
	// Decision is the outcome.
	Decision Decision `json:"decision"`

	// RequiresUserConsent is true when the caller must show a consent
	// dialog before proceeding.
	RequiresUserConsent bool `json:"requires_user_consent"`

	// Reason explains the decision.
	Reason string `json:"reason"`

	// Policy echoes the directory policy that produced the decision,
	// empty when no policy applied.
	Policy PolicyMode `json:"policy,omitempty"`

	// FromCache is true when the decision came from the session cache.
	FromCache bool `json:"from_cache"`
}

// DirectoryPolicy is a persisted, user-set default decision scoped to a
// directory identity. Keyed uniquely by DirectoryID.
type DirectoryPolicy struct {
	DirectoryID   string     `json:"directory_id" yaml:"directory_id"`
	DirectoryPath string     `json:"directory_path" yaml:"directory_path"`
	Policy        PolicyMode `json:"policy" yaml:"policy"`
	CreatedAt     time.Time  `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at" yaml:"updated_at,omitempty"`
}

// Statistics are running counters derived from the audit log.
type Statistics struct {
	TotalRequests         int64 `json:"total_requests"`
	Allowed               int64 `json:"allowed"`
	Denied                int64 `json:"denied"`
	CloudUploads          int64 `json:"cloud_uploads"`
	LocalOnly             int64 `json:"local_only"`
	SensitiveDataDetected int64 `json:"sensitive_data_detected"`
}

// PolicyStore persists directory policies. Implementations must be safe
// for concurrent use.
type PolicyStore interface {
	// Get returns the policy for a directory, or nil if none is set.
	Get(ctx context.Context, directoryID string) (*DirectoryPolicy, error)

	// Set creates or replaces the policy for a directory.
	Set(ctx context.Context, policy *DirectoryPolicy) error

	// Remove deletes the policy for a directory. Returns false if no
	// policy was set.
	Remove(ctx context.Context, directoryID string) (bool, error)

	// List returns all policies ordered by directory ID.
	List(ctx context.Context) ([]*DirectoryPolicy, error)

	// Close releases resources held by the store.
	Close() error
}
