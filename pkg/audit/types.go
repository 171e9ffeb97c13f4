package audit

import (
	"context"
	"time"
)

// Entry is one append-only audit record for a permission decision.
type Entry struct {
	// ID is a UUID v4 assigned when the entry is appended.
	ID string `json:"id"`

	// FileID identifies the file the decision was about.
	FileID string `json:"file_id"`

	// DirectoryID identifies the directory the file belongs to.
	DirectoryID string `json:"directory_id"`

	// Destination is where the content was headed ("local" or "cloud").
	Destination string `json:"destination"`

	// Provider is the model provider the content was headed to.
	Provider string `json:"provider"`

	// Decision is the outcome ("allowed", "denied", "pending").
	Decision string `json:"decision"`

	// Reason explains the decision in human-readable form.
	Reason string `json:"reason"`

	// Policy is the directory policy that produced the decision, empty
	// when no policy applied.
	Policy string `json:"policy,omitempty"`

	// SensitiveData records whether the scan result for this request had
	// sensitive data. Used by the statistics fold.
	SensitiveData bool `json:"sensitive_data"`

	// Timestamp is when the decision was made.
	Timestamp time.Time `json:"timestamp"`
}

// Filter selects audit entries. All set fields must match (conjunction);
// the zero value matches everything.
type Filter struct {
	// FileID filters by exact file identity.
	FileID string `json:"file_id,omitempty"`

	// DirectoryID filters by exact directory identity.
	DirectoryID string `json:"directory_id,omitempty"`

	// Destination filters by destination ("local" or "cloud").
	Destination string `json:"destination,omitempty"`

	// Decision filters by decision ("allowed", "denied", "pending").
	Decision string `json:"decision,omitempty"`

	// Sensitive filters by whether sensitive data was detected.
	Sensitive *bool `json:"sensitive,omitempty"`

	// Before selects entries with a timestamp strictly before this time.
	// Used by retention pruning.
	Before *time.Time `json:"before,omitempty"`

	// Limit caps the number of entries returned (or deleted, oldest
	// first). Zero means unlimited.
	Limit int `json:"limit,omitempty"`

	// Offset skips the first N matching entries.
	Offset int `json:"offset,omitempty"`
}

// Storage is the audit log backend. Implementations must be safe for
// concurrent use and must preserve insertion order in Query results.
type Storage interface {
	// Append persists a new entry at the end of the log.
	Append(ctx context.Context, entry *Entry) error

	// Query returns entries matching the filter in insertion order.
	// An empty filter returns the whole log.
	Query(ctx context.Context, filter Filter) ([]*Entry, error)

	// Count returns the number of entries matching the filter.
	Count(ctx context.Context, filter Filter) (int64, error)

	// Delete removes matching entries, oldest first when the filter has a
	// limit, and returns the number removed. Only retention pruning may
	// use this.
	Delete(ctx context.Context, filter Filter) (int64, error)

	// Close releases resources held by the backend.
	Close() error
}
