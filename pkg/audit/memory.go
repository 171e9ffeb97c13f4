package audit

import (
	"context"
	"sync"
)

// MemoryStorage implements Storage with an in-memory slice. Insertion order
// is the slice order. Suitable for tests and single-session use where the
// log does not need to survive a restart.
type MemoryStorage struct {
	entries []*Entry
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory audit log.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Append adds an entry to the end of the log.
func (s *MemoryStorage) Append(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to keep the log immutable from the caller's view.
	entryCopy := *entry
	s.entries = append(s.entries, &entryCopy)

	return nil
}

// Query returns matching entries in insertion order.
func (s *MemoryStorage) Query(ctx context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*Entry{}
	skipped := 0
	for _, entry := range s.entries {
		if !matchesFilter(entry, filter) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}

		entryCopy := *entry
		results = append(results, &entryCopy)
	}

	return results, nil
}

// Count returns the number of matching entries.
func (s *MemoryStorage) Count(ctx context.Context, filter Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, entry := range s.entries {
		if matchesFilter(entry, filter) {
			count++
		}
	}

	return count, nil
}

// Delete removes matching entries, oldest first when the filter carries a
// limit, and returns the number removed.
func (s *MemoryStorage) Delete(ctx context.Context, filter Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	kept := s.entries[:0]
	for _, entry := range s.entries {
		remove := matchesFilter(entry, filter)
		if remove && filter.Limit > 0 && deleted >= int64(filter.Limit) {
			remove = false
		}
		if remove {
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	s.entries = kept

	return deleted, nil
}

// Close releases the log.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return nil
}

// Size returns the number of entries in the log (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// matchesFilter checks an entry against a conjunctive filter. The Offset
// and Limit fields are handled by the caller.
func matchesFilter(entry *Entry, filter Filter) bool {
	if filter.FileID != "" && entry.FileID != filter.FileID {
		return false
	}
	if filter.DirectoryID != "" && entry.DirectoryID != filter.DirectoryID {
		return false
	}
	if filter.Destination != "" && entry.Destination != filter.Destination {
		return false
	}
	if filter.Decision != "" && entry.Decision != filter.Decision {
		return false
	}
	if filter.Sensitive != nil && entry.SensitiveData != *filter.Sensitive {
		return false
	}
	if filter.Before != nil && !entry.Timestamp.Before(*filter.Before) {
		return false
	}
	return true
}
