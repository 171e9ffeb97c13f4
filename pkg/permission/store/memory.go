package store

import (
	"context"
	"sort"
	"sync"

	"cleargate-hq/cleargate/pkg/permission"
)

// MemoryStore is an in-memory PolicyStore. Policies do not survive a
// restart; use SQLiteStore when durability is required.
type MemoryStore struct {
	policies map[string]*permission.DirectoryPolicy
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty in-memory policy store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		policies: make(map[string]*permission.DirectoryPolicy),
	}
}

// Get returns the policy for a directory, or nil if none is set.
func (s *MemoryStore) Get(_ context.Context, directoryID string) (*permission.DirectoryPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	policy, ok := s.policies[directoryID]
	if !ok {
		return nil, nil
	}
	clone := *policy
	return &clone, nil
}

// Set creates or replaces the policy for a directory.
func (s *MemoryStore) Set(_ context.Context, policy *permission.DirectoryPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *policy
	s.policies[policy.DirectoryID] = &clone
	return nil
}

// Remove deletes the policy for a directory.
func (s *MemoryStore) Remove(_ context.Context, directoryID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[directoryID]; !ok {
		return false, nil
	}
	delete(s.policies, directoryID)
	return true, nil
}

// List returns all policies ordered by directory ID.
func (s *MemoryStore) List(_ context.Context) ([]*permission.DirectoryPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	policies := make([]*permission.DirectoryPolicy, 0, len(s.policies))
	for _, policy := range s.policies {
		clone := *policy
		policies = append(policies, &clone)
	}
	sort.Slice(policies, func(i, j int) bool {
		return policies[i].DirectoryID < policies[j].DirectoryID
	})
	return policies, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
