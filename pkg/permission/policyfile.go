package permission

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// policyFile is the on-disk shape of a directory policy list. The chat
// client's settings UI writes this file; the manager treats it as the
// source of truth for user-managed policies.
type policyFile struct {
	Policies []*DirectoryPolicy `yaml:"policies"`
}

// LoadPoliciesFromFile parses a YAML policy file and validates every
// entry. Missing files are not an error: the result is an empty list so
// a fresh install starts without policies.
func LoadPoliciesFromFile(path string) ([]*DirectoryPolicy, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %q: %w", path, err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %q: %w", path, err)
	}

	for i, policy := range file.Policies {
		if policy.DirectoryID == "" {
			return nil, fmt.Errorf("policy file %q: entry %d has empty directory_id", path, i)
		}
		if !policy.Policy.Valid() {
			return nil, fmt.Errorf("policy file %q: entry %d: %w: %q", path, i, ErrInvalidPolicyMode, policy.Policy)
		}
	}
	return file.Policies, nil
}

// LoadPolicyFile replaces the manager's directory policies with the
// contents of the YAML file at path. Directories whose policy changed or
// disappeared have their session cache entries invalidated. Returns the
// number of policies loaded.
func (m *Manager) LoadPolicyFile(ctx context.Context, path string) (int, error) {
	policies, err := LoadPoliciesFromFile(path)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.store.List(ctx)
	if err != nil {
		return 0, err
	}

	loaded := make(map[string]PolicyMode, len(policies))
	for _, policy := range policies {
		loaded[policy.DirectoryID] = policy.Policy
	}

	// Drop policies that vanished from the file.
	for _, old := range existing {
		if _, ok := loaded[old.DirectoryID]; ok {
			continue
		}
		if _, err := m.store.Remove(ctx, old.DirectoryID); err != nil {
			return 0, err
		}
		m.cache.invalidateDirectory(old.DirectoryID)
	}

	previous := make(map[string]PolicyMode, len(existing))
	for _, old := range existing {
		previous[old.DirectoryID] = old.Policy
	}

	now := m.now()
	for _, policy := range policies {
		stored := *policy
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
		if stored.UpdatedAt.IsZero() {
			stored.UpdatedAt = now
		}
		if err := m.store.Set(ctx, &stored); err != nil {
			return 0, err
		}
		if mode, ok := previous[policy.DirectoryID]; !ok || mode != policy.Policy {
			m.cache.invalidateDirectory(policy.DirectoryID)
		}
	}

	m.logger.Info("policy file loaded", "path", path, "policies", len(policies))
	return len(policies), nil
}
