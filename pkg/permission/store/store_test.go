package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cleargate-hq/cleargate/pkg/permission"
)

// backends returns one fresh instance of every PolicyStore implementation
// so each test runs against all of them.
func backends(t *testing.T) map[string]permission.PolicyStore {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "policies.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]permission.PolicyStore{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func testPolicy(directoryID string, mode permission.PolicyMode) *permission.DirectoryPolicy {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &permission.DirectoryPolicy{
		DirectoryID:   directoryID,
		DirectoryPath: "/home/user/" + directoryID,
		Policy:        mode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestPolicyStore_GetMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			policy, err := s.Get(context.Background(), "absent")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if policy != nil {
				t.Errorf("Get() = %+v, want nil for unset directory", policy)
			}
		})
	}
}

func TestPolicyStore_SetAndGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := testPolicy("dir-1", permission.PolicyAlwaysAllow)
			if err := s.Set(ctx, want); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			got, err := s.Get(ctx, "dir-1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got == nil {
				t.Fatal("Get() = nil, want policy")
			}
			if got.DirectoryID != want.DirectoryID || got.Policy != want.Policy || got.DirectoryPath != want.DirectoryPath {
				t.Errorf("Get() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestPolicyStore_SetReplaces(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Set(ctx, testPolicy("dir-1", permission.PolicyAlwaysAllow)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := s.Set(ctx, testPolicy("dir-1", permission.PolicyAlwaysBlock)); err != nil {
				t.Fatalf("Set() replace error = %v", err)
			}

			got, err := s.Get(ctx, "dir-1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Policy != permission.PolicyAlwaysBlock {
				t.Errorf("Get().Policy = %q, want %q after replace", got.Policy, permission.PolicyAlwaysBlock)
			}

			policies, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(policies) != 1 {
				t.Errorf("List() returned %d policies, want 1 after replace", len(policies))
			}
		})
	}
}

func TestPolicyStore_Remove(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Set(ctx, testPolicy("dir-1", permission.PolicyAskEachTime)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			removed, err := s.Remove(ctx, "dir-1")
			if err != nil {
				t.Fatalf("Remove() error = %v", err)
			}
			if !removed {
				t.Error("Remove() = false, want true for existing policy")
			}

			removed, err = s.Remove(ctx, "dir-1")
			if err != nil {
				t.Fatalf("Remove() second call error = %v", err)
			}
			if removed {
				t.Error("Remove() = true, want false for already removed policy")
			}

			policy, err := s.Get(ctx, "dir-1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if policy != nil {
				t.Errorf("Get() = %+v after Remove(), want nil", policy)
			}
		})
	}
}

func TestPolicyStore_ListOrdered(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, id := range []string{"dir-c", "dir-a", "dir-b"} {
				if err := s.Set(ctx, testPolicy(id, permission.PolicyAlwaysAllow)); err != nil {
					t.Fatalf("Set(%q) error = %v", id, err)
				}
			}

			policies, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(policies) != 3 {
				t.Fatalf("List() returned %d policies, want 3", len(policies))
			}
			for i, want := range []string{"dir-a", "dir-b", "dir-c"} {
				if policies[i].DirectoryID != want {
					t.Errorf("List()[%d].DirectoryID = %q, want %q", i, policies[i].DirectoryID, want)
				}
			}
		})
	}
}

func TestMemoryStore_CopyOnRead(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Set(ctx, testPolicy("dir-1", permission.PolicyAlwaysAllow)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := s.Get(ctx, "dir-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got.Policy = permission.PolicyAlwaysBlock

	again, err := s.Get(ctx, "dir-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again.Policy != permission.PolicyAlwaysAllow {
		t.Errorf("mutating a returned policy leaked into the store: got %q", again.Policy)
	}
}

func TestSQLiteStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "policies.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := s.Set(ctx, testPolicy("dir-1", permission.PolicyAlwaysBlock)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore() reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "dir-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || got.Policy != permission.PolicyAlwaysBlock {
		t.Errorf("Get() after reopen = %+v, want always-block policy", got)
	}
}

func TestNewSQLiteStore_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStore(""); err == nil {
		t.Error("NewSQLiteStore(\"\") error = nil, want error")
	}
}
