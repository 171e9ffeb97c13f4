package permission_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cleargate-hq/cleargate/pkg/audit"
	"cleargate-hq/cleargate/pkg/permission"
	"cleargate-hq/cleargate/pkg/permission/store"
)

func TestPolicyFileWatcher_ReloadsOnChange(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "policies.yaml")

	initial := `policies:
  - directory_id: dir-a
    directory_path: /home/user/dir-a
    policy: always-allow
`
	if err := os.WriteFile(path, []byte(initial), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	auditor := audit.NewMemoryStorage()
	defer auditor.Close()
	m := permission.NewManager(store.NewMemoryStore(), auditor)

	w, err := permission.NewPolicyFileWatcher(m, path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewPolicyFileWatcher() error = %v", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(watchCtx) }()

	// The initial load happens before the event loop starts; wait for it.
	waitForPolicy(t, m, "dir-a", permission.PolicyAlwaysAllow)

	updated := `policies:
  - directory_id: dir-a
    directory_path: /home/user/dir-a
    policy: always-block
`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("WriteFile() update error = %v", err)
	}

	waitForPolicy(t, m, "dir-a", permission.PolicyAlwaysBlock)

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Watch() returned error = %v", err)
	}
}

// waitForPolicy polls until the directory has the wanted policy mode or
// the deadline expires.
func waitForPolicy(t *testing.T, m *permission.Manager, directoryID string, want permission.PolicyMode) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		policy, err := m.GetDirectoryPolicy(context.Background(), directoryID)
		if err != nil {
			t.Fatalf("GetDirectoryPolicy() error = %v", err)
		}
		if policy != nil && policy.Policy == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("directory %q never reached policy %q", directoryID, want)
}
