package artifact

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewRequestDirAndCleanup(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "downloads"), nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	dir, err := store.NewRequestDir("req-1234")
	if err != nil {
		t.Fatalf("NewRequestDir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "abc.mp3"), []byte("mp3"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	store.Cleanup(dir)
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("request dir should be gone, stat err = %v", err)
	}

	// Second cleanup of the same path must be a harmless no-op.
	store.Cleanup(dir)
}

func TestCleanupRefusesPathsOutsideRoot(t *testing.T) {
	outside := t.TempDir()
	victim := filepath.Join(outside, "keep.txt")
	if err := os.WriteFile(victim, []byte("data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	store.Cleanup(outside)
	if _, err := os.Stat(victim); err != nil {
		t.Fatalf("file outside root must survive cleanup: %v", err)
	}

	store.Cleanup(store.Root())
	if _, err := os.Stat(store.Root()); err != nil {
		t.Fatalf("root itself must survive cleanup: %v", err)
	}
}

func TestSweepLeftovers(t *testing.T) {
	root := filepath.Join(t.TempDir(), "downloads")
	store, err := NewStore(root, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	for _, name := range []string{"stale-1", "stale-2"} {
		if err := os.MkdirAll(filepath.Join(root, name), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	if removed := store.SweepLeftovers(); removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("root not empty after sweep: %d entries", len(entries))
	}
}
