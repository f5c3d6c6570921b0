package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestInstanceLock(t *testing.T) {
	dir := t.TempDir()
	lock := NewInstanceLock(dir)

	if locked, _, err := lock.Check(); err != nil || locked {
		t.Fatalf("Check() on fresh dir = %v, %v", locked, err)
	}
	if err := lock.Acquire(); err != nil {
		t.Fatal(err)
	}
	locked, pid, err := lock.Check()
	if err != nil || !locked || pid != os.Getpid() {
		t.Fatalf("Check() = %v, %d, %v", locked, pid, err)
	}

	// Re-acquiring our own lock is fine.
	if err := lock.Acquire(); err != nil {
		t.Errorf("re-Acquire() error = %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatal(err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
}

func TestInstanceLockHeldByOther(t *testing.T) {
	dir := t.TempDir()
	// The parent of the test binary is alive for the whole test.
	other := os.Getppid()
	if err := os.WriteFile(filepath.Join(dir, "webassist.lock"), []byte(strconv.Itoa(other)), 0600); err != nil {
		t.Fatal(err)
	}

	if err := NewInstanceLock(dir).Acquire(); !errors.Is(err, ErrLocked) {
		t.Errorf("Acquire() error = %v, want ErrLocked", err)
	}
}

func TestInstanceLockStale(t *testing.T) {
	tests := map[string]string{
		"garbage":  "not-a-pid",
		"dead pid": "0",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "webassist.lock")
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatal(err)
			}
			lock := NewInstanceLock(dir)
			if locked, _, err := lock.Check(); err != nil || locked {
				t.Errorf("Check() = %v, %v; want unlocked", locked, err)
			}
			if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
				t.Error("stale lock file not removed")
			}
		})
	}
}
