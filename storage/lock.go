package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrLocked is returned when another live process holds the lock.
var ErrLocked = errors.New("locked by another process")

// InstanceLock is a PID file that keeps two terminal UIs from driving the
// same data directory.
type InstanceLock struct {
	path string
}

func NewInstanceLock(dataDir string) *InstanceLock {
	return &InstanceLock{path: filepath.Join(dataDir, "webassist.lock")}
}

// Acquire writes our PID. A lock left by a dead process is taken over.
func (l *InstanceLock) Acquire() error {
	locked, pid, err := l.Check()
	if err != nil {
		return err
	}
	if locked && pid != os.Getpid() {
		return fmt.Errorf("%w (pid %d)", ErrLocked, pid)
	}
	return os.WriteFile(l.path, []byte(strconv.Itoa(os.Getpid())), 0600)
}

func (l *InstanceLock) Release() error {
	err := os.Remove(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Check reports whether a live process holds the lock. Unreadable or stale
// lock files are removed.
func (l *InstanceLock) Check() (bool, int, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to read lock file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || !processAlive(pid) {
		_ = os.Remove(l.path)
		return false, 0, nil
	}
	return true, pid, nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// signal 0 only checks for existence
	return p.Signal(syscall.Signal(0)) == nil
}
