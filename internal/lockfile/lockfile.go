// Package lockfile guards the state directory against concurrent service
// instances. The conversation store assumes a single writer per state
// directory, so a second instance must refuse to start.
package lockfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// LockFileName is the lock file created inside the state directory.
const LockFileName = "roomgrabber.lock"

// Lock is a held state-directory lock. The flock is released by the kernel
// when the process exits, so a crash never leaves the directory locked.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes an exclusive non-blocking flock on the lock file inside
// dir, creating the directory if needed. When another live instance holds
// the lock, the returned error names its PID.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("lockfile.Acquire: failed to create state directory: %w", err)
	}
	path := filepath.Join(dir, LockFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("lockfile.Acquire: failed to open lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		holder := holderPID(file)
		file.Close()
		slog.Error("lockfile.Acquire: state directory already locked", "path", path, "holder_pid", holder)
		return nil, &HeldError{Path: path, HolderPID: holder, cause: err}
	}

	// Record our PID for the HeldError of whoever loses the race next.
	file.Truncate(0)
	fmt.Fprintf(file, "%d\n", os.Getpid())
	file.Sync()

	slog.Info("lockfile.Acquire: state directory locked", "path", path, "pid", os.Getpid())
	return &Lock{file: file, path: path}, nil
}

// Release drops the flock and removes the lock file. Safe to call twice.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
	l.file = nil
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		slog.Warn("lockfile.Release: failed to remove lock file", "error", err, "path", l.path)
	}
	slog.Info("lockfile.Release: state directory unlocked", "path", l.path)
	return nil
}

// HeldError reports a lock held by another instance.
type HeldError struct {
	Path      string
	HolderPID int
	cause     error
}

func (e *HeldError) Error() string {
	if e.HolderPID > 0 {
		return fmt.Sprintf("state directory is in use by another instance (pid %d, lock %s)", e.HolderPID, e.Path)
	}
	return fmt.Sprintf("state directory is in use by another instance (lock %s)", e.Path)
}

func (e *HeldError) Unwrap() error { return e.cause }

// holderPID reads the PID the holding instance wrote, or 0.
func holderPID(file *os.File) int {
	data := make([]byte, 32)
	n, err := file.ReadAt(data, 0)
	if err != nil && n == 0 {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data[:n])))
	if err != nil {
		return 0
	}
	return pid
}
