package batch

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrLockTimeout is returned when another writer keeps a file locked.
var ErrLockTimeout = errors.New("timeout waiting for lock")

type fileLock struct {
	file *os.File
	path string
}

// AtomicWriteConfig controls atomic writing behavior.
type AtomicWriteConfig struct {
	UseFsync       bool          // Force fsync before the rename
	LockTimeout    time.Duration // Max time to wait for a file lock
	TempSuffix     string        // Suffix for temporary files
	BackupOriginal bool          // Copy the original to a timestamped .bak first
}

// DefaultAtomicConfig favours speed; backups are opt-in.
func DefaultAtomicConfig() AtomicWriteConfig {
	return AtomicWriteConfig{
		UseFsync:    false,
		LockTimeout: 5 * time.Second,
		TempSuffix:  ".parinfer.tmp",
	}
}

// AtomicWriter replaces files through a temp file and rename, guarded by a
// sibling .lock file holding the writer's PID.
type AtomicWriter struct {
	config AtomicWriteConfig
	locks  map[string]*fileLock
	mu     sync.Mutex
	now    func() time.Time
}

// NewAtomicWriter creates a new atomic writer.
func NewAtomicWriter(config AtomicWriteConfig) *AtomicWriter {
	if config.TempSuffix == "" {
		config.TempSuffix = DefaultAtomicConfig().TempSuffix
	}
	return &AtomicWriter{
		config: config,
		locks:  make(map[string]*fileLock),
		now:    time.Now,
	}
}

// WriteFile atomically replaces path with content, keeping its permissions.
// It returns the backup path when a backup was made.
func (aw *AtomicWriter) WriteFile(path, content string) (string, error) {
	if err := aw.acquireLock(path); err != nil {
		return "", fmt.Errorf("failed to acquire lock for %s: %w", path, err)
	}
	defer aw.releaseLock(path)

	originalInfo, statErr := os.Stat(path)
	var fileMode os.FileMode = 0o644
	if statErr == nil {
		fileMode = originalInfo.Mode().Perm()
	}

	var backupPath string
	if aw.config.BackupOriginal && statErr == nil {
		var err error
		if backupPath, err = aw.createBackup(path, fileMode); err != nil {
			return "", fmt.Errorf("failed to create backup: %w", err)
		}
	}

	tempPath := path + aw.config.TempSuffix
	tempFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tempFile.WriteString(content); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write content: %w", err)
	}

	if aw.config.UseFsync {
		if err := tempFile.Sync(); err != nil {
			tempFile.Close()
			os.Remove(tempPath)
			return "", fmt.Errorf("failed to sync: %w", err)
		}
	}

	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to atomic rename: %w", err)
	}

	return backupPath, nil
}

func (aw *AtomicWriter) acquireLock(path string) error {
	lockPath := path + ".lock"
	deadline := aw.now().Add(aw.config.LockTimeout)

	for {
		aw.mu.Lock()
		if _, held := aw.locks[path]; held {
			aw.mu.Unlock()
		} else {
			lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
			if err == nil {
				fmt.Fprintf(lockFile, "%d\n", os.Getpid())
				aw.locks[path] = &fileLock{file: lockFile, path: lockPath}
				aw.mu.Unlock()
				return nil
			}
			aw.mu.Unlock()

			if !os.IsExist(err) {
				return fmt.Errorf("failed to create lock file: %w", err)
			}
			if isLockStale(lockPath) {
				os.Remove(lockPath)
				continue
			}
		}

		if !aw.now().Before(deadline) {
			return fmt.Errorf("%w on %s", ErrLockTimeout, path)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func (aw *AtomicWriter) releaseLock(path string) {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	aw.releaseLocked(path)
}

// releaseLocked expects aw.mu to be held.
func (aw *AtomicWriter) releaseLocked(path string) {
	lock, ok := aw.locks[path]
	if !ok {
		return
	}
	lock.file.Close()
	os.Remove(lock.path)
	delete(aw.locks, path)
}

// isLockStale reports whether the lock's owner is gone.
func isLockStale(lockPath string) bool {
	content, err := os.ReadFile(lockPath)
	if err != nil {
		return true
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return true
	}
	return !isProcessAlive(pid)
}

func (aw *AtomicWriter) createBackup(path string, mode os.FileMode) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backupPath := fmt.Sprintf("%s.bak.%s", path, aw.now().Format("20060102-150405"))
	if err := os.WriteFile(backupPath, content, mode); err != nil {
		return "", err
	}
	return backupPath, nil
}

// Cleanup removes every lock still held (call on shutdown).
func (aw *AtomicWriter) Cleanup() {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	for path := range aw.locks {
		aw.releaseLocked(path)
	}
}
