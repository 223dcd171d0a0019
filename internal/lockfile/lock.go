// Package lockfile provides the process-wide advisory lock that serializes
// the sync/mutate/export cycle across concurrent trc invocations.
//
// Only the OS-level exclusive lock determines contention; a stale lock file
// left behind by a killed process is harmless because its lock died with the
// process.
package lockfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultTimeout bounds how long Acquire waits for a contended lock.
const DefaultTimeout = 5 * time.Second

// pollInterval is the sleep between non-blocking acquisition attempts.
const pollInterval = 10 * time.Millisecond

// ErrLockBusy indicates the lock is currently held by another process.
var ErrLockBusy = errors.New("lock held by another process")

// ErrLockTimeout is returned when the lock could not be acquired within the
// caller's timeout. It is fatal for the invocation and never retried.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// Lock is a held advisory lock. Release it on every exit path.
type Lock struct {
	f    *os.File
	path string
}

// Acquire takes the exclusive lock at path, polling until timeout elapses.
// A non-positive timeout falls back to DefaultTimeout.
func Acquire(path string, timeout time.Duration) (*Lock, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600) // #nosec G304 - path comes from config
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	attempt := func() error {
		err := flockExclusiveNonBlock(f)
		if err == nil || errors.Is(err, ErrLockBusy) {
			return err
		}
		return backoff.Permanent(err)
	}
	err = backoff.Retry(attempt, backoff.WithContext(backoff.NewConstantBackOff(pollInterval), ctx))
	if err == nil {
		return &Lock{f: f, path: path}, nil
	}
	_ = f.Close()
	if errors.Is(err, ErrLockBusy) || errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%s after %s: %w", path, timeout, ErrLockTimeout)
	}
	return nil, fmt.Errorf("locking %s: %w", path, err)
}

// Release drops the lock. Safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := flockUnlock(l.f)
	closeErr := l.f.Close()
	l.f = nil
	if err != nil {
		return fmt.Errorf("unlocking %s: %w", l.path, err)
	}
	return closeErr
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// With runs fn while holding the lock at path, releasing it on every exit
// path including panics.
func With(path string, timeout time.Duration, fn func() error) error {
	lock, err := Acquire(path, timeout)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()
	return fn()
}
