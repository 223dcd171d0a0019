package lockfile

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	lock, err := Acquire(path, time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if lock.Path() != path {
		t.Errorf("Path() = %q, want %q", lock.Path(), path)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("Release: %v", err)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	lock, err := Acquire(path, time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("second Release: %v", err)
	}
}

func TestReacquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	lock, err := Acquire(path, time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	lock2, err := Acquire(path, time.Second)
	if err != nil {
		t.Fatalf("re-Acquire: %v", err)
	}
	defer func() { _ = lock2.Release() }()
}

func TestStaleLockFileDoesNotBlock(t *testing.T) {
	// The file existing is irrelevant; only the OS-level lock matters.
	path := filepath.Join(t.TempDir(), ".lock")

	lock, err := Acquire(path, time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	// Lock file still exists on disk, but a fresh acquisition succeeds.
	lock2, err := Acquire(path, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Acquire with stale file present: %v", err)
	}
	_ = lock2.Release()
}

func TestCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", ".lock")

	lock, err := Acquire(path, time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	_ = lock.Release()
}

func TestWithReleasesOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	sentinel := errors.New("boom")

	if err := With(path, time.Second, func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("With returned %v, want sentinel", err)
	}

	// The lock must be free again despite the error.
	lock, err := Acquire(path, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("lock leaked after With error: %v", err)
	}
	_ = lock.Release()
}

func TestAcquireTimeout(t *testing.T) {
	// flock treats independently opened descriptors as independent lock
	// owners, so holding the lock on one fd blocks acquisition on another.
	path := filepath.Join(t.TempDir(), ".lock")

	held, err := Acquire(path, time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer func() { _ = held.Release() }()

	start := time.Now()
	_, err = Acquire(path, 100*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout while lock is held")
	}
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("error = %v, want ErrLockTimeout", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("timed out after %s, want at least the 100ms timeout", elapsed)
	}
}
