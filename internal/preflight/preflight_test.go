package preflight

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"

	"bobbin/internal/services"
)

func withStatfs(t *testing.T, fn func(path string, stat *unix.Statfs_t) error) {
	t.Helper()
	original := statfs
	statfs = fn
	t.Cleanup(func() { statfs = original })
}

func TestCheckFreeSpaceDisabled(t *testing.T) {
	withStatfs(t, func(path string, stat *unix.Statfs_t) error {
		t.Fatal("statfs should not be called when check disabled")
		return nil
	})
	if err := CheckFreeSpace("/tmp", 0); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestCheckFreeSpaceSufficient(t *testing.T) {
	withStatfs(t, func(path string, stat *unix.Statfs_t) error {
		stat.Bavail = 10 << 30 / 4096
		stat.Bsize = 4096
		return nil
	})
	if err := CheckFreeSpace("/data", 5); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestCheckFreeSpaceInsufficient(t *testing.T) {
	withStatfs(t, func(path string, stat *unix.Statfs_t) error {
		stat.Bavail = 1 << 30 / 4096
		stat.Bsize = 4096
		return nil
	})
	err := CheckFreeSpace("/data", 5)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckFreeSpaceStatfsFailure(t *testing.T) {
	withStatfs(t, func(path string, stat *unix.Statfs_t) error {
		return errors.New("no such file or directory")
	})
	if err := CheckFreeSpace("/missing", 1); !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}
