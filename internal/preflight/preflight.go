// Package preflight runs checks before batch work starts.
package preflight

import (
	"fmt"

	"golang.org/x/sys/unix"

	"bobbin/internal/services"
)

const bytesPerGiB = 1 << 30

// statfs is swappable for tests.
var statfs = unix.Statfs

// FreeBytes reports the free space available to unprivileged users on the
// filesystem containing path.
func FreeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// CheckFreeSpace fails when the filesystem containing path has less than
// minGiB gibibytes available. A zero or negative minimum disables the check.
func CheckFreeSpace(path string, minGiB int) error {
	if minGiB <= 0 {
		return nil
	}
	free, err := FreeBytes(path)
	if err != nil {
		return services.Wrap(services.ErrTransient, "preflight", "disk-space", "query free space", err)
	}
	required := uint64(minGiB) * bytesPerGiB
	if free < required {
		return services.Wrap(services.ErrValidation, "preflight", "disk-space",
			fmt.Sprintf("%.1f GiB free on %s, need at least %d GiB", float64(free)/bytesPerGiB, path, minGiB), nil)
	}
	return nil
}
