// pkg/fileops/space.go - free space checks for archive destinations.

package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

// ErrInsufficientSpace is returned when an archive destination cannot hold
// the bytes about to be moved.
var ErrInsufficientSpace = errors.New("insufficient free space")

// FreeSpace returns the free bytes on the volume holding path. When path
// does not exist yet the nearest existing parent is used.
func FreeSpace(path string) (uint64, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}
	for {
		if _, err := os.Stat(dir); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return 0, fmt.Errorf("no existing parent for %s", path)
		}
		dir = parent
	}
	usage, err := disk.Usage(dir)
	if err != nil {
		return 0, fmt.Errorf("disk usage for %s: %w", dir, err)
	}
	return usage.Free, nil
}

// CheckFreeSpace fails with ErrInsufficientSpace when path has less than
// need bytes free.
func CheckFreeSpace(path string, need uint64) error {
	free, err := FreeSpace(path)
	if err != nil {
		return err
	}
	if free < need {
		return fmt.Errorf("%w at %s: need %d bytes, have %d", ErrInsufficientSpace, path, need, free)
	}
	return nil
}
