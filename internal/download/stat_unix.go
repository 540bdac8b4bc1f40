//go:build unix

package download

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// statBlockSize is the unit of Stat_t.Blocks, fixed at 512 bytes by POSIX
// regardless of the filesystem's actual block size.
const statBlockSize = 512

// UnixStater implements Stater with stat(2).
type UnixStater struct{}

// NewUnixStater creates the stat-based filesystem status primitive.
func NewUnixStater() *UnixStater {
	return &UnixStater{}
}

// ReportedSize returns st_size, the declared length of the file.
func (s *UnixStater) ReportedSize(path string) (int64, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return st.Size, nil
}

// AllocatedBytes returns st_blocks * 512, the bytes resident on disk.
// For a sparse placeholder this lags st_size until the transfer finishes.
func (s *UnixStater) AllocatedBytes(path string) (int64, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return st.Blocks * statBlockSize, nil
}
