//go:build linux || darwin

package mmfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func mapFile(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap failed: %w", err)
	}

	// Field data is read by offset, rarely in file order.
	_ = unix.Madvise(data, unix.MADV_RANDOM)

	return data, unix.Munmap, nil
}
