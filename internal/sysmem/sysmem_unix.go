//go:build unix

package sysmem

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Reserve obtains a zeroed anonymous mapping of exactly n bytes.
func Reserve(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sysmem: bad reservation size %d", n)
	}
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("sysmem: reserve %d bytes: %w", n, err)
	}
	return data, nil
}

// Release returns a region obtained from Reserve to the OS.
func Release(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	err := unix.Munmap(data)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-release as no-op for callers.
		return nil
	}
	return err
}
