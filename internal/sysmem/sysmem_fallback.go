//go:build !unix

// Package sysmem reserves zeroed memory regions directly from the operating
// system where it can, and from the Go heap where it cannot. Callers must
// keep the returned slice reachable for as long as pointers into the region
// are live.
package sysmem

import "fmt"

// Reserve obtains a zeroed region of exactly n bytes.
func Reserve(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sysmem: bad reservation size %d", n)
	}
	return make([]byte, n), nil
}

// Release returns a region obtained from Reserve. Without mapped pages there
// is nothing to hand back; the region is reclaimed once unreferenced.
func Release(data []byte) error {
	return nil
}
