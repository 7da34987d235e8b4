package mem

import "unsafe"

// Backend is the four-operation contract a backing allocator provides. The
// facade routes every request through the active Backend, so swapping one in
// is invisible to typed helpers, array allocation, and scoped handles.
//
// Implementations:
//   - pageAlloc: OS-reserved slabs with per-class free lists (default)
//   - goHeap: pinned Go-heap blocks (default under the goheap build tag)
//   - CountingBackend: wrapper that tracks live blocks for leak detection
type Backend interface {
	// Alloc returns a block of at least size bytes, nil on failure.
	// The payload may contain stale data.
	Alloc(size uintptr) unsafe.Pointer

	// AllocZero returns a block whose first size bytes are zero, nil on
	// failure.
	AllocZero(size uintptr) unsafe.Pointer

	// Realloc resizes the block at p, preserving the payload prefix.
	// A nil p acts like Alloc. On failure the original block is untouched.
	Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer

	// Free returns the block at p. p must come from this backend.
	Free(p unsafe.Pointer)
}

var activeBackend Backend = defaultBackend()

// SetBackend routes all subsequent facade calls through b. Swap backends at
// startup, before blocks from the previous backend are in circulation; the
// facade does not synchronize the switch against in-flight allocations.
func SetBackend(b Backend) {
	if b == nil {
		panic("mem: SetBackend(nil)")
	}
	activeBackend = b
}

// CurrentBackend returns the backend the facade delegates to.
func CurrentBackend() Backend {
	return activeBackend
}
