package mem

import (
	"testing"
	"unsafe"
)

// ============================================================================
// Test Helpers
// ============================================================================

// withBackend routes the facade through b for the duration of the test.
func withBackend(t testing.TB, b Backend) {
	t.Helper()
	prev := CurrentBackend()
	SetBackend(b)
	t.Cleanup(func() { SetBackend(prev) })
}

// withCounting routes the facade through a counting wrapper over a fresh
// page allocator and returns the wrapper for leak assertions.
func withCounting(t testing.TB) *CountingBackend {
	t.Helper()
	cb := NewCounting(newPageAlloc())
	withBackend(t, cb)
	return cb
}

// fillBytes writes b over the first n bytes at p.
func fillBytes(t testing.TB, p unsafe.Pointer, n uintptr, b byte) {
	t.Helper()
	s := unsafe.Slice((*byte)(p), n)
	for i := range s {
		s[i] = b
	}
}

// requireBytes fails the test unless the first n bytes at p all equal b.
func requireBytes(t testing.TB, p unsafe.Pointer, n uintptr, b byte) {
	t.Helper()
	s := unsafe.Slice((*byte)(p), n)
	for i, got := range s {
		if got != b {
			t.Fatalf("byte %d: expected %#x, got %#x", i, b, got)
		}
	}
}

// nilBackend refuses every request. Exercises caller-side failure paths
// without the fault injector.
type nilBackend struct{}

func (nilBackend) Alloc(uintptr) unsafe.Pointer                   { return nil }
func (nilBackend) AllocZero(uintptr) unsafe.Pointer               { return nil }
func (nilBackend) Realloc(unsafe.Pointer, uintptr) unsafe.Pointer { return nil }
func (nilBackend) Free(unsafe.Pointer)                            {}
