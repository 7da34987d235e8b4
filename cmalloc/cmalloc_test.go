//go:build cgo

package cmalloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/mem"
)

// withLibcFacade routes the facade through the libc backend for one test.
func withLibcFacade(t *testing.T) {
	t.Helper()
	b, err := New()
	require.NoError(t, err)
	prev := mem.CurrentBackend()
	mem.SetBackend(b)
	t.Cleanup(func() { mem.SetBackend(prev) })
}

// Test_Libc_RoundTrip tests allocate, write, free against the real C heap.
func Test_Libc_RoundTrip(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	p := b.Alloc(128)
	require.NotNil(t, p)

	s := unsafe.Slice((*byte)(p), 128)
	for i := range s {
		s[i] = byte(i)
	}
	for i := range s {
		require.Equal(t, byte(i), s[i])
	}
	b.Free(p)
}

// Test_Libc_AllocZero tests calloc's zero guarantee.
func Test_Libc_AllocZero(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	p := b.AllocZero(256)
	require.NotNil(t, p)
	for i, v := range unsafe.Slice((*byte)(p), 256) {
		require.Zero(t, v, "byte %d", i)
	}
	b.Free(p)
}

// Test_Libc_ZeroSizeDistinct tests that empty requests still produce
// distinct valid pointers, not NULL.
func Test_Libc_ZeroSizeDistinct(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	p := b.Alloc(0)
	q := b.Alloc(0)
	require.NotNil(t, p)
	require.NotNil(t, q)
	require.NotEqual(t, p, q)
	b.Free(p)
	b.Free(q)
}

// Test_Libc_ReallocPreservesPrefix tests grow-with-copy through realloc.
func Test_Libc_ReallocPreservesPrefix(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	p := b.Alloc(64)
	require.NotNil(t, p)
	s := unsafe.Slice((*byte)(p), 64)
	for i := range s {
		s[i] = 0xCD
	}

	q := b.Realloc(p, 4096)
	require.NotNil(t, q)
	for i, v := range unsafe.Slice((*byte)(q), 64) {
		require.Equal(t, byte(0xCD), v, "byte %d lost in resize", i)
	}
	b.Free(q)
}

// Test_Libc_ReallocNil tests realloc-from-nothing.
func Test_Libc_ReallocNil(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	p := b.Realloc(nil, 32)
	require.NotNil(t, p)
	b.Free(p)
}

// Test_Libc_FreeNil tests that freeing nil is harmless.
func Test_Libc_FreeNil(t *testing.T) {
	b, err := New()
	require.NoError(t, err)
	b.Free(nil)
}

// Test_Libc_FacadeIntegration tests the backend behind the whole substrate
// stack: facade, typed helpers, arrays, scoped handles.
func Test_Libc_FacadeIntegration(t *testing.T) {
	withLibcFacade(t)

	type point struct{ x, y int64 }

	p := mem.NewFrom(point{x: 3, y: 4})
	require.NotNil(t, p)
	require.EqualValues(t, 3, p.x)

	s := mem.NewSliceZero[uint64](10)
	require.NotNil(t, s)
	require.Len(t, s, 10)
	s[9] = 99

	h := mem.OwnNew(p)
	h.Release()
	mem.FreeSlice(s)
}

// Test_Libc_OverflowStillRejected tests that the facade's overflow guards
// run before the C allocator sees anything.
func Test_Libc_OverflowStillRejected(t *testing.T) {
	withLibcFacade(t)

	require.Nil(t, mem.NewSlice[uint64](int(^uintptr(0)/4)))
	require.Nil(t, mem.Calloc(^uintptr(0)/2, 16))
}
