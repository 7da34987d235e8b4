package mem

import "unsafe"

// NewSlice allocates substrate storage for n elements of T and returns it as
// a slice of length and capacity n. The elements may contain stale data; use
// NewSliceZero for zeroed storage.
//
// Returns nil when n is negative, when n*sizeof(T) would wrap the address
// space, or when memory is exhausted. The overflow test runs before any
// allocation, so a rejected request never reaches the backend. A count of
// zero returns an empty non-nil slice without allocating.
func NewSlice[T any](n int) []T {
	checkNoManagedRefs[T]()
	if n < 0 {
		return nil
	}
	if n == 0 {
		return []T{}
	}
	var zero T
	esize := unsafe.Sizeof(zero)
	if esize != 0 && uintptr(n) > ^uintptr(0)/esize {
		return nil
	}
	p := Alloc(uintptr(n) * esize)
	if p == nil {
		return nil
	}
	return unsafe.Slice((*T)(p), n)
}

// NewSliceZero is NewSlice with zeroed elements.
func NewSliceZero[T any](n int) []T {
	checkNoManagedRefs[T]()
	if n < 0 {
		return nil
	}
	if n == 0 {
		return []T{}
	}
	var zero T
	esize := unsafe.Sizeof(zero)
	if esize != 0 && uintptr(n) > ^uintptr(0)/esize {
		return nil
	}
	p := AllocZero(uintptr(n) * esize)
	if p == nil {
		return nil
	}
	return unsafe.Slice((*T)(p), n)
}

// FreeSlice releases storage obtained from NewSlice or NewSliceZero. s must
// be the original slice, not a re-slice with a shifted base. Empty slices,
// including the nil slice, are a no-op.
func FreeSlice[T any](s []T) {
	if cap(s) == 0 {
		return
	}
	Free(unsafe.Pointer(unsafe.SliceData(s)))
}
