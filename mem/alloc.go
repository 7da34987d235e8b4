package mem

import "unsafe"

// Alloc reserves at least size bytes and returns the payload pointer, or nil
// when memory is exhausted. The payload may contain stale data. A size of
// zero still returns a distinct valid block.
func Alloc(size uintptr) unsafe.Pointer {
	if failNextAlloc() {
		return nil
	}
	return activeBackend.Alloc(size)
}

// AllocZero reserves at least size bytes with the first size bytes zeroed,
// or nil when memory is exhausted.
func AllocZero(size uintptr) unsafe.Pointer {
	if failNextAlloc() {
		return nil
	}
	return activeBackend.AllocZero(size)
}

// Calloc reserves zeroed storage for count elements of size bytes each.
// A count*size product that would wrap the address space returns nil without
// touching the backend.
func Calloc(count, size uintptr) unsafe.Pointer {
	if failNextAlloc() {
		return nil
	}
	if size != 0 && count > ^uintptr(0)/size {
		return nil
	}
	return activeBackend.AllocZero(count * size)
}

// Realloc grows or shrinks the block at p to hold at least size bytes,
// preserving the payload prefix. A nil p acts like Alloc. On failure it
// returns nil and the original block is untouched and still owned by the
// caller.
func Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	if failNextAlloc() {
		return nil
	}
	return activeBackend.Realloc(p, size)
}

// Free returns the block at p to its backend. Free(nil) is a no-op. p must
// be a pointer obtained from this package and not released before.
func Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	activeBackend.Free(p)
}

// AllocStats reports the active backend's statistics snapshot. The second
// result is false when the backend does not keep statistics.
func AllocStats() (Stats, bool) {
	if sr, ok := activeBackend.(StatsReader); ok {
		return sr.Stats(), true
	}
	return Stats{}, false
}
