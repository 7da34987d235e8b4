package mem

import "unsafe"

// Finalizer is implemented by values that need teardown before their storage
// is released. Delete and DeletePoison run Finalize exactly once, before the
// memory goes back to the backend.
type Finalizer interface {
	Finalize()
}

// New allocates substrate storage for a T and returns it zeroed, or nil when
// memory is exhausted. A zero-size T still gets a distinct valid pointer.
//
// T must not contain managed references (strings, slices, maps, channels,
// funcs, interfaces): the collector cannot see substrate memory. memdebug
// builds enforce this.
func New[T any]() *T {
	checkNoManagedRefs[T]()
	var zero T
	p := AllocZero(unsafe.Sizeof(zero))
	if p == nil {
		return nil
	}
	return (*T)(p)
}

// NewFrom allocates substrate storage for a T and copies v into it, or
// returns nil when memory is exhausted. The argument expression is the
// construction site: build v with whatever arguments the type wants.
func NewFrom[T any](v T) *T {
	checkNoManagedRefs[T]()
	p := Alloc(unsafe.Sizeof(v))
	if p == nil {
		return nil
	}
	t := (*T)(p)
	*t = v
	return t
}

// Delete finalizes *p, if it implements Finalizer, and releases its storage.
// Delete(nil) is a no-op. p must come from New or NewFrom.
func Delete[T any](p *T) {
	if p == nil {
		return
	}
	if f, ok := any(p).(Finalizer); ok {
		f.Finalize()
	}
	Free(unsafe.Pointer(p))
}

// DeletePoison is Delete plus an overwrite of the whole sizeof(T) footprint
// with PoisonPattern between finalization and release, in every build. A
// stale pointer to the object then reads as poison instead of plausible
// data.
func DeletePoison[T any](p *T) {
	if p == nil {
		return
	}
	if f, ok := any(p).(Finalizer); ok {
		f.Finalize()
	}
	var zero T
	b := unsafe.Slice((*byte)(unsafe.Pointer(p)), unsafe.Sizeof(zero))
	for i := range b {
		b[i] = PoisonPattern
	}
	Free(unsafe.Pointer(p))
}
