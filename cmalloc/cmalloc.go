//go:build cgo

// Package cmalloc serves substrate memory from the platform C allocator.
//
// The libc backend is for hosts that embed this runtime next to C code and
// need both sides to share one heap: a pointer allocated here can be freed
// by C code and vice versa. Install it at startup:
//
//	backend, err := cmalloc.New()
//	if err != nil {
//		// built without cgo
//	}
//	mem.SetBackend(backend)
//
// Payload alignment follows malloc, which on mainstream 64-bit platforms is
// 16 bytes.
package cmalloc

// The static wrappers matter: cgo's own C.malloc never returns NULL, it
// aborts the process on exhaustion, which is exactly the behavior the
// substrate's nil-on-failure contract forbids.

// #include <stdlib.h>
//
// static void *mk_malloc(size_t n)            { return malloc(n); }
// static void *mk_calloc(size_t n)            { return calloc(1, n); }
// static void *mk_realloc(void *p, size_t n)  { return realloc(p, n); }
import "C"

import (
	"unsafe"

	"github.com/joshuapare/memkit/mem"
)

type libc struct{}

var _ mem.Backend = libc{}

// New returns the libc-malloc backend.
func New() (mem.Backend, error) {
	return libc{}, nil
}

// Alloc returns a malloc'd block, nil on exhaustion. Zero-size requests are
// bumped to one byte so every caller gets a distinct valid pointer; C
// permits malloc(0) to return NULL, which would read as failure.
func (libc) Alloc(size uintptr) unsafe.Pointer {
	if size == 0 {
		size = 1
	}
	return C.mk_malloc(C.size_t(size))
}

// AllocZero returns a calloc'd block, nil on exhaustion.
func (libc) AllocZero(size uintptr) unsafe.Pointer {
	if size == 0 {
		size = 1
	}
	return C.mk_calloc(C.size_t(size))
}

// Realloc resizes the block at p, preserving the payload prefix. A nil p
// acts like Alloc. On failure the original block is untouched and still
// owned by the caller, which is realloc's own contract.
func (libc) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	if size == 0 {
		// realloc(p, 0) may free p and return NULL, which the facade
		// would misread as failure with the block still owned.
		size = 1
	}
	return C.mk_realloc(p, C.size_t(size))
}

// Free releases the block at p. Nil is tolerated, as with free itself.
func (libc) Free(p unsafe.Pointer) {
	C.free(p)
}
