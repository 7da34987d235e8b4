//go:build !cgo

// Package cmalloc serves substrate memory from the platform C allocator.
// This build has no cgo, so no C allocator is reachable; New reports that
// instead of handing back a backend that cannot work.
package cmalloc

import (
	"errors"

	"github.com/joshuapare/memkit/mem"
)

// ErrNoCgo is returned by New in builds compiled without cgo.
var ErrNoCgo = errors.New("cmalloc: built without cgo")

// New reports that the libc backend is unavailable. Callers fall back to
// the substrate's default backend.
func New() (mem.Backend, error) {
	return nil, ErrNoCgo
}
