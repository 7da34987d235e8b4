//go:build !memdebug

package mem

import "unsafe"

// Free-path validation and type scans cost nothing in release builds.

func (a *pageAlloc) checkFreeable(*blockHeader, unsafe.Pointer) {}

func (g *goHeap) checkOwned(unsafe.Pointer, bool) {}

func checkNoManagedRefs[T any]() {}
