// Package mem provides malloc-shaped memory management for Go programs that
// host manually-managed object graphs.
//
// # Overview
//
// This package implements an allocation substrate with uniform failure
// semantics: every allocation path answers exhaustion with a nil pointer,
// never a panic and never an error value. Storage lives outside the Go
// collector's view, so object lifetime is entirely the caller's to manage.
//
// # Facade
//
// The core surface is five malloc-shaped functions:
//
//   - Alloc(size): raw storage, stale data possible
//   - AllocZero(size): zeroed storage
//   - Calloc(count, size): zeroed element storage with overflow checking
//   - Realloc(ptr, size): resize preserving the payload prefix
//   - Free(ptr): release (nil tolerated)
//
// Zero-byte requests return distinct valid blocks. Payloads are at least
// 16-byte aligned. All functions are safe for concurrent use.
//
// # Backends
//
// The facade delegates to a Backend chosen at build time:
//
//   - default: slabs reserved from the OS, carved into size-class blocks
//     that recycle through per-class free lists
//   - -tags goheap: blocks on the Go heap, pinned until freed
//
// SetBackend swaps in a host-supplied Backend at startup, transparently to
// every component above the facade. CountingBackend wraps any backend with
// live-block tracking for leak checks.
//
// # Typed Helpers
//
// New, NewFrom, Delete, and DeletePoison manage single objects; NewSlice,
// NewSliceZero, and FreeSlice manage element arrays with a pure upper-bound
// overflow test that runs before any allocation. Types stored in substrate
// memory must not contain managed references (strings, slices, maps,
// channels, funcs, interfaces); raw pointers between substrate objects are
// fine. DeletePoison overwrites the released object's footprint with
// PoisonPattern in every build.
//
// Scoped ownership lives in the scoped subpackage; OwnFree, OwnNew, and
// OwnReleaser bind its handles to this package's release paths:
//
//	w := mem.New[Widget]()
//	if w == nil {
//		return errOutOfMemory
//	}
//	h := mem.OwnNew(w)
//	defer h.Release()
//
// # Debug Facilities
//
// The memdebug build tag enables three facilities that cost nothing without
// it:
//
//   - simulated allocation failure: SimulateOOMAfter(n) makes attempt n+1
//     and every later attempt fail until ResetSimulatedOOM; OOMBreakpoint
//     hooks the moment of failure, and MEMKIT_OOM_TRACE=1 dumps stacks
//   - free-path validation: double frees and corrupted headers panic
//     instead of corrupting free lists
//   - managed-reference scans on New, NewFrom, and NewSlice
//
// Pointer poisoning (PoisonPtr, IsPoisonedPtr) additionally wants the
// rootcheck tag; with only one of the two tags it compiles to a no-op.
//
// # Thread Safety
//
// Backends serialize internally; the facade adds no locking. The simulated
// failure counter is deliberately plain: harnesses drive it from a single
// goroutine.
//
// # Related Packages
//
//   - github.com/joshuapare/memkit/mem/scoped: single-owner handles
//   - github.com/joshuapare/memkit/pkg/hashcode: hash code scrambling
//   - github.com/joshuapare/memkit/cmalloc: libc-backed Backend (cgo)
package mem
