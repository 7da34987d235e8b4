package mem

import (
	"fmt"
	"math"
	"os"
	"sync"
	"unsafe"

	"github.com/joshuapare/memkit/internal/sysmem"
)

// Runtime debug flag for allocation logging - controlled by MEMKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("MEMKIT_LOG_ALLOC") != ""

const (
	// slabSize is the reservation unit for class-served blocks. Slabs are
	// carved monotonically and stay reserved for the allocator's lifetime;
	// freed blocks recycle through per-class free lists instead.
	slabSize = 1 << 20

	// pageSize is the rounding granularity for dedicated mappings.
	pageSize = 4096

	// maxAllocSize bounds a single request. Beyond it the arithmetic for
	// header and page rounding would wrap.
	maxAllocSize = uintptr(math.MaxInt) - 2*pageSize
)

// pageAlloc serves blocks out of OS-reserved slabs.
//   - Segregated singly-linked free lists, one per size class
//   - Monotonic carve from the current slab when a list is empty
//   - Dedicated page-rounded mappings above maxClassSize
//   - One mutex; the facade adds no locking of its own
type pageAlloc struct {
	mu sync.Mutex

	// Free lists threaded through freed payloads, one head per class
	free [numClasses]unsafe.Pointer

	// Current carve slab and position
	slab    []byte
	slabOff uintptr

	// Every slab ever reserved. Holding the slices keeps fallback (Go heap)
	// reservations reachable while pointers into them are live.
	slabs [][]byte

	// Dedicated mappings by payload pointer
	large map[unsafe.Pointer][]byte

	stats Stats
}

var _ Backend = (*pageAlloc)(nil)
var _ StatsReader = (*pageAlloc)(nil)

func newPageAlloc() *pageAlloc {
	return &pageAlloc{
		large: make(map[unsafe.Pointer][]byte),
	}
}

// Alloc returns a block of at least size bytes, nil when reservation fails.
// The payload may contain stale data.
func (a *pageAlloc) Alloc(size uintptr) unsafe.Pointer {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.AllocCalls++
	p, _ := a.allocLocked(size)
	return p
}

// AllocZero returns a block of at least size bytes with the first size bytes
// zeroed, nil when reservation fails.
func (a *pageAlloc) AllocZero(size uintptr) unsafe.Pointer {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.AllocCalls++
	p, fresh := a.allocLocked(size)
	if p != nil && !fresh {
		// Recycled blocks carry stale payloads; fresh reservations are
		// already zero.
		memclr(p, size)
	}
	return p
}

// Realloc resizes the block at p to hold at least size bytes. A nil p acts
// like Alloc. On failure the original block is untouched and still owned by
// the caller.
func (a *pageAlloc) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.ReallocCalls++
	if p == nil {
		np, _ := a.allocLocked(size)
		return np
	}
	hdr := headerOf(p)
	a.checkFreeable(hdr, p)
	if size <= hdr.cap {
		return p
	}
	np, _ := a.allocLocked(size)
	if np == nil {
		return nil
	}
	copy(unsafe.Slice((*byte)(np), hdr.cap), unsafe.Slice((*byte)(p), hdr.cap))
	a.freeLocked(p)
	return np
}

// Free returns the block at p. Nil is tolerated.
func (a *pageAlloc) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.FreeCalls++
	a.freeLocked(p)
}

// Stats returns a snapshot of the allocator counters.
func (a *pageAlloc) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// allocLocked serves one request. The second result reports whether the
// block came straight from a fresh reservation and is therefore known-zero.
func (a *pageAlloc) allocLocked(size uintptr) (unsafe.Pointer, bool) {
	if size > maxAllocSize {
		a.stats.FailedAllocs++
		return nil, false
	}
	if size > maxClassSize {
		return a.allocLarge(size)
	}

	c := classFor(size)
	if p := a.free[c]; p != nil {
		a.free[c] = *(*unsafe.Pointer)(p)
		hdr := headerOf(p)
		hdr.magic = magicLive
		a.stats.Recycled++
		a.stats.BlocksInUse++
		a.stats.BytesInUse += uint64(hdr.cap)
		return p, false
	}

	p := a.carve(c)
	if p == nil {
		a.stats.FailedAllocs++
		return nil, false
	}
	a.stats.BlocksInUse++
	a.stats.BytesInUse += uint64(classSizes[c])
	return p, true
}

// carve cuts one class-c block from the current slab, reserving a new slab
// when the remainder is too small. Returns nil when reservation fails.
func (a *pageAlloc) carve(c int) unsafe.Pointer {
	need := headerReserve + classSizes[c]
	if a.slab == nil || a.slabOff+need > uintptr(len(a.slab)) {
		if a.slab != nil {
			a.stats.CarveWaste += uint64(uintptr(len(a.slab)) - a.slabOff)
		}
		s, err := sysmem.Reserve(slabSize)
		if err != nil {
			if logAlloc {
				fmt.Fprintf(os.Stderr, "[MEM] slab reservation failed: %v\n", err)
			}
			return nil
		}
		a.slabs = append(a.slabs, s)
		a.slab = s
		// mmap slabs are page-aligned already; Go-heap fallback slabs
		// need the carve base rounded up.
		base := uintptr(unsafe.Pointer(unsafe.SliceData(s)))
		a.slabOff = (blockAlign - base%blockAlign) % blockAlign
		a.stats.SlabCount++
		a.stats.SlabBytes += uint64(len(s))
	}

	block := unsafe.Add(unsafe.Pointer(unsafe.SliceData(a.slab)), a.slabOff)
	a.slabOff += need

	hdr := (*blockHeader)(block)
	hdr.cap = classSizes[c]
	hdr.class = int32(c)
	hdr.magic = magicLive
	return unsafe.Add(block, headerReserve)
}

// allocLarge serves a request above maxClassSize from a dedicated mapping.
func (a *pageAlloc) allocLarge(size uintptr) (unsafe.Pointer, bool) {
	mapLen := alignUp(headerReserve+size, pageSize)
	s, err := sysmem.Reserve(int(mapLen))
	if err != nil {
		if logAlloc {
			fmt.Fprintf(os.Stderr, "[MEM] large reservation of %d bytes failed: %v\n", mapLen, err)
		}
		a.stats.FailedAllocs++
		return nil, false
	}

	base := uintptr(unsafe.Pointer(unsafe.SliceData(s)))
	start := (blockAlign - base%blockAlign) % blockAlign
	block := unsafe.Add(unsafe.Pointer(unsafe.SliceData(s)), start)

	hdr := (*blockHeader)(block)
	hdr.cap = uintptr(len(s)) - start - headerReserve
	hdr.class = largeClass
	hdr.magic = magicLive

	p := unsafe.Add(block, headerReserve)
	a.large[p] = s
	a.stats.BlocksInUse++
	a.stats.BytesInUse += uint64(hdr.cap)
	a.stats.LargeMaps++
	a.stats.LargeBytes += uint64(len(s))
	return p, true
}

// freeLocked returns the block at p to its free list, or its mapping to the
// OS for large blocks.
func (a *pageAlloc) freeLocked(p unsafe.Pointer) {
	hdr := headerOf(p)
	a.checkFreeable(hdr, p)

	if hdr.class == largeClass {
		s, ok := a.large[p]
		if !ok {
			// Release builds tolerate a foreign pointer here the same
			// way free() does: the behavior is undefined, not fatal.
			return
		}
		delete(a.large, p)
		a.stats.BlocksInUse--
		a.stats.BytesInUse -= uint64(hdr.cap)
		a.stats.LargeMaps--
		a.stats.LargeBytes -= uint64(len(s))
		_ = sysmem.Release(s)
		return
	}

	c := int(hdr.class)
	hdr.magic = magicFree
	*(*unsafe.Pointer)(p) = a.free[c]
	a.free[c] = p
	a.stats.BlocksInUse--
	a.stats.BytesInUse -= uint64(hdr.cap)
}

// memclr zeroes n bytes starting at p.
func memclr(p unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}
	clear(unsafe.Slice((*byte)(p), n))
}

// alignUp rounds n up to the next multiple of align (a power of two).
func alignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}
