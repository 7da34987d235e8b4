package mem

import (
	"sync"
	"unsafe"
)

// CountingBackend wraps a Backend and tracks every block it hands out. Tests
// and tools use it to prove a workload released everything it took.
//
// Sizes recorded are the requested sizes, not the backend's rounded-up
// capacities: the point is matching allocations to frees, not accounting for
// internal fragmentation.
type CountingBackend struct {
	mu    sync.Mutex
	inner Backend
	live  map[unsafe.Pointer]uintptr

	allocs   uint64
	frees    uint64
	reallocs uint64
	failed   uint64
	liveSize uint64
}

var _ Backend = (*CountingBackend)(nil)

// NewCounting wraps inner with live-block tracking.
func NewCounting(inner Backend) *CountingBackend {
	return &CountingBackend{
		inner: inner,
		live:  make(map[unsafe.Pointer]uintptr),
	}
}

func (c *CountingBackend) Alloc(size uintptr) unsafe.Pointer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allocs++
	p := c.inner.Alloc(size)
	c.recordAlloc(p, size)
	return p
}

func (c *CountingBackend) AllocZero(size uintptr) unsafe.Pointer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allocs++
	p := c.inner.AllocZero(size)
	c.recordAlloc(p, size)
	return p
}

func (c *CountingBackend) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reallocs++
	np := c.inner.Realloc(p, size)
	if np == nil {
		// The old block survives a failed resize.
		c.failed++
		return nil
	}
	if p != nil {
		c.liveSize -= uint64(c.live[p])
		delete(c.live, p)
	}
	c.live[np] = size
	c.liveSize += uint64(size)
	return np
}

func (c *CountingBackend) Free(p unsafe.Pointer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frees++
	if sz, ok := c.live[p]; ok {
		c.liveSize -= uint64(sz)
		delete(c.live, p)
	}
	c.inner.Free(p)
}

func (c *CountingBackend) recordAlloc(p unsafe.Pointer, size uintptr) {
	if p == nil {
		c.failed++
		return
	}
	c.live[p] = size
	c.liveSize += uint64(size)
}

// AllocCount reports allocation requests seen, including failed ones.
func (c *CountingBackend) AllocCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocs
}

// FreeCount reports Free requests seen.
func (c *CountingBackend) FreeCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frees
}

// FailedCount reports requests the inner backend answered with nil.
func (c *CountingBackend) FailedCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}

// LiveBlocks reports blocks allocated and not yet freed.
func (c *CountingBackend) LiveBlocks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}

// LiveBytes reports requested bytes allocated and not yet freed.
func (c *CountingBackend) LiveBytes() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveSize
}
