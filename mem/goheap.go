package mem

import (
	"sync"
	"unsafe"
)

// maxGoHeapAlloc caps a single goHeap request. The Go runtime aborts the
// process on genuine heap exhaustion instead of reporting it, so absurd
// requests are refused up front to keep the nil-on-failure contract for the
// sizes where it can be kept.
const maxGoHeapAlloc = uintptr(1) << 40

// goHeap serves blocks from the Go heap. The registry pins each block's
// backing array until Free, which is what makes handing out unsafe.Pointers
// into it sound.
type goHeap struct {
	mu     sync.Mutex
	blocks map[unsafe.Pointer]heapBlock
	stats  Stats
}

type heapBlock struct {
	buf []byte
	cap uintptr
}

var _ Backend = (*goHeap)(nil)
var _ StatsReader = (*goHeap)(nil)

func newGoHeap() *goHeap {
	return &goHeap{
		blocks: make(map[unsafe.Pointer]heapBlock),
	}
}

// Alloc returns a zeroed block of at least size bytes. The Go heap never
// hands back stale data, so Alloc and AllocZero coincide here.
func (g *goHeap) Alloc(size uintptr) unsafe.Pointer {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stats.AllocCalls++
	return g.allocLocked(size)
}

func (g *goHeap) AllocZero(size uintptr) unsafe.Pointer {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stats.AllocCalls++
	return g.allocLocked(size)
}

func (g *goHeap) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stats.ReallocCalls++
	if p == nil {
		return g.allocLocked(size)
	}
	old, ok := g.blocks[p]
	g.checkOwned(p, ok)
	if !ok {
		return nil
	}
	if size <= old.cap {
		return p
	}
	np := g.allocLocked(size)
	if np == nil {
		return nil
	}
	copy(unsafe.Slice((*byte)(np), old.cap), unsafe.Slice((*byte)(p), old.cap))
	g.freeLocked(p, old)
	return np
}

func (g *goHeap) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stats.FreeCalls++
	blk, ok := g.blocks[p]
	g.checkOwned(p, ok)
	if !ok {
		return
	}
	g.freeLocked(p, blk)
}

// Stats returns a snapshot of the backend counters.
func (g *goHeap) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats
}

func (g *goHeap) allocLocked(size uintptr) unsafe.Pointer {
	if size > maxGoHeapAlloc {
		g.stats.FailedAllocs++
		return nil
	}
	buf := make([]byte, size+blockAlign)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	start := (blockAlign - base%blockAlign) % blockAlign
	p := unsafe.Add(unsafe.Pointer(unsafe.SliceData(buf)), start)
	g.blocks[p] = heapBlock{buf: buf, cap: size}
	g.stats.BlocksInUse++
	g.stats.BytesInUse += uint64(size)
	return p
}

func (g *goHeap) freeLocked(p unsafe.Pointer, blk heapBlock) {
	delete(g.blocks, p)
	g.stats.BlocksInUse--
	g.stats.BytesInUse -= uint64(blk.cap)
}
