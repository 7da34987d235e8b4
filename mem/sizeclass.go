package mem

import "unsafe"

const (
	// blockAlign is the guaranteed alignment of every payload the substrate
	// hands out. 16 covers every Go and C scalar type.
	blockAlign = 16

	// headerReserve is the distance from a block's base to its payload.
	// The header struct itself is smaller on 32-bit targets; the reserve
	// keeps payloads blockAlign-aligned either way.
	headerReserve = 16

	// maxClassSize is the largest payload served from a size class.
	// Anything bigger gets a dedicated mapping.
	maxClassSize = 1 << 15

	// largeClass marks blocks served by dedicated mappings.
	largeClass int32 = -1
)

// classSizes holds the payload capacity of each size class. Capacities are
// multiples of blockAlign so carving never disturbs payload alignment.
var classSizes = [...]uintptr{
	16, 32, 48, 64, 96, 128, 192, 256,
	384, 512, 768, 1024, 1536, 2048, 3072, 4096,
	6144, 8192, 12288, 16384, 24576, 32768,
}

const numClasses = len(classSizes)

// blockHeader sits headerReserve bytes before every payload.
type blockHeader struct {
	cap   uintptr // payload capacity in bytes
	class int32   // size-class index, or largeClass
	magic uint32  // life-cycle marker, checked on free in memdebug builds
}

const (
	magicLive uint32 = 0xA110C8ED // block is allocated
	magicFree uint32 = 0xDEA110C8 // block is on a free list
)

// headerOf returns the header of the block whose payload starts at p.
func headerOf(p unsafe.Pointer) *blockHeader {
	return (*blockHeader)(unsafe.Add(p, -headerReserve))
}

// BlockOverhead is the bookkeeping cost of one class-served block: the
// distance between its base and its payload.
const BlockOverhead = headerReserve

// SizeClasses returns the payload capacities the page-backed allocator
// recycles through free lists, ascending. Requests beyond the last capacity
// get dedicated page-rounded mappings instead.
func SizeClasses() []uintptr {
	out := make([]uintptr, numClasses)
	copy(out, classSizes[:])
	return out
}

// classFor returns the index of the smallest size class whose capacity holds
// size bytes. The caller ensures size <= maxClassSize.
func classFor(size uintptr) int {
	// Binary search for the smallest sufficient class
	lo, hi := 0, numClasses-1
	for lo <= hi {
		mid := (lo + hi) / 2
		if size <= classSizes[mid] {
			if mid == 0 || size > classSizes[mid-1] {
				return mid
			}
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	return numClasses - 1
}
