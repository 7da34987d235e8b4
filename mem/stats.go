package mem

// Stats is a point-in-time snapshot of a backend's activity.
type Stats struct {
	AllocCalls   uint64 // Alloc/AllocZero requests served (Calloc lands here too)
	ReallocCalls uint64 // Realloc requests
	FreeCalls    uint64 // Free requests
	FailedAllocs uint64 // requests answered with nil
	Recycled     uint64 // allocations served from a free list

	BytesInUse  uint64 // payload capacity currently allocated
	BlocksInUse uint64 // live blocks

	SlabCount  uint64 // slabs reserved from the OS
	SlabBytes  uint64 // total slab reservation
	CarveWaste uint64 // slab tails too small to carve a block from

	LargeMaps  uint64 // live dedicated mappings
	LargeBytes uint64 // bytes in dedicated mappings
}

// StatsReader is implemented by backends that expose allocation statistics.
type StatsReader interface {
	Stats() Stats
}
