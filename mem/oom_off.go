//go:build !memdebug

package mem

// Simulated allocation failure is compiled out of release builds: no counter,
// no branch beyond the inlined constant below. The control surface stays so
// harness code builds with and without the memdebug tag.

func failNextAlloc() bool { return false }

// OOMBreakpoint is never invoked without the memdebug build tag.
var OOMBreakpoint = func() {}

// SimulateOOMAfter does nothing without the memdebug build tag.
func SimulateOOMAfter(uint64) {}

// ResetSimulatedOOM does nothing without the memdebug build tag.
func ResetSimulatedOOM() {}

// SimulatedOOMState reports zeros without the memdebug build tag.
func SimulatedOOMState() (attempts, threshold uint64) { return 0, 0 }
