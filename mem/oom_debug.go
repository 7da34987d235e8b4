//go:build memdebug

package mem

import (
	"fmt"
	"math"
	"os"
	"runtime/debug"
)

// Simulated-failure state. Plain integers on purpose: harnesses drive
// allocation from a single goroutine, and the hot path budget is one
// increment and one compare.
var (
	oomAttempts  uint64
	oomThreshold uint64 = math.MaxUint64
)

// OOMBreakpoint runs at the moment an allocation attempt is failed on
// purpose. Point a debugger at it to stop exactly there.
var OOMBreakpoint = func() {}

// Runtime debug flag for failure backtraces - controlled by MEMKIT_OOM_TRACE env var.
var traceOOM = os.Getenv("MEMKIT_OOM_TRACE") != ""

// failNextAlloc records one allocation attempt and reports whether it should
// fail. Once the counter exceeds the threshold every later attempt fails too,
// until the next reset.
func failNextAlloc() bool {
	oomAttempts++
	if oomAttempts <= oomThreshold {
		return false
	}
	OOMBreakpoint()
	if traceOOM {
		fmt.Fprintf(os.Stderr, "[MEM] simulated allocation failure: attempt %d, threshold %d\n",
			oomAttempts, oomThreshold)
		os.Stderr.Write(debug.Stack())
	}
	return true
}

// SimulateOOMAfter zeroes the attempt counter and arranges for attempts
// 1..n to succeed and attempt n+1 onward to fail.
func SimulateOOMAfter(n uint64) {
	oomAttempts = 0
	oomThreshold = n
}

// ResetSimulatedOOM returns the injector to its default never-fail state.
func ResetSimulatedOOM() {
	oomAttempts = 0
	oomThreshold = math.MaxUint64
}

// SimulatedOOMState reports the attempt counter and active threshold.
func SimulatedOOMState() (attempts, threshold uint64) {
	return oomAttempts, oomThreshold
}
