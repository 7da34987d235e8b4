//go:build !memdebug

package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Test_SimulateOOM_CompiledOut tests that without the memdebug tag the
// control surface exists but injects nothing: arming a zero threshold must
// not make allocations fail.
func Test_SimulateOOM_CompiledOut(t *testing.T) {
	withBackend(t, newPageAlloc())

	SimulateOOMAfter(0)
	defer ResetSimulatedOOM()

	p := Alloc(64)
	require.NotNil(t, p, "release builds never inject failure")
	Free(p)

	attempts, threshold := SimulatedOOMState()
	require.Zero(t, attempts, "release builds keep no counter")
	require.Zero(t, threshold)
}
