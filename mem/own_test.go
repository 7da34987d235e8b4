package mem

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// Test_OwnFree_ReleasesThroughFacade tests the raw-pointer policy end to
// end: the wrapped block must reach Free exactly once.
func Test_OwnFree_ReleasesThroughFacade(t *testing.T) {
	cb := withCounting(t)

	p := Alloc(128)
	require.NotNil(t, p)

	h := OwnFree(p)
	require.Equal(t, p, h.Get())
	h.Release()

	require.Equal(t, 0, cb.LiveBlocks())
	require.EqualValues(t, 1, cb.FreeCount())

	// Vacant now; a second Release must not double free.
	h.Release()
	require.EqualValues(t, 1, cb.FreeCount())
}

// Test_OwnNew_FinalizesOnRelease tests that the typed policy routes through
// Delete, so finalizers still run.
func Test_OwnNew_FinalizesOnRelease(t *testing.T) {
	cb := withCounting(t)
	finalizeLog = nil

	g := NewFrom(gadget{id: 3})
	require.NotNil(t, g)

	h := OwnNew(g)
	h.Release()

	require.Equal(t, []string{"finalize:3"}, finalizeLog)
	require.Equal(t, 0, cb.LiveBlocks())
}

// Test_OwnNew_DeferredTeardown tests the intended usage shape: adopt, defer,
// return early.
func Test_OwnNew_DeferredTeardown(t *testing.T) {
	cb := withCounting(t)

	func() {
		type buf struct{ b [256]byte }
		p := New[buf]()
		require.NotNil(t, p)
		h := OwnNew(p)
		defer h.Release()

		p.b[0] = 0xFF
	}()

	require.Equal(t, 0, cb.LiveBlocks(), "scope exit must have released")
}

// selfReleaser counts its own Release calls.
type selfReleaser struct {
	released int
}

func (s *selfReleaser) Release() { s.released++ }

// Test_OwnReleaser_ValueReleasesItself tests the third policy: the owned
// value is told to dispose of itself.
func Test_OwnReleaser_ValueReleasesItself(t *testing.T) {
	v := &selfReleaser{}

	h := OwnReleaser(v)
	require.False(t, h.IsEmpty())
	h.Release()
	require.Equal(t, 1, v.released)

	h.Release()
	require.Equal(t, 1, v.released, "a vacant handle must not release again")
}

// Test_OwnReleaser_MoveThenTeardown tests the single-release invariant
// across a transfer, per the self-releasing policy.
func Test_OwnReleaser_MoveThenTeardown(t *testing.T) {
	v := &selfReleaser{}

	h := OwnReleaser(v)
	g := h.Move()

	h.Release()
	g.Release()
	require.Equal(t, 1, v.released)
}

// Test_OwnFree_ForgetKeepsBlockAlive tests opting back into manual
// management.
func Test_OwnFree_ForgetKeepsBlockAlive(t *testing.T) {
	cb := withCounting(t)

	p := Alloc(64)
	require.NotNil(t, p)

	h := OwnFree(p)
	got := h.Forget()
	require.Equal(t, p, got)
	require.Equal(t, 1, cb.LiveBlocks(), "forgotten blocks stay allocated")

	Free(got)
	require.Equal(t, 0, cb.LiveBlocks())
}

// Test_OwnFree_ResetSwapsBlocks tests that adopting a replacement frees the
// previous block first.
func Test_OwnFree_ResetSwapsBlocks(t *testing.T) {
	cb := withCounting(t)

	p := Alloc(64)
	q := Alloc(64)
	require.NotNil(t, p)
	require.NotNil(t, q)

	h := OwnFree(p)
	h.Reset(q)
	require.Equal(t, 1, cb.LiveBlocks(), "the old block must be gone")
	require.Equal(t, q, h.Get())

	h.Release()
	require.Equal(t, 0, cb.LiveBlocks())
}

// Test_OwnFree_VacantHandle tests that an empty handle's teardown never
// touches the backend.
func Test_OwnFree_VacantHandle(t *testing.T) {
	cb := withCounting(t)

	h := OwnFree(unsafe.Pointer(nil))
	require.True(t, h.IsEmpty())
	h.Release()
	require.EqualValues(t, 0, cb.FreeCount())
}
