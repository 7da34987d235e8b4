package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// e2eEntry is the reference-free record the scenario builds. Raw pointers
// between substrate objects are the supported linking idiom.
type e2eEntry struct {
	key   uint64
	extra *uint64
	next  *e2eEntry
}

// Test_E2E_ObjectGraphRoundTrip builds a small object graph out of every
// allocation form the substrate offers, tears it down, and proves nothing
// leaked.
func Test_E2E_ObjectGraphRoundTrip(t *testing.T) {
	cb := withCounting(t)

	// A ten-element array of 8-byte values: the canonical array request.
	vals := NewSlice[uint64](10)
	require.NotNil(t, vals)
	require.GreaterOrEqual(t, cb.LiveBytes(), uint64(80))
	for i := range vals {
		vals[i] = uint64(i * i)
	}

	// A linked chain of three entries, each pointing at a substrate uint64.
	var head *e2eEntry
	for i := uint64(0); i < 3; i++ {
		extra := NewFrom(i * 100)
		require.NotNil(t, extra)
		e := NewFrom(e2eEntry{key: i, extra: extra, next: head})
		require.NotNil(t, e)
		head = e
	}

	// Walk and check the graph before teardown.
	count := 0
	for e := head; e != nil; e = e.next {
		require.Equal(t, e.key*100, *e.extra)
		count++
	}
	require.Equal(t, 3, count)

	// An oversized request must be refused without consulting the backend.
	allocsBefore := cb.AllocCount()
	require.Nil(t, NewSlice[uint64](int(^uintptr(0)/4)))
	require.Equal(t, allocsBefore, cb.AllocCount())

	// Teardown: chain first, then the array.
	for head != nil {
		next := head.next
		DeletePoison(head.extra)
		DeletePoison(head)
		head = next
	}
	FreeSlice(vals)

	require.Equal(t, 0, cb.LiveBlocks(), "the scenario must release everything it took")
	require.EqualValues(t, 0, cb.LiveBytes())
}

// Test_E2E_ScopedTeardownOnEarlyReturn tests the ownership-handle idiom in
// a function with a failure exit between allocations.
func Test_E2E_ScopedTeardownOnEarlyReturn(t *testing.T) {
	cb := withCounting(t)

	build := func(failSecond bool) bool {
		first := New[e2eEntry]()
		if first == nil {
			return false
		}
		h := OwnNew(first)
		defer h.Release()

		if failSecond {
			return false // first is torn down by the handle
		}

		second := New[e2eEntry]()
		if second == nil {
			return false
		}
		defer Delete(second)

		first.key, second.key = 1, 2
		return true
	}

	require.False(t, build(true))
	require.Equal(t, 0, cb.LiveBlocks(), "early return must not leak the first entry")

	require.True(t, build(false))
	require.Equal(t, 0, cb.LiveBlocks())
}

// Test_E2E_ReallocGrowthLoop tests the append-like pattern a host would use
// to grow a substrate buffer under churn.
func Test_E2E_ReallocGrowthLoop(t *testing.T) {
	cb := withCounting(t)

	p := Alloc(16)
	require.NotNil(t, p)
	fillBytes(t, p, 16, 0x11)

	for _, next := range []uintptr{64, 100, 1000, 5000, 40000} {
		q := Realloc(p, next)
		require.NotNil(t, q)
		// The first 16 bytes must survive every resize.
		requireBytes(t, q, 16, 0x11)
		p = q
	}

	Free(p)
	require.Equal(t, 0, cb.LiveBlocks())
}
