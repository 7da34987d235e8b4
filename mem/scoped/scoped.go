// Package scoped provides single-owner handles that run a release policy
// exactly once, however the owning scope exits.
package scoped

// Policy describes how a Handle tears down the value it owns. Empty returns
// the vacant sentinel a handle holds when it owns nothing; Release disposes
// of one non-vacant value. Policies are stateless: the zero value of P must
// be ready to use.
type Policy[T any] interface {
	Empty() T
	Release(v T)
}

// Handle owns at most one T and applies P's Release to it exactly once.
// Ownership moves through Move, Forget, and Reset; copying a Handle struct
// duplicates ownership and must not happen.
//
//	h := mem.OwnFree(p)
//	defer h.Release()
type Handle[T comparable, P Policy[T]] struct {
	v T
}

// Adopt returns a Handle owning v. Adopting the vacant sentinel yields an
// empty handle.
func Adopt[T comparable, P Policy[T]](v T) Handle[T, P] {
	return Handle[T, P]{v: v}
}

// Get returns the owned value without transferring ownership.
func (h *Handle[T, P]) Get() T {
	return h.v
}

// IsEmpty reports whether the handle owns nothing.
func (h *Handle[T, P]) IsEmpty() bool {
	var p P
	return h.v == p.Empty()
}

// Release disposes of the owned value now and empties the handle. Vacant
// handles do nothing, so a second Release is a no-op.
func (h *Handle[T, P]) Release() {
	var p P
	if h.v == p.Empty() {
		return
	}
	v := h.v
	h.v = p.Empty()
	p.Release(v)
}

// Forget hands the owned value back to the caller without releasing it and
// empties the handle.
func (h *Handle[T, P]) Forget() T {
	var p P
	v := h.v
	h.v = p.Empty()
	return v
}

// Reset releases the current value, if any, and adopts v in its place.
// Resetting to the already-owned value is a no-op.
func (h *Handle[T, P]) Reset(v T) {
	if v == h.v {
		return
	}
	h.Release()
	h.v = v
}

// Move transfers ownership into the returned handle, leaving h vacant.
func (h *Handle[T, P]) Move() Handle[T, P] {
	var p P
	v := h.v
	h.v = p.Empty()
	return Handle[T, P]{v: v}
}
