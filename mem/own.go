package mem

import (
	"unsafe"

	"github.com/joshuapare/memkit/mem/scoped"
)

// Releaser is implemented by values that dispose of themselves.
type Releaser interface {
	Release()
}

// FreePolicy releases a raw facade allocation through Free.
type FreePolicy struct{}

func (FreePolicy) Empty() unsafe.Pointer    { return nil }
func (FreePolicy) Release(p unsafe.Pointer) { Free(p) }

// DeletePolicy finalizes and releases a typed allocation through Delete.
type DeletePolicy[T any] struct{}

func (DeletePolicy[T]) Empty() *T    { return nil }
func (DeletePolicy[T]) Release(p *T) { Delete(p) }

// ReleaserPolicy lets the owned value dispose of itself.
type ReleaserPolicy[T interface {
	Releaser
	comparable
}] struct{}

func (ReleaserPolicy[T]) Empty() T    { var zero T; return zero }
func (ReleaserPolicy[T]) Release(v T) { v.Release() }

// OwnFree returns a handle that frees p when released.
func OwnFree(p unsafe.Pointer) scoped.Handle[unsafe.Pointer, FreePolicy] {
	return scoped.Adopt[unsafe.Pointer, FreePolicy](p)
}

// OwnNew returns a handle that deletes p when released.
func OwnNew[T any](p *T) scoped.Handle[*T, DeletePolicy[T]] {
	return scoped.Adopt[*T, DeletePolicy[T]](p)
}

// OwnReleaser returns a handle whose value releases itself.
func OwnReleaser[T interface {
	Releaser
	comparable
}](v T) scoped.Handle[T, ReleaserPolicy[T]] {
	return scoped.Adopt[T, ReleaserPolicy[T]](v)
}
