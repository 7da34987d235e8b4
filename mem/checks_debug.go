//go:build memdebug

package mem

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// checkFreeable panics when the header under p does not describe a live
// block. Catches double frees and frees of memory this allocator never
// issued before they can corrupt a free list.
func (a *pageAlloc) checkFreeable(hdr *blockHeader, p unsafe.Pointer) {
	switch hdr.magic {
	case magicLive:
	case magicFree:
		panic(fmt.Sprintf("mem: double free of %p", p))
	default:
		panic(fmt.Sprintf("mem: free of %p: unknown block, header magic %#x", p, hdr.magic))
	}
	if hdr.class != largeClass && (hdr.class < 0 || int(hdr.class) >= numClasses) {
		panic(fmt.Sprintf("mem: free of %p: corrupted size class %d", p, hdr.class))
	}
}

// checkOwned panics when p is not a live goHeap block.
func (g *goHeap) checkOwned(p unsafe.Pointer, ok bool) {
	if !ok {
		panic(fmt.Sprintf("mem: %p is not a live block of this backend", p))
	}
}

var refScanCache sync.Map // reflect.Type -> bool

// checkNoManagedRefs panics when T embeds managed references (strings,
// slices, maps, channels, funcs, interfaces). The collector cannot see
// substrate memory, so such fields would silently un-root their referents.
// Raw pointers and unsafe.Pointer pass: linking substrate objects to each
// other is the point of the exercise, and keeping pointees alive is the
// caller's contract.
func checkNoManagedRefs[T any]() {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if !typeHasManagedRefs(t) {
		return
	}
	panic(fmt.Sprintf("mem: %v contains managed references (string, slice, map, chan, func, or interface) and cannot live in substrate memory", t))
}

func typeHasManagedRefs(t reflect.Type) bool {
	if v, ok := refScanCache.Load(t); ok {
		return v.(bool)
	}
	has := scanManagedRefs(t)
	refScanCache.Store(t, has)
	return has
}

func scanManagedRefs(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	case reflect.Array:
		return scanManagedRefs(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if scanManagedRefs(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
