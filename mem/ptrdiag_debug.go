//go:build memdebug && rootcheck

package mem

import "unsafe"

const ptrPoisonShift = 24

// PoisonPtr overwrites the fourth byte of the pointer stored at p with
// PtrPoisonPattern, making it recognizably invalid without being reliably
// unmapped. The byte position matches IsPoisonedPtr's mask on little-endian
// targets, which is where root analysis runs.
func PoisonPtr(p *unsafe.Pointer) {
	(*[unsafe.Sizeof(uintptr(0))]byte)(unsafe.Pointer(p))[3] = PtrPoisonPattern
}

// IsPoisonedPtr reports whether p carries the poison byte planted by
// PoisonPtr.
func IsPoisonedPtr(p unsafe.Pointer) bool {
	return uintptr(p)&(0xff<<ptrPoisonShift) == uintptr(PtrPoisonPattern)<<ptrPoisonShift
}
