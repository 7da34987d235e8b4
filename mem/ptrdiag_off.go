//go:build !memdebug || !rootcheck

package mem

import "unsafe"

// Pointer poisoning needs both the memdebug and rootcheck build tags; in
// every other build it vanishes.

// PoisonPtr does nothing without memdebug and rootcheck.
func PoisonPtr(*unsafe.Pointer) {}

// IsPoisonedPtr reports false without memdebug and rootcheck.
func IsPoisonedPtr(unsafe.Pointer) bool { return false }
