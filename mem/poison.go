package mem

// Poison bytes written by teardown diagnostics. The values are stable so
// crash dumps and debugger watchpoints stay recognizable across versions.
const (
	// PoisonPattern fills an object's footprint in DeletePoison.
	PoisonPattern byte = 0x3B

	// PtrPoisonPattern is the byte PoisonPtr plants in a pointer's bit
	// pattern under the memdebug and rootcheck build tags.
	PtrPoisonPattern byte = 0xDA
)
