// Package hashcode prepares raw 32-bit hash codes for bucket dispatch.
//
// Hash functions over small or structured keys often concentrate their
// entropy in the low bits. Tables that key on high bits (or that mask after
// a shift) then collide badly. Scramble spreads low-bit entropy across the
// whole word so either indexing style works.
package hashcode

// HashNumber is the canonical 32-bit hash code type.
type HashNumber uint32

// HashNumberBits is the bit width of HashNumber.
const HashNumberBits = 32

// goldenRatio is 2^32 divided by the golden ratio, rounded to an odd
// constant. Multiplying by it is Fibonacci hashing: consecutive inputs land
// far apart, and every input bit influences the high output bits.
const goldenRatio HashNumber = 0x9E3779B9

// Scramble mixes h so codes differing only in their low bits disperse across
// the high bits. It is deterministic and not one-way: equal inputs scramble
// equally, which is what hash tables need.
func Scramble(h HashNumber) HashNumber {
	return h * goldenRatio
}
