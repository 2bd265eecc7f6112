// Package safemath provides overflow-checked arithmetic helpers used by
// the VM when computing memory offsets, where a wraparound would
// silently corrupt an address instead of failing loudly.
package safemath

import "math/bits"

// SafeOffset adds a signed 16-bit instruction offset to an unsigned
// register value, reporting overflow (wraparound past zero or past the
// uint64 range) instead of producing a corrupted address.
func SafeOffset(addr uint64, offset int16) (uint64, bool) {
	if offset >= 0 {
		sum, carry := bits.Add64(addr, uint64(offset), 0)
		return sum, carry != 0
	}

	abs := uint64(-int64(offset))
	if abs > addr {
		return 0, true
	}
	return addr - abs, false
}

// Max returns the larger of a and b.
func Max(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// NextPowerOfTwo returns the smallest power of two greater than or
// equal to v. NextPowerOfTwo(0) is 1.
func NextPowerOfTwo(v uint64) uint64 {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len64(v-1)
}
