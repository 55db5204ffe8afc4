package allocator

import "math/bits"

// MaxCapacity is the largest power of two representable as int
const MaxCapacity = 1 << (bits.UintSize - 2)

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n, 1 for n <= 1.
// ok is false when that power of two does not fit in an int.
func NextPowerOfTwo(n int) (result int, ok bool) {
	if n <= 1 {
		return 1, true
	}
	if isPowerOfTwo(n) {
		return n, true
	}
	if n > MaxCapacity {
		return 0, false
	}
	return 1 << bits.Len(uint(n-1)), true
}
