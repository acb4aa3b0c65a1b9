package mathx

import "golang.org/x/exp/constraints"

// SatSub returns a-b, or 0 when b > a.
func SatSub[T constraints.Unsigned](a, b T) T {
	if b > a {
		return 0
	}
	return a - b
}

// Mask returns a value with the low n bits set (n <= 32).
func Mask(n uint8) uint32 {
	if n >= 32 {
		return 0xFFFF_FFFF
	}
	return 1<<n - 1
}

// Fits reports whether v is representable in an n-bit unsigned field.
func Fits[T constraints.Unsigned](v T, n uint8) bool {
	return uint64(v) <= uint64(Mask(n))
}
