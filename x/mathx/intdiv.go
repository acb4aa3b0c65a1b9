package mathx

import "golang.org/x/exp/constraints"

// CeilDiv returns ceil(a/b); b == 0 yields 0.
func CeilDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return a/b + T(boolTo(a%b != 0))
}

// RoundDiv returns a/b rounded to nearest; b == 0 yields 0.
func RoundDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	q, r := a/b, a%b
	if r >= b-r {
		q++
	}
	return q
}

func boolTo(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
