package reg

// Wait polls r until the bits in mask are all set (set=true) or all clear
// (set=false). It gives up after limit reads and reports whether the
// condition was observed. limit <= 0 reads once.
func Wait(r Register32, mask uint32, set bool, limit int) bool {
	if limit <= 0 {
		limit = 1
	}
	for i := 0; i < limit; i++ {
		v := r.Get() & mask
		if set && v == mask || !set && v == 0 {
			return true
		}
	}
	return false
}

// WaitAny polls r until any bit in mask is set and returns the masked value,
// or 0 when limit reads pass without a hit.
func WaitAny(r Register32, mask uint32, limit int) uint32 {
	if limit <= 0 {
		limit = 1
	}
	for i := 0; i < limit; i++ {
		if v := r.Get() & mask; v != 0 {
			return v
		}
	}
	return 0
}
