package timex

import (
	"math/bits"
	"time"
)

// PeriodFromHz returns the period of a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) time.Duration {
	if freqHz == 0 {
		freqHz = 1
	}
	return time.Second / time.Duration(freqHz)
}

// Cycles converts a duration into clock cycles at hz, rounding down and
// saturating at the uint64 maximum. Negative durations yield 0.
func Cycles(hz uint32, d time.Duration) uint64 {
	if d <= 0 || hz == 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(d), uint64(hz))
	if hi >= uint64(time.Second) {
		return ^uint64(0)
	}
	q, _ := bits.Div64(hi, lo, uint64(time.Second))
	return q
}
