// Package ramp walks an integer level towards a target in evenly spaced
// steps. The timer driver uses it to fade PWM duty cycles.
package ramp

import (
	"time"

	"efr32hal/x/mathx"
)

// Step applies a level in [0..top]. A non-nil error aborts the ramp.
type Step func(level uint32) error

// Tick waits for d and reports whether to continue (false => cancelled).
type Tick func(d time.Duration) bool

// Linear moves from cur to to in steps increments spread over total.
// steps==0 or total==0 snaps to 'to'. The final level is always applied
// unless the ramp is cancelled or a Step fails.
func Linear(cur, to, top uint32, total time.Duration, steps uint16, tick Tick, set Step) error {
	to = mathx.Min(to, top)
	if steps == 0 || total <= 0 {
		return set(to)
	}
	d := int64(to) - int64(cur)
	st := int64(steps)
	acc := int64(0)
	lvl := int64(cur)
	stepDur := mathx.Max(total/time.Duration(steps), time.Millisecond)

	for i := uint16(1); i < steps; i++ {
		if !tick(stepDur) {
			return nil
		}
		acc += d
		inc := acc / st
		if inc != 0 {
			acc -= inc * st
			lvl = mathx.Clamp(lvl+inc, 0, int64(top))
			if err := set(uint32(lvl)); err != nil {
				return err
			}
		}
	}
	if !tick(stepDur) {
		return nil
	}
	return set(to)
}
