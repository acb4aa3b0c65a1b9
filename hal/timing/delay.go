package timing

import (
	"time"

	"efr32hal/x/timex"
)

// SysTickMaxTicks is the longest single countdown of the 24-bit counter.
const SysTickMaxTicks = 1 << 24

// Plan splits a delay into busy-spin cycles and SysTick countdowns: Full
// countdowns of SysTickMaxTicks followed by one of Rest ticks (none when
// Rest is 0).
type Plan struct {
	SpinCycles uint32
	Full       uint64
	Rest       uint32
}

// Ticks is the total countdown ticks in the plan.
func (p Plan) Ticks() uint64 { return p.Full*SysTickMaxTicks + uint64(p.Rest) }

// DelayPlan converts d at sysclk into a Plan. Delays under a microsecond
// are too short to set up the counter and are spun. A lone remainder tick
// cannot be loaded (a reload value of zero stops the counter) and is spun
// as well.
func DelayPlan(sysclk uint32, d time.Duration) Plan {
	if d <= 0 {
		return Plan{}
	}
	cycles := timex.Cycles(sysclk, d)
	if d < time.Microsecond {
		return Plan{SpinCycles: uint32(cycles)}
	}
	p := Plan{Full: cycles / SysTickMaxTicks, Rest: uint32(cycles % SysTickMaxTicks)}
	if p.Rest == 1 {
		p.Rest, p.SpinCycles = 0, 1
	}
	return p
}
