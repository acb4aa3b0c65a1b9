// Package delay blocks for a given time using the SysTick down-counter.
package delay

import (
	"sync"
	"sync/atomic"
	"time"

	"efr32hal/errcode"
	"efr32hal/hal/clock"
	"efr32hal/hal/efr32"
	"efr32hal/hal/reg"
	"efr32hal/hal/timing"
)

var (
	ErrTimeout  = errcode.Timeout
	ErrReleased = errcode.Released
)

// pollSlack bounds a countdown wait beyond its tick count; a COUNTFLAG
// poll costs at least one core cycle.
const pollSlack = 1_000

// Delay owns SysTick. Calls are serialised.
type Delay struct {
	mu     sync.Mutex
	st     *efr32.SysTick
	sysclk uint32
	spun   uint64
}

// New claims SysTick and selects the core clock as its source.
func New(st *efr32.SysTick, clocks *clock.Frozen) (*Delay, error) {
	if !clocks.Live() {
		return nil, &errcode.E{C: ErrReleased, Op: "systick.new", Msg: "clock handle"}
	}
	if err := st.Claim(); err != nil {
		return nil, err
	}
	st.CSR.Set(efr32.SYST_CSR_CLKSOURCE)
	return &Delay{st: st, sysclk: clocks.SYSCLK()}, nil
}

// Sleep blocks for d. Non-positive durations return at once.
func (d *Delay) Sleep(dur time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.st == nil {
		return &errcode.E{C: ErrReleased, Op: "systick.sleep"}
	}
	p := timing.DelayPlan(d.sysclk, dur)
	for i := uint64(0); i < p.Full; i++ {
		if err := d.countdown(timing.SysTickMaxTicks); err != nil {
			return err
		}
	}
	if p.Rest > 0 {
		if err := d.countdown(p.Rest); err != nil {
			return err
		}
	}
	d.spin(p.SpinCycles)
	return nil
}

func (d *Delay) DelayNs(ns uint32) error { return d.Sleep(time.Duration(ns)) }

func (d *Delay) DelayUs(us uint32) error { return d.Sleep(time.Duration(us) * time.Microsecond) }

func (d *Delay) DelayMs(ms uint32) error { return d.Sleep(time.Duration(ms) * time.Millisecond) }

// countdown runs one reload period of n ticks, 2..1<<24.
func (d *Delay) countdown(n uint32) error {
	st := d.st
	st.RVR.Set(n - 1)
	st.CVR.Set(0)
	st.CSR.Set(efr32.SYST_CSR_CLKSOURCE | efr32.SYST_CSR_ENABLE)
	ok := reg.Wait(st.CSR, efr32.SYST_CSR_COUNTFLAG, true, int(n)+pollSlack)
	st.CSR.Set(efr32.SYST_CSR_CLKSOURCE)
	if !ok {
		return &errcode.E{C: ErrTimeout, Op: "systick.countdown"}
	}
	return nil
}

var spinSink uint32

// spin burns roughly n core cycles.
func (d *Delay) spin(n uint32) {
	for i := uint32(0); i < n; i++ {
		atomic.AddUint32(&spinSink, 1)
	}
	d.spun += uint64(n)
}

// Release stops the counter and returns SysTick.
func (d *Delay) Release() *efr32.SysTick {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.st
	if st == nil {
		return nil
	}
	st.CSR.Set(0)
	st.Unclaim()
	d.st = nil
	return st
}
