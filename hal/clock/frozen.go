package clock

import (
	"efr32hal/errcode"
	"efr32hal/hal/critical"
	"efr32hal/hal/efr32"
)

// Frozen is the finalised clock configuration. Its frequencies never
// change. It owns the CMU until Release and is the only path to the
// peripheral clock-enable bits.
type Frozen struct {
	clocks Clocks

	cs       critical.Section
	cmu      *efr32.CMU
	released bool
}

// Freeze claims the CMU and wraps c. It fails with in_use when another
// handle still owns the CMU.
func (c Clocks) Freeze(cmu *efr32.CMU) (*Frozen, error) {
	if err := cmu.Claim(); err != nil {
		return nil, err
	}
	return &Frozen{clocks: c, cmu: cmu}, nil
}

func (f *Frozen) Clocks() Clocks { return f.clocks }
func (f *Frozen) HFCLK() uint32  { return f.clocks.HFCLK() }
func (f *Frozen) LFCLK() uint32  { return f.clocks.LFCLK() }
func (f *Frozen) PCLK() uint32   { return f.clocks.PCLK() }
func (f *Frozen) SYSCLK() uint32 { return f.clocks.SYSCLK() }

// EnablePeripheralClock runs fn with exclusive access to CLKEN0/CLKEN1.
// fn must not call back into f.
func (f *Frozen) EnablePeripheralClock(fn func(*efr32.ClockEnable)) error {
	var err error
	f.cs.Do(func() {
		if f.released {
			err = &errcode.E{C: ErrReleased, Op: "clock.enable"}
			return
		}
		fn(efr32.NewClockEnable(f.cmu))
	})
	return err
}

// Enable sets the given gates in one critical section.
func (f *Frozen) Enable(gates ...efr32.Gate) error {
	return f.EnablePeripheralClock(func(e *efr32.ClockEnable) {
		for _, g := range gates {
			e.Set(g)
		}
	})
}

// Enabled reports whether gate g is on.
func (f *Frozen) Enabled(g efr32.Gate) bool {
	on := false
	f.cs.Do(func() {
		on = !f.released && efr32.NewClockEnable(f.cmu).IsSet(g)
	})
	return on
}

// Live reports whether the handle can still gate clocks.
func (f *Frozen) Live() bool {
	live := false
	f.cs.Do(func() { live = !f.released })
	return live
}

// Release gives the CMU back for a fresh Resolve and invalidates f. Later
// enables, and so later driver constructors, fail with released. A second
// Release returns nil.
func (f *Frozen) Release() *efr32.CMU {
	var cmu *efr32.CMU
	f.cs.Do(func() {
		if f.released {
			return
		}
		f.released = true
		cmu = f.cmu
		cmu.Unclaim()
	})
	return cmu
}
