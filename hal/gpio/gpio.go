// Package gpio splits the pin controller into one typed value per pin.
//
// A pin's mode is its Go type: Input, Output, Analog or Alternate. Only
// Input has IsHigh/IsLow and only Output has SetHigh/SetLow, so a read on
// an output or a write on an input does not compile. Mode changes consume
// the old value: every Into* call reconfigures the hardware and returns a
// new value, and the value it was called on is dead from then on. Using a
// dead value panics; that is a program bug, not a hardware condition.
//
// Only pins bonded out on the 48-pin QFN package appear in Parts, so a pin
// that does not exist cannot be named.
package gpio

import (
	"fmt"
	"sync"

	"efr32hal/errcode"
	"efr32hal/hal/clock"
	"efr32hal/hal/critical"
	"efr32hal/hal/efr32"
	"efr32hal/hal/reg"
)

type Port uint8

const (
	PortA Port = iota
	PortB
	PortC
	PortD
)

func (p Port) String() string { return string(rune('A' + p)) }

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	}
	return "none"
}

// DriveStrength selects the output driver. Weak and Strong use the port's
// alternate drive setting, which is shared by every pin of that port in an
// *ALT mode: the last pin configured sets it for all of them.
type DriveStrength uint8

const (
	DriveStandard DriveStrength = iota
	DriveWeak
	DriveStrong
)

func (d DriveStrength) String() string {
	switch d {
	case DriveWeak:
		return "weak"
	case DriveStrong:
		return "strong"
	}
	return "standard"
}

// controller owns the port registers and the liveness of every pin value.
type controller struct {
	mu       sync.Mutex
	released bool

	regs *efr32.GPIO
	cs   [efr32.GPIO_NUM_PORTS]critical.Section
	gen  [efr32.GPIO_NUM_PORTS][16]uint32
}

// Split enables the GPIO clock through clocks and returns every pin in the
// floating input state. The block stays claimed until Parts.Release.
func Split(regs *efr32.GPIO, clocks *clock.Frozen) (*Parts, error) {
	if err := regs.Claim(); err != nil {
		return nil, err
	}
	if err := clocks.Enable(efr32.GateGPIO); err != nil {
		regs.Unclaim()
		return nil, err
	}
	return newParts(&controller{regs: regs}), nil
}

// Release kills every pin value handed out from p and returns the block.
// Later calls return nil.
func (p *Parts) Release() *efr32.GPIO {
	c := p.ctl
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return nil
	}
	c.released = true
	for port := range c.gen {
		c.cs[port].Do(func() {
			for n := range c.gen[port] {
				c.gen[port][n]++
			}
		})
	}
	c.regs.Unclaim()
	return c.regs
}

// -----------------------------------------------------------------------------
// pin identity and mode transitions
// -----------------------------------------------------------------------------

// pin is the identity shared by all mode types. Its methods are promoted,
// so every mode can move to every other.
type pin struct {
	c    *controller
	port Port
	num  uint8
	gen  uint32
}

func (p pin) Port() Port            { return p.port }
func (p pin) Number() uint8         { return p.num }
func (p pin) String() string        { return fmt.Sprintf("P%s%d", p.port, p.num) }
func (p pin) bit() uint32           { return reg.Bit(p.num) }
func (p pin) regs() *efr32.GPIOPort { return &p.c.regs.Port[p.port] }

// with runs f in the port critical section after checking that p is live.
func (p pin) with(f func(r *efr32.GPIOPort)) {
	if p.c == nil {
		panic("gpio: use of zero pin value")
	}
	p.c.cs[p.port].Do(func() {
		if p.c.gen[p.port][p.num] != p.gen {
			panic(&errcode.E{C: errcode.Released, Op: "gpio." + p.String(), Msg: "pin value used after a mode change"})
		}
		f(p.regs())
	})
}

// Live reports whether p is still the current value for its pin: no mode
// change has consumed it and the Parts it came from is not released.
func (p pin) Live() bool {
	if p.c == nil {
		return false
	}
	live := false
	p.c.cs[p.port].Do(func() { live = p.c.gen[p.port][p.num] == p.gen })
	return live
}

// transition reconfigures the pin and returns its successor identity.
func (p pin) transition(mode uint32, dout int8, alt int8) pin {
	next := p
	p.with(func(r *efr32.GPIOPort) {
		switch dout {
		case 1:
			r.DOUT.SetBits(p.bit())
		case 0:
			r.DOUT.ClearBits(p.bit())
		}
		if alt >= 0 {
			r.CTRL.ReplaceBits(uint32(alt), efr32.GPIO_P_CTRL_DRIVESTRENGTHALT_Msk, efr32.GPIO_P_CTRL_DRIVESTRENGTHALT_Pos)
		}
		mr, shift := r.MODEL, p.num*4
		if p.num >= 8 {
			mr, shift = r.MODEH, (p.num-8)*4
		}
		mr.ReplaceBits(mode, efr32.GPIO_MODE_Msk, shift)
		p.c.gen[p.port][p.num]++
		next.gen = p.c.gen[p.port][p.num]
	})
	return next
}

const keep = -1

func (p pin) IntoFloatingInput() Input {
	return Input{pin: p.transition(efr32.GPIO_MODE_INPUT, 0, keep), pull: PullNone}
}

// IntoPullUpInput sets DOUT high, which selects the pull-up in INPUTPULL.
func (p pin) IntoPullUpInput() Input {
	return Input{pin: p.transition(efr32.GPIO_MODE_INPUTPULL, 1, keep), pull: PullUp}
}

func (p pin) IntoPullDownInput() Input {
	return Input{pin: p.transition(efr32.GPIO_MODE_INPUTPULL, 0, keep), pull: PullDown}
}

func (p pin) IntoPushPullOutput() Output {
	return p.IntoPushPullOutputDrive(DriveStandard)
}

// IntoPushPullOutputDrive configures a push-pull output. The output level
// carries over from DOUT.
func (p pin) IntoPushPullOutputDrive(d DriveStrength) Output {
	var next pin
	switch d {
	case DriveWeak:
		next = p.transition(efr32.GPIO_MODE_PUSHPULLALT, keep, 1)
	case DriveStrong:
		next = p.transition(efr32.GPIO_MODE_PUSHPULLALT, keep, 0)
	default:
		d = DriveStandard
		next = p.transition(efr32.GPIO_MODE_PUSHPULL, keep, keep)
	}
	return Output{pin: next, drive: d}
}

// IntoOpenDrainOutput configures a wired-AND output: SetHigh releases the
// line, SetLow pulls it down.
func (p pin) IntoOpenDrainOutput() Output {
	return Output{pin: p.transition(efr32.GPIO_MODE_WIREDAND, keep, keep), openDrain: true}
}

// IntoAnalog disconnects the digital path for use by the IADC.
func (p pin) IntoAnalog() Analog {
	return Analog{pin: p.transition(efr32.GPIO_MODE_DISABLED, 0, keep)}
}

// IntoAlternate hands the pin to a peripheral function. Routing the
// function to the pin is the board's job.
func (p pin) IntoAlternate(af uint8) Alternate {
	return Alternate{pin: p.transition(efr32.GPIO_MODE_PUSHPULL, keep, keep), af: af}
}

// -----------------------------------------------------------------------------
// mode types
// -----------------------------------------------------------------------------

// Input is a pin reading its level from DIN.
type Input struct {
	pin
	pull Pull
}

func (p Input) Pull() Pull { return p.pull }

func (p Input) IsHigh() bool {
	high := false
	p.with(func(r *efr32.GPIOPort) { high = r.DIN.HasBits(p.bit()) })
	return high
}

func (p Input) IsLow() bool { return !p.IsHigh() }

// Output is a pin driving its level from DOUT.
type Output struct {
	pin
	drive     DriveStrength
	openDrain bool
}

func (p Output) Drive() DriveStrength { return p.drive }
func (p Output) OpenDrain() bool      { return p.openDrain }

func (p Output) SetHigh() { p.with(func(r *efr32.GPIOPort) { r.DOUT.SetBits(p.bit()) }) }
func (p Output) SetLow()  { p.with(func(r *efr32.GPIOPort) { r.DOUT.ClearBits(p.bit()) }) }

func (p Output) Set(high bool) {
	if high {
		p.SetHigh()
	} else {
		p.SetLow()
	}
}

func (p Output) Toggle() {
	p.with(func(r *efr32.GPIOPort) { r.DOUT.Set(r.DOUT.Get() ^ p.bit()) })
}

// IsSetHigh reports the driven level (DOUT), not the pad.
func (p Output) IsSetHigh() bool {
	high := false
	p.with(func(r *efr32.GPIOPort) { high = r.DOUT.HasBits(p.bit()) })
	return high
}

func (p Output) IsSetLow() bool { return !p.IsSetHigh() }

// Analog is a pin reserved for the IADC.
type Analog struct {
	pin
}

// Alternate is a pin owned by a peripheral function.
type Alternate struct {
	pin
	af uint8
}

func (p Alternate) Function() uint8 { return p.af }
