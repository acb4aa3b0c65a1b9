// Package efr32sim models just enough EFR32MG24 behaviour on top of a
// regsim.Space for the drivers to run on a host: oscillators that come
// ready, serial data paths, an I2C bus with attached targets, an LDMA
// engine, IADC conversions, timer counters and a SysTick that wraps.
//
// Each behaviour can be stalled to exercise the drivers' timeout paths.
package efr32sim

import (
	"sync"

	"efr32hal/hal/efr32"
	"efr32hal/hal/reg/regsim"
)

// Chip is a simulated part. Its register blocks are in P.
type Chip struct {
	Space *regsim.Space
	P     *efr32.Peripherals

	// mu guards the model state below. Hooks already hold the Space lock
	// when they take mu; accessors take only mu.
	mu sync.Mutex

	hfxoStuck bool
	lfxoStuck bool
	ldmaStall bool
	iadcStall bool

	serial  map[uintptr]*serialPort
	i2c     map[uintptr]*i2cBus
	analog  func(port, pin uint8) uint16
	sysTick uint64
}

// New builds a chip with every model attached. It panics if the fresh
// space cannot be taken, which would be a bug in efr32.Take.
func New() *Chip {
	s := regsim.New()
	p, err := efr32.Take(s)
	if err != nil {
		panic(err)
	}
	c := &Chip{
		Space:  s,
		P:      p,
		serial: map[uintptr]*serialPort{},
		i2c:    map[uintptr]*i2cBus{},
		analog: func(port, pin uint8) uint16 { return 0 },
	}
	c.attachOscillators()
	c.attachSerial()
	c.attachI2C()
	c.attachLDMA()
	c.attachIADC()
	c.attachTimers()
	c.attachSysTick()
	return c
}

func (c *Chip) attachOscillators() {
	osc := func(o *efr32.Osc, stuck *bool) {
		status := o.STATUS.Addr()
		c.Space.OnWrite(o.CTRL.Addr(), func(m *regsim.Mem, _ uintptr, _, v uint32) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if v&o.ForceEn != 0 && !*stuck {
				m.SetBits(status, o.Ready)
			} else {
				m.ClearBits(status, o.Ready)
			}
		})
	}
	osc(c.P.HFXO, &c.hfxoStuck)
	osc(c.P.LFXO, &c.lfxoStuck)
}

// StallHFXO keeps the high frequency crystal from ever reporting ready.
func (c *Chip) StallHFXO(on bool) { c.mu.Lock(); c.hfxoStuck = on; c.mu.Unlock() }

// StallLFXO keeps the low frequency crystal from ever reporting ready.
func (c *Chip) StallLFXO(on bool) { c.mu.Lock(); c.lfxoStuck = on; c.mu.Unlock() }

// StallLDMA stops the DMA engine from completing software requests.
func (c *Chip) StallLDMA(on bool) { c.mu.Lock(); c.ldmaStall = on; c.mu.Unlock() }

// StallIADC stops conversions from producing data.
func (c *Chip) StallIADC(on bool) { c.mu.Lock(); c.iadcStall = on; c.mu.Unlock() }
