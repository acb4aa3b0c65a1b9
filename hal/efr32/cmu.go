package efr32

import "efr32hal/hal/reg"

// CMU register offsets and fields.
const (
	CMU_CLKEN0     = 0x064
	CMU_CLKEN1     = 0x068
	CMU_SYSCLKCTRL = 0x070

	CMU_SYSCLKCTRL_CLKSEL_Pos       = 0
	CMU_SYSCLKCTRL_CLKSEL_Msk       = 0x7
	CMU_SYSCLKCTRL_CLKSEL_FSRCO     = 1
	CMU_SYSCLKCTRL_CLKSEL_HFRCODPLL = 2
	CMU_SYSCLKCTRL_CLKSEL_HFXO      = 3
)

// CMU is the clock management unit. The crystal oscillator blocks it
// selects from travel with it.
type CMU struct {
	block
	HFXO *Osc
	LFXO *Osc

	CLKEN0     reg.Register32
	CLKEN1     reg.Register32
	SYSCLKCTRL reg.Register32
}

func newCMU(s reg.Space, c *Claims) *CMU {
	return &CMU{
		block:      block{claims: c, res: ResCMU},
		HFXO:       newOsc(s, HFXO0_BASE, HFXO_CTRL, HFXO_STATUS, HFXO_CTRL_FORCEEN, HFXO_STATUS_RDY),
		LFXO:       newOsc(s, LFXO_BASE, LFXO_CTRL, LFXO_STATUS, LFXO_CTRL_FORCEEN, LFXO_STATUS_RDY),
		CLKEN0:     reg.At(s, CMU_BASE+CMU_CLKEN0),
		CLKEN1:     reg.At(s, CMU_BASE+CMU_CLKEN1),
		SYSCLKCTRL: reg.At(s, CMU_BASE+CMU_SYSCLKCTRL),
	}
}

// Gate names one peripheral clock-enable bit: bit Bit of CLKEN0 (Reg 0)
// or CLKEN1 (Reg 1).
type Gate struct {
	Reg uint8
	Bit uint8
}

var (
	GateLDMA     = Gate{0, 0}
	GateTIMER0   = Gate{0, 4}
	GateTIMER1   = Gate{0, 5}
	GateTIMER2   = Gate{0, 6}
	GateTIMER3   = Gate{0, 7}
	GateTIMER4   = Gate{0, 8}
	GateUSART0   = Gate{0, 9}
	GateIADC0    = Gate{0, 10}
	GateI2C0     = Gate{0, 14}
	GateI2C1     = Gate{0, 15}
	GateGPIO     = Gate{0, 26}
	GateLDMAXBAR = Gate{0, 1}
	GateEUSART0  = Gate{1, 22}
	GateEUSART1  = Gate{1, 23}
)

// ClockEnable is the write access to CLKEN0/CLKEN1 handed to the closure
// passed to the frozen clock handle. It is only valid for the duration of
// that call.
type ClockEnable struct {
	cmu *CMU
}

// NewClockEnable is used by the clock package. Drivers never call it.
func NewClockEnable(c *CMU) *ClockEnable { return &ClockEnable{cmu: c} }

func (e *ClockEnable) reg(g Gate) reg.Register32 {
	if g.Reg == 0 {
		return e.cmu.CLKEN0
	}
	return e.cmu.CLKEN1
}

func (e *ClockEnable) Set(g Gate)        { e.reg(g).SetBits(reg.Bit(g.Bit)) }
func (e *ClockEnable) Clear(g Gate)      { e.reg(g).ClearBits(reg.Bit(g.Bit)) }
func (e *ClockEnable) IsSet(g Gate) bool { return e.reg(g).HasBits(reg.Bit(g.Bit)) }

// -----------------------------------------------------------------------------
// Crystal oscillators
// -----------------------------------------------------------------------------

const (
	HFXO_CTRL   = 0x028
	HFXO_STATUS = 0x058

	HFXO_CTRL_FORCEEN = 1 << 16
	HFXO_STATUS_RDY   = 1 << 0

	LFXO_CTRL   = 0x008
	LFXO_STATUS = 0x018

	LFXO_CTRL_FORCEEN = 1 << 0
	LFXO_STATUS_RDY   = 1 << 0
)

// Osc is a crystal oscillator control block (HFXO0 or LFXO).
type Osc struct {
	CTRL   reg.Register32
	STATUS reg.Register32

	ForceEn uint32
	Ready   uint32
}

func newOsc(s reg.Space, base uintptr, ctrl, status uintptr, force, rdy uint32) *Osc {
	return &Osc{
		CTRL:    reg.At(s, base+ctrl),
		STATUS:  reg.At(s, base+status),
		ForceEn: force,
		Ready:   rdy,
	}
}
