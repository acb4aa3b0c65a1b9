package efr32

import "efr32hal/hal/reg"

// TIMER register offsets and fields.
const (
	TIMER_EN     = 0x004
	TIMER_CFG    = 0x008
	TIMER_CTRL   = 0x00C
	TIMER_CMD    = 0x010
	TIMER_STATUS = 0x014
	TIMER_IF     = 0x018
	TIMER_TOP    = 0x020
	TIMER_TOPB   = 0x024
	TIMER_CNT    = 0x028

	TIMER_CC0       = 0x060
	TIMER_CC_STRIDE = 0x020
	TIMER_CC_CFG    = 0x00
	TIMER_CC_CTRL   = 0x04
	TIMER_CC_OC     = 0x08
	TIMER_CC_OCB    = 0x0C
	TIMER_NUM_CC    = 3

	TIMER_EN_EN = 1 << 0

	TIMER_CFG_MODE_Pos    = 0
	TIMER_CFG_MODE_Msk    = 0x3
	TIMER_CFG_MODE_UP     = 0
	TIMER_CFG_MODE_DOWN   = 1
	TIMER_CFG_MODE_UPDOWN = 2
	// Counter clock = source / (PRESC + 1).
	TIMER_CFG_PRESC_Pos = 18
	TIMER_CFG_PRESC_Msk = 0x3FF

	TIMER_CMD_START = 1 << 0
	TIMER_CMD_STOP  = 1 << 1

	TIMER_STATUS_RUNNING = 1 << 0

	TIMER_CC_CFG_MODE_Pos = 0
	TIMER_CC_CFG_MODE_Msk = 0x3
	TIMER_CC_CFG_MODE_OFF = 0
	TIMER_CC_CFG_MODE_OC  = 2
	TIMER_CC_CFG_MODE_PWM = 3

	TIMER_CC_CTRL_CMOA_Pos   = 8
	TIMER_CC_CTRL_COFOA_Pos  = 10
	TIMER_CC_CTRL_ACT_Msk    = 0x3
	TIMER_CC_CTRL_ACT_NONE   = 0
	TIMER_CC_CTRL_ACT_TOGGLE = 1
	TIMER_CC_CTRL_ACT_CLEAR  = 2
	TIMER_CC_CTRL_ACT_SET    = 3
)

// TimerCC is one compare/capture channel.
type TimerCC struct {
	CFG  reg.Register32
	CTRL reg.Register32
	OC   reg.Register32
	OCB  reg.Register32
}

// TIMER is a general purpose timer. Width is the counter width in bits:
// TIMER0 is 32 bits, TIMER1..4 are 16.
type TIMER struct {
	block
	Gate  Gate
	Width uint8

	EN     reg.Register32
	CFG    reg.Register32
	CTRL   reg.Register32
	CMD    reg.Register32
	STATUS reg.Register32
	IF     reg.Register32
	TOP    reg.Register32
	TOPB   reg.Register32
	CNT    reg.Register32
	CC     [TIMER_NUM_CC]TimerCC
}

// TimerBase returns the base address of TIMERn.
func TimerBase(n int) uintptr { return TIMER0_BASE + uintptr(n)*TIMER_STRIDE }

func newTIMER(s reg.Space, c *Claims, n int, g Gate) *TIMER {
	base := TimerBase(n)
	t := &TIMER{
		block:  block{claims: c, res: ResTIMER0 + Resource(n)},
		Gate:   g,
		Width:  16,
		EN:     reg.At(s, base+TIMER_EN),
		CFG:    reg.At(s, base+TIMER_CFG),
		CTRL:   reg.At(s, base+TIMER_CTRL),
		CMD:    reg.At(s, base+TIMER_CMD),
		STATUS: reg.At(s, base+TIMER_STATUS),
		IF:     reg.At(s, base+TIMER_IF),
		TOP:    reg.At(s, base+TIMER_TOP),
		TOPB:   reg.At(s, base+TIMER_TOPB),
		CNT:    reg.At(s, base+TIMER_CNT),
	}
	if n == 0 {
		t.Width = 32
	}
	for i := range t.CC {
		cc := base + TIMER_CC0 + uintptr(i)*TIMER_CC_STRIDE
		t.CC[i] = TimerCC{
			CFG:  reg.At(s, cc+TIMER_CC_CFG),
			CTRL: reg.At(s, cc+TIMER_CC_CTRL),
			OC:   reg.At(s, cc+TIMER_CC_OC),
			OCB:  reg.At(s, cc+TIMER_CC_OCB),
		}
	}
	return t
}

// MaxTop is the largest counter value.
func (t *TIMER) MaxTop() uint32 {
	if t.Width >= 32 {
		return 0xFFFF_FFFF
	}
	return 1<<t.Width - 1
}
