package efr32

import "efr32hal/hal/reg"

// IADC register offsets and fields (single conversion subset).
const (
	IADC_EN             = 0x004
	IADC_CTRL           = 0x008
	IADC_CMD            = 0x00C
	IADC_STATUS         = 0x014
	IADC_CFG0           = 0x028
	IADC_SCHED0         = 0x02C
	IADC_SINGLE         = 0x0C4
	IADC_IF             = 0x048
	IADC_SINGLEFIFODATA = 0x0E8

	IADC_EN_EN = 1 << 0

	IADC_CMD_SINGLESTART = 1 << 0
	IADC_CMD_SINGLESTOP  = 1 << 1

	IADC_STATUS_CONVERTING   = 1 << 3
	IADC_STATUS_SINGLEFIFODV = 1 << 6

	IADC_CFG0_REFSEL_Pos  = 29
	IADC_CFG0_REFSEL_Msk  = 0x7
	IADC_CFG0_REFSEL_VBGR = 0
	IADC_CFG0_REFSEL_VDDX = 2

	// CLK_ADC = CLK_SRC / (2 * (PRESCALE + 1)).
	IADC_SCHED0_PRESCALE_Pos = 0
	IADC_SCHED0_PRESCALE_Msk = 0x3FF

	IADC_SINGLE_PINPOS_Pos  = 8
	IADC_SINGLE_PINPOS_Msk  = 0xF
	IADC_SINGLE_PORTPOS_Pos = 12
	IADC_SINGLE_PORTPOS_Msk = 0xF
	IADC_PORT_GND           = 0
	IADC_PORT_PORTA         = 8

	IADC_IF_SINGLEDONE = 1 << 4

	IADC_DATA_Msk = 0xFFF
)

// IADC is the incremental analog-to-digital converter.
type IADC struct {
	block
	Gate Gate

	EN             reg.Register32
	CTRL           reg.Register32
	CMD            reg.Register32
	STATUS         reg.Register32
	CFG0           reg.Register32
	SCHED0         reg.Register32
	SINGLE         reg.Register32
	IF             reg.Register32
	SINGLEFIFODATA reg.Register32
}

func newIADC(s reg.Space, c *Claims) *IADC {
	b := IADC0_BASE
	return &IADC{
		block:          block{claims: c, res: ResIADC0},
		Gate:           GateIADC0,
		EN:             reg.At(s, b+IADC_EN),
		CTRL:           reg.At(s, b+IADC_CTRL),
		CMD:            reg.At(s, b+IADC_CMD),
		STATUS:         reg.At(s, b+IADC_STATUS),
		CFG0:           reg.At(s, b+IADC_CFG0),
		SCHED0:         reg.At(s, b+IADC_SCHED0),
		SINGLE:         reg.At(s, b+IADC_SINGLE),
		IF:             reg.At(s, b+IADC_IF),
		SINGLEFIFODATA: reg.At(s, b+IADC_SINGLEFIFODATA),
	}
}
