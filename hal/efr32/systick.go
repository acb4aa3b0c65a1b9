package efr32

import "efr32hal/hal/reg"

// SysTick (ARMv8-M core timer) offsets and fields.
const (
	SYST_CSR = 0x0
	SYST_RVR = 0x4
	SYST_CVR = 0x8

	SYST_CSR_ENABLE    = 1 << 0
	SYST_CSR_TICKINT   = 1 << 1
	SYST_CSR_CLKSOURCE = 1 << 2
	SYST_CSR_COUNTFLAG = 1 << 16

	SYST_RVR_MAX = 0x00FF_FFFF
)

// SysTick is the 24-bit core down-counter.
type SysTick struct {
	block
	CSR reg.Register32
	RVR reg.Register32
	CVR reg.Register32
}

func newSysTick(s reg.Space, c *Claims) *SysTick {
	return &SysTick{
		block: block{claims: c, res: ResSysTick},
		CSR:   reg.At(s, SYSTICK_BASE+SYST_CSR),
		RVR:   reg.At(s, SYSTICK_BASE+SYST_RVR),
		CVR:   reg.At(s, SYSTICK_BASE+SYST_CVR),
	}
}
