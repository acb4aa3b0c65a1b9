package clock

import (
	"efr32hal/errcode"
	"efr32hal/hal/efr32"
	"efr32hal/hal/reg"
	"efr32hal/x/fmtx"
)

// Resolve brings up the requested oscillators and selects the system clock
// source. Crystals are started with FORCEEN and their ready flag is polled
// at most OscReadyPolls times; the internal RC oscillators run from reset.
//
// On any error SYSCLKCTRL is left untouched. Resolve needs the CMU to be
// unowned: while a Frozen handle is live it fails with in_use.
func Resolve(cmu *efr32.CMU, cfg Config) (Clocks, error) {
	if cfg.HFXO != nil && cfg.HFXO.Hz == 0 {
		return Clocks{}, &errcode.E{C: ErrInvalidFrequency, Op: "clock.hfxo", Msg: "zero crystal frequency"}
	}
	if cfg.LFXO != nil && cfg.LFXO.Hz == 0 {
		return Clocks{}, &errcode.E{C: ErrInvalidFrequency, Op: "clock.lfxo", Msg: "zero crystal frequency"}
	}
	if err := cmu.Claim(); err != nil {
		return Clocks{}, err
	}
	defer cmu.Unclaim()

	c := Clocks{hfclk: efr32.HFRCO_HZ, hfsrc: SourceHFRCO, lfclk: efr32.LFRCO_HZ, lfsrc: SourceLFRCO}
	sel := uint32(efr32.CMU_SYSCLKCTRL_CLKSEL_HFRCODPLL)

	if cfg.HFXO != nil {
		if !startCrystal(cmu.HFXO) {
			return Clocks{}, &errcode.E{C: ErrOscTimeout, Op: "clock.hfxo"}
		}
		c.hfclk, c.hfsrc = cfg.HFXO.Hz, SourceHFXO
		sel = efr32.CMU_SYSCLKCTRL_CLKSEL_HFXO
	}
	if cfg.LFXO != nil {
		if !startCrystal(cmu.LFXO) {
			return Clocks{}, &errcode.E{C: ErrOscTimeout, Op: "clock.lfxo"}
		}
		c.lfclk, c.lfsrc = cfg.LFXO.Hz, SourceLFXO
	}

	cmu.SYSCLKCTRL.ReplaceBits(sel, efr32.CMU_SYSCLKCTRL_CLKSEL_Msk, efr32.CMU_SYSCLKCTRL_CLKSEL_Pos)
	fmtx.Logf("clock: hfclk=%d (%s) lfclk=%d (%s)", c.hfclk, c.hfsrc, c.lfclk, c.lfsrc)
	return c, nil
}

func startCrystal(o *efr32.Osc) bool {
	o.CTRL.SetBits(o.ForceEn)
	return reg.Wait(o.STATUS, o.Ready, true, OscReadyPolls)
}
