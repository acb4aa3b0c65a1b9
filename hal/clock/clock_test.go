package clock

import (
	"errors"
	"sync"
	"testing"

	"efr32hal/errcode"
	"efr32hal/hal/efr32"
	"efr32hal/hal/efr32/efr32sim"
)

func clksel(c *efr32sim.Chip) uint32 {
	return c.P.CMU.SYSCLKCTRL.Field(efr32.CMU_SYSCLKCTRL_CLKSEL_Msk, efr32.CMU_SYSCLKCTRL_CLKSEL_Pos)
}

func TestResolveDerivedClocksEqualHF(t *testing.T) {
	cases := map[string]struct {
		cfg    Config
		hf, lf uint32
		sel    uint32
	}{
		"internal":  {Config{}, 19_000_000, 32_768, efr32.CMU_SYSCLKCTRL_CLKSEL_HFRCODPLL},
		"hfxo":      {Config{HFXO: NewCrystal(39_000_000)}, 39_000_000, 32_768, efr32.CMU_SYSCLKCTRL_CLKSEL_HFXO},
		"both":      {Config{HFXO: NewCrystal(38_400_000), LFXO: DefaultLFXO()}, 38_400_000, 32_768, efr32.CMU_SYSCLKCTRL_CLKSEL_HFXO},
		"lfxo-only": {Config{LFXO: NewCrystal(32_000)}, 19_000_000, 32_000, efr32.CMU_SYSCLKCTRL_CLKSEL_HFRCODPLL},
	}
	for name, tc := range cases {
		chip := efr32sim.New()
		c, err := Resolve(chip.P.CMU, tc.cfg)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if c.HFCLK() != tc.hf || c.LFCLK() != tc.lf {
			t.Fatalf("%s: hf=%d lf=%d", name, c.HFCLK(), c.LFCLK())
		}
		if c.PCLK() != c.HFCLK() || c.SYSCLK() != c.HFCLK() {
			t.Fatalf("%s: pclk=%d sysclk=%d hfclk=%d", name, c.PCLK(), c.SYSCLK(), c.HFCLK())
		}
		if got := clksel(chip); got != tc.sel {
			t.Fatalf("%s: CLKSEL=%d want %d", name, got, tc.sel)
		}
	}
}

func TestResolveOscillatorTimeout(t *testing.T) {
	chip := efr32sim.New()
	chip.StallHFXO(true)
	_, err := Resolve(chip.P.CMU, Config{HFXO: NewCrystal(39_000_000)})
	if !errors.Is(err, ErrOscTimeout) {
		t.Fatalf("err = %v", err)
	}
	if n := len(chip.Space.WritesTo(chip.P.CMU.SYSCLKCTRL.Addr())); n != 0 {
		t.Fatalf("SYSCLKCTRL written %d times after timeout", n)
	}

	chip = efr32sim.New()
	chip.StallLFXO(true)
	_, err = Resolve(chip.P.CMU, Config{LFXO: DefaultLFXO()})
	if !errors.Is(err, ErrOscTimeout) || errcode.Of(err) != errcode.OscTimeout {
		t.Fatalf("lfxo err = %v", err)
	}
	// The CMU is free again after a failed resolve.
	chip.StallLFXO(false)
	if _, err := Resolve(chip.P.CMU, Config{LFXO: DefaultLFXO()}); err != nil {
		t.Fatal(err)
	}
}

func TestResolveRejectsZeroCrystal(t *testing.T) {
	chip := efr32sim.New()
	for _, cfg := range []Config{{HFXO: NewCrystal(0)}, {LFXO: NewCrystal(0)}} {
		if _, err := Resolve(chip.P.CMU, cfg); !errors.Is(err, ErrInvalidFrequency) {
			t.Fatalf("err = %v", err)
		}
	}
	if n := len(chip.Space.Writes()); n != 0 {
		t.Fatalf("%d register writes on rejected config", n)
	}
}

func TestFreezeOwnsCMU(t *testing.T) {
	chip := efr32sim.New()
	c, _ := Resolve(chip.P.CMU, Config{})
	f, err := c.Freeze(chip.P.CMU)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Freeze(chip.P.CMU); !errors.Is(err, errcode.InUse) {
		t.Fatalf("second freeze: %v", err)
	}
	if _, err := Resolve(chip.P.CMU, Config{}); !errors.Is(err, errcode.InUse) {
		t.Fatalf("resolve while frozen: %v", err)
	}
	if f.PCLK() != 19_000_000 || f.SYSCLK() != f.HFCLK() || f.LFCLK() != 32_768 {
		t.Fatal("frozen accessors")
	}

	cmu := f.Release()
	if cmu != chip.P.CMU || f.Release() != nil || f.Live() {
		t.Fatal("release must hand back the CMU once")
	}
	if err := f.Enable(efr32.GateGPIO); !errors.Is(err, ErrReleased) {
		t.Fatalf("enable after release: %v", err)
	}
	if f.PCLK() != 19_000_000 {
		t.Fatal("frequencies must survive release")
	}
	c2, err := Resolve(cmu, Config{HFXO: NewCrystal(39_000_000)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c2.Freeze(cmu); err != nil {
		t.Fatal(err)
	}
}

func TestSequentialEnablesKeepEachOther(t *testing.T) {
	chip := efr32sim.New()
	c, _ := Resolve(chip.P.CMU, Config{})
	f, _ := c.Freeze(chip.P.CMU)
	chip.Space.ResetLog()

	// Two constructors, one after the other.
	if err := f.EnablePeripheralClock(func(e *efr32.ClockEnable) { e.Set(efr32.GateUSART0) }); err != nil {
		t.Fatal(err)
	}
	if err := f.EnablePeripheralClock(func(e *efr32.ClockEnable) { e.Set(efr32.GateI2C0) }); err != nil {
		t.Fatal(err)
	}
	w := chip.Space.WritesTo(chip.P.CMU.CLKEN0.Addr())
	want := []uint32{1 << 9, 1<<9 | 1<<14}
	if len(w) != 2 || w[0] != want[0] || w[1] != want[1] {
		t.Fatalf("CLKEN0 writes %#x, want %#x", w, want)
	}
	if !f.Enabled(efr32.GateUSART0) || !f.Enabled(efr32.GateI2C0) {
		t.Fatal("gate lost")
	}
}

func TestConcurrentEnables(t *testing.T) {
	chip := efr32sim.New()
	c, _ := Resolve(chip.P.CMU, Config{})
	f, _ := c.Freeze(chip.P.CMU)
	gates := []efr32.Gate{
		efr32.GateLDMA, efr32.GateTIMER0, efr32.GateTIMER1, efr32.GateTIMER2,
		efr32.GateTIMER3, efr32.GateTIMER4, efr32.GateUSART0, efr32.GateIADC0,
		efr32.GateI2C0, efr32.GateI2C1, efr32.GateGPIO, efr32.GateEUSART0, efr32.GateEUSART1,
	}
	var wg sync.WaitGroup
	for _, g := range gates {
		wg.Add(1)
		go func(g efr32.Gate) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if err := f.Enable(g); err != nil {
					t.Error(err)
					return
				}
			}
		}(g)
	}
	wg.Wait()
	for _, g := range gates {
		if !f.Enabled(g) {
			t.Fatalf("gate %+v lost", g)
		}
	}
}
