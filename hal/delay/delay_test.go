package delay

import (
	"errors"
	"testing"
	"time"

	"efr32hal/errcode"
	"efr32hal/hal/clock"
	"efr32hal/hal/efr32"
	"efr32hal/hal/efr32/efr32sim"
)

func setup(t *testing.T) (*efr32sim.Chip, *clock.Frozen, *Delay) {
	t.Helper()
	chip := efr32sim.New()
	c, err := clock.Resolve(chip.P.CMU, clock.Config{HFXO: clock.NewCrystal(39_000_000)})
	if err != nil {
		t.Fatal(err)
	}
	f, err := c.Freeze(chip.P.CMU)
	if err != nil {
		t.Fatal(err)
	}
	d, err := New(chip.P.SysTick, f)
	if err != nil {
		t.Fatal(err)
	}
	return chip, f, d
}

func TestTicksMatchDuration(t *testing.T) {
	cases := []struct {
		name  string
		run   func(d *Delay) error
		ticks uint64
	}{
		{"1us", func(d *Delay) error { return d.DelayUs(1) }, 39},
		{"250us", func(d *Delay) error { return d.DelayUs(250) }, 9_750},
		{"1ms", func(d *Delay) error { return d.DelayMs(1) }, 39_000},
		{"1500ns", func(d *Delay) error { return d.DelayNs(1500) }, 58},
		{"1s", func(d *Delay) error { return d.Sleep(time.Second) }, 39_000_000},
	}
	for _, tc := range cases {
		chip, _, d := setup(t)
		if err := tc.run(d); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got := chip.SysTicks(); got != tc.ticks {
			t.Fatalf("%s: %d ticks, want %d", tc.name, got, tc.ticks)
		}
	}
}

func TestLongDelayChunksReloads(t *testing.T) {
	chip, _, d := setup(t)
	chip.Space.ResetLog()
	if err := d.DelayMs(1000); err != nil {
		t.Fatal(err)
	}
	got := chip.Space.WritesTo(chip.P.SysTick.RVR.Addr())
	want := []uint32{efr32.SYST_RVR_MAX, efr32.SYST_RVR_MAX, 39_000_000 - 2<<24 - 1}
	if len(got) != len(want) {
		t.Fatalf("RVR writes %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RVR writes %v, want %v", got, want)
		}
	}
	if chip.P.SysTick.CSR.Get()&efr32.SYST_CSR_ENABLE != 0 {
		t.Fatal("counter left running")
	}
}

func TestShortDelaysSpin(t *testing.T) {
	chip, _, d := setup(t)
	if err := d.DelayNs(500); err != nil {
		t.Fatal(err)
	}
	if chip.SysTicks() != 0 || d.spun != 19 {
		t.Fatalf("ticks %d spun %d", chip.SysTicks(), d.spun)
	}
	if err := d.Sleep(-time.Second); err != nil || d.spun != 19 {
		t.Fatalf("negative sleep: %v", err)
	}
}

func TestOwnership(t *testing.T) {
	chip, f, d := setup(t)
	if _, err := New(chip.P.SysTick, f); !errors.Is(err, errcode.InUse) {
		t.Fatalf("second delay: %v", err)
	}
	if d.Release() != chip.P.SysTick || d.Release() != nil {
		t.Fatal("release must return SysTick once")
	}
	if err := d.DelayUs(5); !errors.Is(err, ErrReleased) {
		t.Fatalf("after release: %v", err)
	}
	f.Release()
	if _, err := New(chip.P.SysTick, f); !errors.Is(err, ErrReleased) {
		t.Fatalf("stale clocks: %v", err)
	}
}
