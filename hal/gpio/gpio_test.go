package gpio

import (
	"errors"
	"sync"
	"testing"

	"efr32hal/errcode"
	"efr32hal/hal/clock"
	"efr32hal/hal/efr32"
	"efr32hal/hal/efr32/efr32sim"
)

func split(t *testing.T) (*efr32sim.Chip, *clock.Frozen, *Parts) {
	t.Helper()
	chip := efr32sim.New()
	c, err := clock.Resolve(chip.P.CMU, clock.Config{})
	if err != nil {
		t.Fatal(err)
	}
	f, err := c.Freeze(chip.P.CMU)
	if err != nil {
		t.Fatal(err)
	}
	p, err := Split(chip.P.GPIO, f)
	if err != nil {
		t.Fatal(err)
	}
	return chip, f, p
}

func mustPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	f()
}

func TestSplitClaimsAndGatesClock(t *testing.T) {
	chip, f, p := split(t)
	if !f.Enabled(efr32.GateGPIO) {
		t.Fatal("GPIO clock not enabled")
	}
	if _, err := Split(chip.P.GPIO, f); !errors.Is(err, errcode.InUse) {
		t.Fatalf("second split: %v", err)
	}
	if p.PB2.Pull() != PullNone || p.PD5.String() != "PD5" {
		t.Fatal("initial state")
	}
	regs := p.Release()
	f.Release()
	if _, err := Split(regs, f); !errors.Is(err, errcode.Released) {
		t.Fatalf("split on released clocks: %v", err)
	}
	if chip.P.Claims.Held(efr32.ResGPIO) {
		t.Fatal("failed split must not keep the block")
	}
}

func TestPushPullOutput(t *testing.T) {
	chip, _, p := split(t)
	led := p.PB2.IntoPushPullOutput()
	pb := chip.P.GPIO.Port[PortB]

	if got := pb.MODEL.Field(efr32.GPIO_MODE_Msk, 8); got != efr32.GPIO_MODE_PUSHPULL {
		t.Fatalf("PB2 mode = %d", got)
	}
	led.SetHigh()
	if pb.DOUT.Get() != 1<<2 || !led.IsSetHigh() {
		t.Fatalf("DOUT = %#x", pb.DOUT.Get())
	}
	led.Toggle()
	if !led.IsSetLow() {
		t.Fatal("toggle")
	}
	led.Set(true)
	led.SetLow()
	if pb.DOUT.Get() != 0 {
		t.Fatal("SetLow")
	}
	if led.Drive() != DriveStandard || led.OpenDrain() {
		t.Fatal("drive")
	}
}

func TestInputPulls(t *testing.T) {
	chip, _, p := split(t)
	pc := chip.P.GPIO.Port[PortC]

	up := p.PC9.IntoPullUpInput()
	if got := pc.MODEH.Field(efr32.GPIO_MODE_Msk, 4); got != efr32.GPIO_MODE_INPUTPULL {
		t.Fatalf("PC9 mode = %d", got)
	}
	if !pc.DOUT.HasBits(1<<9) || up.Pull() != PullUp {
		t.Fatal("pull-up must set DOUT")
	}
	down := up.IntoPullDownInput()
	if pc.DOUT.HasBits(1<<9) || down.Pull() != PullDown {
		t.Fatal("pull-down must clear DOUT")
	}
	fl := down.IntoFloatingInput()
	if got := pc.MODEH.Field(efr32.GPIO_MODE_Msk, 4); got != efr32.GPIO_MODE_INPUT {
		t.Fatalf("floating mode = %d", got)
	}
	chip.Space.Poke(pc.DIN.Addr(), 1<<9)
	if !fl.IsHigh() || fl.IsLow() {
		t.Fatal("IsHigh must read DIN")
	}
	chip.Space.Poke(pc.DIN.Addr(), 0)
	if fl.IsHigh() {
		t.Fatal("IsHigh after clear")
	}
}

func TestDriveStrengthAndOtherModes(t *testing.T) {
	chip, _, p := split(t)
	pa := chip.P.GPIO.Port[PortA]

	weak := p.PA8.IntoPushPullOutputDrive(DriveWeak)
	if pa.MODEH.Field(efr32.GPIO_MODE_Msk, 0) != efr32.GPIO_MODE_PUSHPULLALT {
		t.Fatal("weak must use the ALT mode")
	}
	if pa.CTRL.Field(efr32.GPIO_P_CTRL_DRIVESTRENGTHALT_Msk, efr32.GPIO_P_CTRL_DRIVESTRENGTHALT_Pos) != 1 {
		t.Fatal("weak alt drive not set")
	}
	strong := weak.IntoPushPullOutputDrive(DriveStrong)
	if pa.CTRL.Field(efr32.GPIO_P_CTRL_DRIVESTRENGTHALT_Msk, efr32.GPIO_P_CTRL_DRIVESTRENGTHALT_Pos) != 0 || strong.Drive() != DriveStrong {
		t.Fatal("strong alt drive")
	}
	od := strong.IntoOpenDrainOutput()
	if pa.MODEH.Field(efr32.GPIO_MODE_Msk, 0) != efr32.GPIO_MODE_WIREDAND || !od.OpenDrain() {
		t.Fatal("open drain")
	}
	an := p.PA5.IntoAnalog()
	if pa.MODEL.Field(efr32.GPIO_MODE_Msk, 20) != efr32.GPIO_MODE_DISABLED || an.Port() != PortA || an.Number() != 5 {
		t.Fatal("analog")
	}
	alt := an.IntoAlternate(3)
	if alt.Function() != 3 || pa.MODEL.Field(efr32.GPIO_MODE_Msk, 20) != efr32.GPIO_MODE_PUSHPULL {
		t.Fatal("alternate")
	}
	// Neighbouring fields untouched.
	if pa.MODEL.Field(efr32.GPIO_MODE_Msk, 16) != 0 || pa.MODEL.Field(efr32.GPIO_MODE_Msk, 24) != 0 {
		t.Fatalf("MODEL = %#x", pa.MODEL.Get())
	}
}

func TestConsumedValuePanics(t *testing.T) {
	_, _, p := split(t)
	in := p.PB1
	out := in.IntoPushPullOutput()
	mustPanic(t, "read consumed input", func() { in.IsHigh() })
	mustPanic(t, "transition consumed input", func() { in.IntoAnalog() })
	out.SetHigh()

	again := out.IntoPullUpInput()
	mustPanic(t, "write consumed output", func() { out.SetLow() })
	_ = again.IsHigh()

	p.Release()
	mustPanic(t, "use after release", func() { again.IsHigh() })
	mustPanic(t, "zero value", func() { Output{}.SetHigh() })
}

func TestReleaseOnlyOnce(t *testing.T) {
	chip, f, p1 := split(t)
	if p1.Release() == nil {
		t.Fatal("first release must return the block")
	}
	p2, err := Split(chip.P.GPIO, f)
	if err != nil {
		t.Fatalf("split after release: %v", err)
	}
	if p1.Release() != nil {
		t.Fatal("second release must return nil")
	}
	if !chip.P.Claims.Held(efr32.ResGPIO) {
		t.Fatal("stale release freed the live owner's claim")
	}
	if _, err := Split(chip.P.GPIO, f); !errors.Is(err, errcode.InUse) {
		t.Fatalf("split while p2 is live: %v", err)
	}
	p2.PA0.IntoPushPullOutput().SetHigh()
}

func TestLive(t *testing.T) {
	_, _, p := split(t)
	in := p.PC4
	if !in.Live() {
		t.Fatal("fresh pin must be live")
	}
	an := in.IntoAnalog()
	if in.Live() || !an.Live() {
		t.Fatal("mode change must move liveness to the new value")
	}
	p.Release()
	if an.Live() {
		t.Fatal("released pins must not be live")
	}
	if (Analog{}).Live() {
		t.Fatal("zero value must not be live")
	}
}

func TestPortSetsDoNotRace(t *testing.T) {
	chip, _, p := split(t)
	outs := []Output{
		p.PC0.IntoPushPullOutput(), p.PC1.IntoPushPullOutput(), p.PC2.IntoPushPullOutput(),
		p.PC3.IntoPushPullOutput(), p.PC4.IntoPushPullOutput(), p.PC5.IntoPushPullOutput(),
	}
	var wg sync.WaitGroup
	for _, o := range outs {
		wg.Add(1)
		go func(o Output) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				o.Toggle()
			}
			o.SetHigh()
		}(o)
	}
	wg.Wait()
	if got := chip.P.GPIO.Port[PortC].DOUT.Get(); got != 0x3F {
		t.Fatalf("DOUT = %#x, want 0x3f", got)
	}
}
