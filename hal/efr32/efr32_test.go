package efr32

import (
	"errors"
	"testing"

	"efr32hal/errcode"
	"efr32hal/hal/reg/regsim"
)

func TestTakeOncePerSpace(t *testing.T) {
	s := regsim.New()
	p, err := Take(s)
	if err != nil || p == nil {
		t.Fatalf("Take: %v", err)
	}
	if _, err := Take(s); !errors.Is(err, errcode.InUse) {
		t.Fatalf("second Take: %v", err)
	}
	if _, err := Take(regsim.New()); err != nil {
		t.Fatalf("fresh space: %v", err)
	}
}

func TestClaimsArena(t *testing.T) {
	p, _ := Take(regsim.New())
	if err := p.USART0.Claim(); err != nil {
		t.Fatal(err)
	}
	err := p.USART0.Claim()
	if !errors.Is(err, errcode.InUse) {
		t.Fatalf("double claim: %v", err)
	}
	if err.Error() != "usart0: in_use" {
		t.Fatalf("message %q", err)
	}
	p.USART0.Unclaim()
	if err := p.USART0.Claim(); err != nil {
		t.Fatalf("claim after release: %v", err)
	}
	if p.Claims.Held(ResUSART0) != true || p.Claims.Held(ResI2C0) {
		t.Fatal("Held mismatch")
	}
	if err := p.LDMA.ClaimChannel(8); !errors.Is(err, errcode.Unsupported) {
		t.Fatalf("channel 8: %v", err)
	}
	if err := p.LDMA.ClaimChannel(7); err != nil {
		t.Fatal(err)
	}
	if err := p.LDMA.ClaimChannel(7); !errors.Is(err, errcode.InUse) {
		t.Fatalf("channel 7 twice: %v", err)
	}
}

func TestAddresses(t *testing.T) {
	p, _ := Take(regsim.New())
	cases := map[string]struct{ got, want uintptr }{
		"cmu.clken0":    {p.CMU.CLKEN0.Addr(), 0x4000_8064},
		"gpio.pb.model": {p.GPIO.Port[1].MODEL.Addr(), 0x4003_C064},
		"timer2.top":    {p.TIMER2.TOP.Addr(), 0x4005_0020},
		"timer0.cc1.oc": {p.TIMER0.CC[1].OC.Addr(), 0x4004_8088},
		"ldma.ch1.ctrl": {p.LDMA.CH[1].CTRL.Addr(), 0x4004_00B4},
		"systick.rvr":   {p.SysTick.RVR.Addr(), 0xE000_E014},
	}
	for name, c := range cases {
		if c.got != c.want {
			t.Fatalf("%s: 0x%X want 0x%X", name, c.got, c.want)
		}
	}
	if p.TIMER0.MaxTop() != 0xFFFF_FFFF || p.TIMER3.MaxTop() != 0xFFFF {
		t.Fatal("timer widths")
	}
	if p.Timer(5) != nil || p.Timer(4) != p.TIMER4 {
		t.Fatal("Timer lookup")
	}
}

func TestClockEnable(t *testing.T) {
	p, _ := Take(regsim.New())
	e := NewClockEnable(p.CMU)
	e.Set(GateUSART0)
	e.Set(GateEUSART1)
	if !e.IsSet(GateUSART0) || !e.IsSet(GateEUSART1) || e.IsSet(GateI2C0) {
		t.Fatal("gate bits")
	}
	if p.CMU.CLKEN0.Get() != 1<<9 || p.CMU.CLKEN1.Get() != 1<<23 {
		t.Fatalf("CLKEN0=0x%X CLKEN1=0x%X", p.CMU.CLKEN0.Get(), p.CMU.CLKEN1.Get())
	}
	e.Clear(GateUSART0)
	if e.IsSet(GateUSART0) {
		t.Fatal("clear")
	}
}
