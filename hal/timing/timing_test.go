package timing

import (
	"testing"
	"time"
)

func relErr(got, want uint32) float64 {
	d := float64(got) - float64(want)
	if d < 0 {
		d = -d
	}
	return d / float64(want)
}

func TestUARTClkDivWithinOnePerMille(t *testing.T) {
	// The divider resolves 1/(16*src/baud) of the rate, so one part in a
	// thousand needs src >= 62.5*baud. Coarser ratios are held to 1/256.
	srcs := []uint32{19_000_000, 19_200_000, 38_400_000, 39_000_000, 78_000_000}
	bauds := []uint32{300, 1200, 2400, 9600, 19_200, 38_400, 57_600, 115_200, 230_400, 460_800, 921_600, 1_000_000, 2_000_000}
	for _, src := range srcs {
		for _, baud := range bauds {
			if uint64(src) < 16*uint64(baud) {
				continue
			}
			div := UARTClkDiv(src, baud)
			if div == UARTClkDivMax {
				continue // saturated: slowest rate the field can express
			}
			got := UARTBaud(src, div)
			tol := 1.0 / 256
			if uint64(src) >= 63*uint64(baud) {
				tol = 1.0 / 1000
			}
			if e := relErr(got, baud); e > tol {
				t.Fatalf("src=%d baud=%d div=%d -> %d (err %.5f)", src, baud, div, got, e)
			}
		}
	}
}

func TestUARTBaudReachable(t *testing.T) {
	cases := []struct {
		src, baud uint32
		want      bool
	}{
		{39_000_000, 115_200, true},
		{39_000_000, 2_437_500, true},  // exactly src/16
		{39_000_000, 2_437_501, false}, // above src/16
		{19_000_000, 300, true},        // CLKDIV 1013077
		{39_000_000, 300, false},       // CLKDIV would be 2079744
		{39_000_000, 0, false},
	}
	for _, c := range cases {
		if got := UARTBaudReachable(c.src, c.baud); got != c.want {
			t.Fatalf("UARTBaudReachable(%d, %d) = %v", c.src, c.baud, got)
		}
	}
}

func TestUARTClkDivKnownValues(t *testing.T) {
	cases := []struct{ src, baud, want uint32 }{
		{19_000_000, 115_200, 2382},    // 256*19e6/1843200 = 2638.88 -> 2638 - 256
		{39_000_000, 115_200, 5160},    // 5416.66 -> 5416 - 256
		{16 * 115_200, 115_200, 0},     // exact minimum
		{1_000_000, 115_200, 0},        // target above src/16 saturates at 0
		{39_000_000, 0, 0},             // zero target
		{78_000_000, 1, UARTClkDivMax}, // clamps
	}
	for _, c := range cases {
		if got := UARTClkDiv(c.src, c.baud); got != c.want {
			t.Fatalf("UARTClkDiv(%d, %d) = %d, want %d", c.src, c.baud, got, c.want)
		}
	}
}

func TestClkDiv8(t *testing.T) {
	if got := ClkDiv8(19_200_000, 100_000); got != 23 {
		t.Fatalf("ClkDiv8(19.2 MHz, 100 kHz) = %d, want 23", got)
	}
	cases := []struct{ src, target, want uint32 }{
		{19_000_000, 100_000, 22},
		{39_000_000, 400_000, 11},
		{39_000_000, 1_000_000, 3},
		{1_000_000, 400_000, 0},        // target above src/8
		{39_000_000, 0, 0},             // zero target
		{80_000_000, 1000, ClkDiv8Max}, // clamps to nine bits
	}
	for _, c := range cases {
		if got := ClkDiv8(c.src, c.target); got != c.want {
			t.Fatalf("ClkDiv8(%d, %d) = %d, want %d", c.src, c.target, got, c.want)
		}
	}
	if f := I2CFrequency(19_200_000, 23); f != 100_000 {
		t.Fatalf("I2CFrequency = %d", f)
	}
	// Flooring the quotient keeps the produced rate at or above target.
	for _, target := range []uint32{10_000, 100_000, 400_000, 1_000_000} {
		if f := ClkDiv8Frequency(39_000_000, ClkDiv8(39_000_000, target)); f < target {
			t.Fatalf("target %d produced %d", target, f)
		}
	}
}

func TestSPIUSARTClkDiv(t *testing.T) {
	cases := []struct{ src, target, want uint32 }{
		{39_000_000, 1_000_000, 18 * 256},
		{38_400_000, 1_000_000, 18 * 256},
		{19_000_000, 9_500_000, 0},
		{19_000_000, 20_000_000, 0}, // subtraction saturates before the multiply
		{19_000_000, 0, 0},
		{80_000_000, 1, SPIUSARTClkDivMax},
	}
	for _, c := range cases {
		if got := SPIUSARTClkDiv(c.src, c.target); got != c.want {
			t.Fatalf("SPIUSARTClkDiv(%d, %d) = %d, want %d", c.src, c.target, got, c.want)
		}
	}
	if f := SPIUSARTFrequency(39_000_000, 18*256); f != 1_026_315 {
		t.Fatalf("SPIUSARTFrequency = %d", f)
	}
}

func TestTimerPrescaleTopWithinOnePercent(t *testing.T) {
	shift, top := TimerPrescaleTop(39_000_000, 10_000, 0xFFFF)
	got := TimerFrequency(39_000_000, shift, top)
	if relErr(got, 10_000) > 0.01 {
		t.Fatalf("shift=%d top=%d -> %d Hz", shift, top, got)
	}
	if shift != 0 || top != 3899 {
		t.Fatalf("first fitting shift expected: (%d, %d)", shift, top)
	}

	// 16-bit counter at a low rate needs a prescaler.
	shift, top = TimerPrescaleTop(39_000_000, 100, 0xFFFF)
	if shift != 3 || top != 48_749 || TimerFrequency(39_000_000, shift, top) != 100 {
		t.Fatalf("100 Hz: (%d, %d)", shift, top)
	}
	// 32-bit counter never needs one.
	if shift, _ := TimerPrescaleTop(39_000_000, 1, 0xFFFF_FFFF); shift != 0 {
		t.Fatalf("32-bit shift = %d", shift)
	}
}

func TestTimerPrescaleTopFallback(t *testing.T) {
	// 1 Hz from 80 MHz cannot fit 16 bits even at /1024.
	shift, top := TimerPrescaleTop(80_000_000, 1, 0xFFFF)
	if shift != TimerMaxShift || top != 0xFFFF {
		t.Fatalf("fallback = (%d, %d)", shift, top)
	}
	// Target above the source clock.
	shift, top = TimerPrescaleTop(1_000, 5_000, 0xFFFF)
	if shift != TimerMaxShift || top != 0 {
		t.Fatalf("fast target = (%d, %d)", shift, top)
	}
	if s, tp := TimerPrescaleTop(39_000_000, 0, 0xFFFF); s != 0 || tp != 0 {
		t.Fatal("zero target must yield (0, 0)")
	}
}

func TestTimerPresc(t *testing.T) {
	for shift, want := range map[uint8]uint32{0: 0, 1: 1, 3: 7, 10: 1023} {
		if got := TimerPresc(shift); got != want {
			t.Fatalf("TimerPresc(%d) = %d, want %d", shift, got, want)
		}
	}
}

func TestADCPrescale(t *testing.T) {
	cases := []struct{ src, target, want uint32 }{
		{39_000_000, 10_000_000, 1}, // 39/4 = 9.75 MHz
		{40_000_000, 10_000_000, 1}, // exactly 10 MHz
		{19_000_000, 10_000_000, 0}, // 9.5 MHz
		{39_000_000, 1_000_000, 19}, // 975 kHz
		{39_000_000, 0, 0},
		{80_000_000, 1, ADCPrescaleMax},
	}
	for _, c := range cases {
		got := ADCPrescale(c.src, c.target)
		if got != c.want {
			t.Fatalf("ADCPrescale(%d, %d) = %d, want %d", c.src, c.target, got, c.want)
		}
		if c.target != 0 && got < ADCPrescaleMax && ADCClock(c.src, got) > c.target {
			t.Fatalf("clock %d above target %d", ADCClock(c.src, got), c.target)
		}
	}
}

func TestDelayPlan(t *testing.T) {
	cases := map[string]struct {
		sysclk uint32
		d      time.Duration
		want   Plan
	}{
		"sub-us spin":  {39_000_000, 500 * time.Nanosecond, Plan{SpinCycles: 19}},
		"zero":         {39_000_000, 0, Plan{}},
		"negative":     {39_000_000, -time.Millisecond, Plan{}},
		"1us":          {39_000_000, time.Microsecond, Plan{Rest: 39}},
		"1ms":          {39_000_000, time.Millisecond, Plan{Rest: 39_000}},
		"1s chunks":    {39_000_000, time.Second, Plan{Full: 2, Rest: 39_000_000 - 2*SysTickMaxTicks}},
		"exact reload": {16_777_216, time.Second, Plan{Full: 1}},
		"lone tick":    {1_000_000, time.Microsecond, Plan{SpinCycles: 1}},
	}
	for name, c := range cases {
		if got := DelayPlan(c.sysclk, c.d); got != c.want {
			t.Fatalf("%s: %+v, want %+v", name, got, c.want)
		}
	}
	p := DelayPlan(39_000_000, time.Hour)
	if p.Ticks()+uint64(p.SpinCycles) != 39_000_000*3600 {
		t.Fatalf("hour plan loses ticks: %+v", p)
	}
}
