package spi

import (
	"bytes"
	"errors"
	"testing"

	"efr32hal/errcode"
	"efr32hal/hal/clock"
	"efr32hal/hal/efr32"
	"efr32hal/hal/efr32/efr32sim"
)

func setup(t *testing.T) (*efr32sim.Chip, *clock.Frozen) {
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
	return chip, f
}

func TestUSARTModeBits(t *testing.T) {
	cases := []struct {
		mode  Mode
		order BitOrder
		want  uint32
	}{
		{Mode0, MSBFirst, efr32.USART_CTRL_SYNC | efr32.USART_CTRL_MSBF},
		{Mode1, MSBFirst, efr32.USART_CTRL_SYNC | efr32.USART_CTRL_MSBF | efr32.USART_CTRL_CLKPHA},
		{Mode2, LSBFirst, efr32.USART_CTRL_SYNC | efr32.USART_CTRL_CLKPOL},
		{Mode3, LSBFirst, efr32.USART_CTRL_SYNC | efr32.USART_CTRL_CLKPOL | efr32.USART_CTRL_CLKPHA},
	}
	for _, tc := range cases {
		chip, f := setup(t)
		b, err := NewUSART(chip.P.USART0, Config{Mode: tc.mode, BitOrder: tc.order}, f)
		if err != nil {
			t.Fatal(err)
		}
		if got := chip.P.USART0.CTRL.Get(); got != tc.want {
			t.Fatalf("mode %d: CTRL = %#x, want %#x", tc.mode, got, tc.want)
		}
		if b.Mode() != tc.mode {
			t.Fatalf("Mode() = %d", b.Mode())
		}
	}
}

func TestUSARTDivider(t *testing.T) {
	chip, f := setup(t)
	b, err := NewUSART(chip.P.USART0, Config{}, f)
	if err != nil {
		t.Fatal(err)
	}
	// 39 MHz / (2 * 1 MHz) = 19, minus one, times 256
	if chip.P.USART0.CLKDIV.Get() != 18*256 || b.Divider() != 18*256 {
		t.Fatalf("CLKDIV = %#x", chip.P.USART0.CLKDIV.Get())
	}
	if b.Frequency() != 1_026_315 {
		t.Fatalf("Frequency = %d", b.Frequency())
	}
	cmd := chip.P.USART0.CMD.Get()
	if cmd != efr32.USART_CMD_MASTEREN|efr32.USART_CMD_RXEN|efr32.USART_CMD_TXEN {
		t.Fatalf("CMD = %#x", cmd)
	}
}

func TestEUSARTSetup(t *testing.T) {
	chip, f := setup(t)
	b, err := NewEUSART(chip.P.EUSART1, Config{Mode: Mode3, Frequency: 2_000_000}, f)
	if err != nil {
		t.Fatal(err)
	}
	r := chip.P.EUSART1
	if r.CFG0.Get() != efr32.EUSART_CFG0_SYNC|efr32.EUSART_CFG0_MSBF {
		t.Fatalf("CFG0 = %#x", r.CFG0.Get())
	}
	if r.CFG2.Get() != efr32.EUSART_CFG2_MASTER|efr32.EUSART_CFG2_CLKPOL|efr32.EUSART_CFG2_CLKPHA {
		t.Fatalf("CFG2 = %#x", r.CFG2.Get())
	}
	// 39 MHz / 16 MHz = 2, minus one
	if r.CLKDIV.Get() != 1 || b.Frequency() != 2_437_500 {
		t.Fatalf("CLKDIV = %d, rate %d", r.CLKDIV.Get(), b.Frequency())
	}
	if !f.Enabled(efr32.GateEUSART1) {
		t.Fatal("clock gate")
	}
}

func TestRejects(t *testing.T) {
	chip, f := setup(t)
	if _, err := NewUSART(chip.P.USART0, Config{Frequency: 20_000_000}, f); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("usart: %v", err)
	}
	if _, err := NewEUSART(chip.P.EUSART0, Config{Frequency: 5_000_000}, f); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("eusart: %v", err)
	}
	if _, err := NewEUSART(chip.P.EUSART0, Config{Mode: 4}, f); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("mode: %v", err)
	}
	if chip.P.Claims.Held(efr32.ResUSART0) || chip.P.Claims.Held(efr32.ResEUSART0) {
		t.Fatal("rejected config must not claim the block")
	}
}

func TestTransfer(t *testing.T) {
	chip, f := setup(t)
	b, _ := NewUSART(chip.P.USART0, Config{}, f)
	chip.USART0().Respond(func(x byte) byte { return ^x })

	w := []byte{0x00, 0x0F, 0xA5}
	r := make([]byte, 3)
	if err := b.Transfer(r, w); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(r, []byte{0xFF, 0xF0, 0x5A}) {
		t.Fatalf("read % x", r)
	}
	if err := b.Transfer(make([]byte, 2), w); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("length mismatch: %v", err)
	}
}

func TestReadClocksZeros(t *testing.T) {
	chip, f := setup(t)
	b, _ := NewEUSART(chip.P.EUSART0, Config{}, f)
	chip.EUSART0().Respond(func(x byte) byte { return x + 1 })

	p := make([]byte, 4)
	if err := b.Read(p); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(chip.EUSART0().Sent(), []byte{0, 0, 0, 0}) || !bytes.Equal(p, []byte{1, 1, 1, 1}) {
		t.Fatalf("sent % x read % x", chip.EUSART0().Sent(), p)
	}
	if err := b.Write([]byte{7, 8}); err != nil {
		t.Fatal(err)
	}
	if got := chip.EUSART0().Sent(); !bytes.Equal(got[4:], []byte{7, 8}) {
		t.Fatalf("sent % x", got)
	}
}

func TestDriverAdapter(t *testing.T) {
	chip, f := setup(t)
	b, _ := NewEUSART(chip.P.EUSART1, Config{}, f)
	d := b.Driver()
	in, err := d.Transfer(0x3C)
	if err != nil || in != 0x3C {
		t.Fatalf("Transfer = %#x, %v", in, err)
	}
	r := make([]byte, 2)
	if err := d.Tx([]byte{1, 2}, r); err != nil || !bytes.Equal(r, []byte{1, 2}) {
		t.Fatalf("Tx = % x, %v", r, err)
	}
	if err := d.Tx(nil, nil); err != nil {
		t.Fatalf("empty Tx: %v", err)
	}
}

func TestOverrunReported(t *testing.T) {
	chip, f := setup(t)
	b, _ := NewUSART(chip.P.USART0, Config{}, f)
	chip.P.USART0.IF.SetBits(efr32.USART_IF_RXOF)
	if err := b.Write([]byte{1}); !errors.Is(err, ErrOverrun) {
		t.Fatalf("err = %v", err)
	}
	if chip.P.USART0.IF.HasBits(efr32.USART_IF_RXOF) {
		t.Fatal("overrun flag must be cleared")
	}
	if err := b.Write([]byte{1}); err != nil {
		t.Fatalf("after overrun: %v", err)
	}
}

func TestTimeout(t *testing.T) {
	chip, f := setup(t)
	b, _ := NewEUSART(chip.P.EUSART0, Config{PollLimit: 10}, f)
	chip.EUSART0().StallTx(true)
	if err := b.Write([]byte{1}); errcode.Of(err) != errcode.Timeout {
		t.Fatalf("err = %v", err)
	}
}

func TestRelease(t *testing.T) {
	chip, f := setup(t)
	b, _ := NewUSART(chip.P.USART0, Config{}, f)
	if b.ReleaseEUSART() != nil {
		t.Fatal("USART bus must not hand out an EUSART")
	}
	if !chip.P.Claims.Held(efr32.ResUSART0) {
		t.Fatal("wrong-kind release must leave the bus claimed")
	}
	if got := b.ReleaseUSART(); got != chip.P.USART0 {
		t.Fatalf("ReleaseUSART = %v", got)
	}
	if b.ReleaseUSART() != nil {
		t.Fatal("second release")
	}
	b.Release()
	if err := b.Write([]byte{1}); !errors.Is(err, ErrReleased) {
		t.Fatalf("after release: %v", err)
	}
	if _, err := NewUSART(chip.P.USART0, Config{}, f); err != nil {
		t.Fatalf("reuse: %v", err)
	}

	e, _ := NewEUSART(chip.P.EUSART1, Config{}, f)
	e.Release()
	if chip.P.Claims.Held(efr32.ResEUSART1) || e.ReleaseEUSART() != nil {
		t.Fatal("Release must free the EUSART once")
	}
}
