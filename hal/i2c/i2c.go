// Package i2c is a polled I2C controller driver. A Bus satisfies
// tinygo.org/x/drivers.I2C, so sensor drivers written against that
// interface run on it unchanged.
package i2c

import (
	"sync"

	"efr32hal/errcode"
	"efr32hal/hal/clock"
	"efr32hal/hal/efr32"
	"efr32hal/hal/reg"
	"efr32hal/hal/timing"
	"efr32hal/x/fmtx"

	"tinygo.org/x/drivers"
)

var _ drivers.I2C = (*Bus)(nil)

const DefaultPollLimit = 1_000_000

var (
	ErrNack             = errcode.Nack
	ErrBus              = errcode.BusError
	ErrInvalidData      = errcode.InvalidData
	ErrInvalidConfig    = errcode.InvalidConfig
	ErrInvalidFrequency = errcode.InvalidFrequency
	ErrTimeout          = errcode.Timeout
	ErrReleased         = errcode.Released
)

// Speed is a standard bus rate.
type Speed uint8

const (
	Standard Speed = iota // 100 kHz
	Fast                  // 400 kHz
	FastPlus              // 1 MHz
)

func (s Speed) Hz() uint32 {
	switch s {
	case Fast:
		return 400_000
	case FastPlus:
		return 1_000_000
	}
	return 100_000
}

// Config selects the SCL rate. A non-zero Frequency overrides Speed.
type Config struct {
	Speed     Speed
	Frequency uint32
	PollLimit int
}

func (c Config) withDefaults() Config {
	if c.Frequency == 0 {
		c.Frequency = c.Speed.Hz()
	}
	if c.PollLimit <= 0 {
		c.PollLimit = DefaultPollLimit
	}
	return c
}

// Bus is an I2C controller. Transactions are serialised.
type Bus struct {
	mu     sync.Mutex
	regs   *efr32.I2C
	clocks *clock.Frozen
	cfg    Config
	div    uint32
}

const ifErrors = efr32.I2C_IF_ARBLOST | efr32.I2C_IF_BUSERR

// New claims regs, gates its clock and programs the SCL divider as
// pclk/(8*f) - 1.
func New(regs *efr32.I2C, cfg Config, clocks *clock.Frozen) (*Bus, error) {
	cfg = cfg.withDefaults()
	if uint64(cfg.Frequency)*8 > uint64(clocks.PCLK()) {
		return nil, &errcode.E{C: ErrInvalidFrequency, Op: regs.Name() + ".new", Msg: "scl above pclk/8"}
	}
	if err := regs.Claim(); err != nil {
		return nil, err
	}
	if err := clocks.Enable(regs.Gate); err != nil {
		regs.Unclaim()
		return nil, err
	}
	b := &Bus{regs: regs, clocks: clocks, cfg: cfg}
	b.div = timing.ClkDiv8(clocks.PCLK(), cfg.Frequency)

	regs.EN.Set(efr32.I2C_EN_EN)
	regs.CTRL.Set(efr32.I2C_CTRL_AUTOSN) // controller, manual ACK
	regs.CLKDIV.Set(b.div & efr32.I2C_CLKDIV_DIV_Msk)
	regs.CMD.Set(efr32.I2C_CMD_ABORT | efr32.I2C_CMD_CLEARTX | efr32.I2C_CMD_CLEARPC)
	regs.IF.Set(0)
	fmtx.Logf("%s: scl=%d clkdiv=%d actual=%d", regs.Name(), cfg.Frequency, b.div, b.frequency())
	return b, nil
}

func (b *Bus) frequency() uint32 { return timing.I2CFrequency(b.clocks.PCLK(), b.div) }

// Frequency is the SCL rate the divider produces.
func (b *Bus) Frequency() uint32 { return b.frequency() }

// Divider is the CLKDIV value in use.
func (b *Bus) Divider() uint32 { return b.div }

func (b *Bus) fail(op string, c errcode.Code) error {
	return &errcode.E{C: c, Op: b.regs.Name() + "." + op}
}

// -----------------------------------------------------------------------------
// bus primitives (caller holds lock)
// -----------------------------------------------------------------------------

// await waits for the target's answer to the byte just sent.
func (b *Bus) await(op string) error {
	r := b.regs
	v := reg.WaitAny(r.IF, efr32.I2C_IF_ACK|efr32.I2C_IF_NACK|ifErrors, b.cfg.PollLimit)
	switch {
	case v == 0:
		r.CMD.Set(efr32.I2C_CMD_ABORT)
		return b.fail(op, ErrTimeout)
	case v&ifErrors != 0:
		r.CMD.Set(efr32.I2C_CMD_ABORT)
		r.IF.ClearBits(ifErrors | efr32.I2C_IF_ACK | efr32.I2C_IF_NACK)
		return b.fail(op, ErrBus)
	case v&efr32.I2C_IF_NACK != 0:
		r.IF.ClearBits(efr32.I2C_IF_NACK | efr32.I2C_IF_ACK)
		b.stop()
		return b.fail(op, ErrNack)
	}
	r.IF.ClearBits(efr32.I2C_IF_ACK)
	return nil
}

func (b *Bus) start(addr uint8, read bool) error {
	r := b.regs
	r.IF.ClearBits(efr32.I2C_IF_START | efr32.I2C_IF_MSTOP)
	r.CMD.Set(efr32.I2C_CMD_START)
	a := uint32(addr) << 1
	if read {
		a |= 1
	}
	r.TXDATA.Set(a)
	return b.await("addr")
}

func (b *Bus) write(p []byte) error {
	for _, c := range p {
		if !reg.Wait(b.regs.STATUS, efr32.I2C_STATUS_TXBL, true, b.cfg.PollLimit) {
			b.regs.CMD.Set(efr32.I2C_CMD_ABORT)
			return b.fail("write", ErrTimeout)
		}
		b.regs.TXDATA.Set(uint32(c))
		if err := b.await("write"); err != nil {
			return err
		}
	}
	return nil
}

// read ACKs every byte but the last, which it NACKs.
func (b *Bus) read(p []byte) error {
	r := b.regs
	for i := range p {
		if !reg.Wait(r.STATUS, efr32.I2C_STATUS_RXDATAV, true, b.cfg.PollLimit) {
			r.CMD.Set(efr32.I2C_CMD_ABORT)
			return b.fail("read", ErrTimeout)
		}
		p[i] = byte(r.RXDATA.Get())
		if i == len(p)-1 {
			r.CMD.Set(efr32.I2C_CMD_NACK)
		} else {
			r.CMD.Set(efr32.I2C_CMD_ACK)
		}
	}
	return nil
}

func (b *Bus) stop() {
	b.regs.CMD.Set(efr32.I2C_CMD_STOP)
	if reg.Wait(b.regs.IF, efr32.I2C_IF_MSTOP, true, b.cfg.PollLimit) {
		b.regs.IF.ClearBits(efr32.I2C_IF_MSTOP)
	}
}

// -----------------------------------------------------------------------------
// transactions
// -----------------------------------------------------------------------------

func (b *Bus) begin(op string, addr uint8) error {
	if b.regs == nil {
		return &errcode.E{C: ErrReleased, Op: "i2c." + op}
	}
	if addr > 0x7F {
		return &errcode.E{C: ErrInvalidConfig, Op: b.regs.Name() + "." + op, Msg: fmtx.Sprintf("address %#x", addr)}
	}
	return nil
}

// Write sends p to the 7-bit address addr.
func (b *Bus) Write(addr uint8, p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin("write", addr); err != nil {
		return err
	}
	if len(p) == 0 {
		return b.fail("write", ErrInvalidData)
	}
	if err := b.start(addr, false); err != nil {
		return err
	}
	if err := b.write(p); err != nil {
		return err
	}
	b.stop()
	return nil
}

// Read fills p from addr.
func (b *Bus) Read(addr uint8, p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin("read", addr); err != nil {
		return err
	}
	if len(p) == 0 {
		return b.fail("read", ErrInvalidData)
	}
	if err := b.start(addr, true); err != nil {
		return err
	}
	if err := b.read(p); err != nil {
		return err
	}
	b.stop()
	return nil
}

// WriteRead writes w, then reads r after a repeated start, the usual
// register read.
func (b *Bus) WriteRead(addr uint8, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin("write_read", addr); err != nil {
		return err
	}
	if len(w) == 0 || len(r) == 0 {
		return b.fail("write_read", ErrInvalidData)
	}
	if err := b.start(addr, false); err != nil {
		return err
	}
	if err := b.write(w); err != nil {
		return err
	}
	if err := b.start(addr, true); err != nil {
		return err
	}
	if err := b.read(r); err != nil {
		return err
	}
	b.stop()
	return nil
}

// Tx implements drivers.I2C.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return &errcode.E{C: ErrInvalidConfig, Op: "i2c.tx", Msg: "10-bit addresses unsupported"}
	}
	switch {
	case len(w) > 0 && len(r) > 0:
		return b.WriteRead(uint8(addr), w, r)
	case len(w) > 0:
		return b.Write(uint8(addr), w)
	case len(r) > 0:
		return b.Read(uint8(addr), r)
	}
	return &errcode.E{C: ErrInvalidData, Op: "i2c.tx"}
}

// Release disables the controller and returns its registers.
func (b *Bus) Release() *efr32.I2C {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.regs
	if r == nil {
		return nil
	}
	r.EN.Set(0)
	r.Unclaim()
	b.regs = nil
	return r
}
