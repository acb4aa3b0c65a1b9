// Package spi drives the USART and EUSART blocks as polled SPI masters.
// Chip select is left to the caller, usually a gpio.Output.
package spi

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

var _ drivers.SPI = Device{}

const (
	DefaultFrequency = 1_000_000
	DefaultPollLimit = 1_000_000
)

var (
	ErrInvalidConfig    = errcode.InvalidConfig
	ErrInvalidFrequency = errcode.InvalidFrequency
	ErrInvalidData      = errcode.InvalidData
	ErrOverrun          = errcode.Overrun
	ErrFraming          = errcode.FrameError
	ErrTimeout          = errcode.Timeout
	ErrReleased         = errcode.Released
)

// Mode is the usual CPOL<<1 | CPHA numbering.
type Mode uint8

const (
	Mode0 Mode = iota
	Mode1
	Mode2
	Mode3
)

func (m Mode) cpol() bool { return m&2 != 0 }
func (m Mode) cpha() bool { return m&1 != 0 }

type BitOrder uint8

const (
	MSBFirst BitOrder = iota
	LSBFirst
)

type Config struct {
	Mode      Mode
	BitOrder  BitOrder
	Frequency uint32 // SCLK, 0 means DefaultFrequency
	PollLimit int
}

func (c Config) withDefaults() Config {
	if c.Frequency == 0 {
		c.Frequency = DefaultFrequency
	}
	if c.PollLimit <= 0 {
		c.PollLimit = DefaultPollLimit
	}
	return c
}

func (c Config) validate(op string) error {
	if c.Mode > Mode3 || c.BitOrder > LSBFirst {
		return &errcode.E{C: ErrInvalidConfig, Op: op, Msg: fmtx.Sprintf("mode %d order %d", c.Mode, c.BitOrder)}
	}
	return nil
}

// datapath hides the register differences between USART and EUSART.
type datapath interface {
	name() string
	txReady() reg.Register32
	txMask() uint32
	rxReady() reg.Register32
	rxMask() uint32
	put(b byte)
	get() byte
	// fault reports and clears a latched receive error.
	fault() errcode.Code
	stop()
}

// Bus is one SPI master.
type Bus struct {
	mu     sync.Mutex
	p      datapath
	clocks *clock.Frozen
	cfg    Config
	div    uint32
	actual uint32

	// exactly one is set until release
	usart  *efr32.USART
	eusart *efr32.EUSART
}

// NewUSART sets up a USART in synchronous master mode. The divider is
// 256*(pclk/(2*f) - 1), integer steps only.
func NewUSART(regs *efr32.USART, cfg Config, clocks *clock.Frozen) (*Bus, error) {
	cfg = cfg.withDefaults()
	op := regs.Name() + ".spi"
	if err := cfg.validate(op); err != nil {
		return nil, err
	}
	pclk := clocks.PCLK()
	if uint64(cfg.Frequency)*2 > uint64(pclk) {
		return nil, &errcode.E{C: ErrInvalidFrequency, Op: op, Msg: "sclk above pclk/2"}
	}
	if err := regs.Claim(); err != nil {
		return nil, err
	}
	if err := clocks.Enable(regs.Gate); err != nil {
		regs.Unclaim()
		return nil, err
	}

	ctrl := uint32(efr32.USART_CTRL_SYNC)
	if cfg.Mode.cpol() {
		ctrl |= efr32.USART_CTRL_CLKPOL
	}
	if cfg.Mode.cpha() {
		ctrl |= efr32.USART_CTRL_CLKPHA
	}
	if cfg.BitOrder == MSBFirst {
		ctrl |= efr32.USART_CTRL_MSBF
	}
	div := timing.SPIUSARTClkDiv(pclk, cfg.Frequency)

	regs.EN.Set(efr32.USART_EN_EN)
	regs.CTRL.Set(ctrl)
	regs.FRAME.Set(efr32.USART_FRAME_STOPBITS_ONE<<efr32.USART_FRAME_STOPBITS_Pos | 5)
	regs.CLKDIV.Set(div)
	regs.CMD.Set(efr32.USART_CMD_CLEARRX | efr32.USART_CMD_CLEARTX)
	regs.IF.Set(0)
	regs.CMD.Set(efr32.USART_CMD_MASTEREN | efr32.USART_CMD_RXEN | efr32.USART_CMD_TXEN)

	b := &Bus{p: usartPath{regs}, clocks: clocks, cfg: cfg, div: div, usart: regs}
	b.actual = timing.SPIUSARTFrequency(pclk, div)
	fmtx.Logf("%s: spi mode=%d sclk=%d clkdiv=%#x actual=%d", regs.Name(), cfg.Mode, cfg.Frequency, div, b.actual)
	return b, nil
}

// NewEUSART sets up an EUSART as SPI master with the /8 divider
// pclk/(8*f) - 1.
func NewEUSART(regs *efr32.EUSART, cfg Config, clocks *clock.Frozen) (*Bus, error) {
	cfg = cfg.withDefaults()
	op := regs.Name() + ".spi"
	if err := cfg.validate(op); err != nil {
		return nil, err
	}
	pclk := clocks.PCLK()
	if uint64(cfg.Frequency)*8 > uint64(pclk) {
		return nil, &errcode.E{C: ErrInvalidFrequency, Op: op, Msg: "sclk above pclk/8"}
	}
	if err := regs.Claim(); err != nil {
		return nil, err
	}
	if err := clocks.Enable(regs.Gate); err != nil {
		regs.Unclaim()
		return nil, err
	}

	cfg0 := uint32(efr32.EUSART_CFG0_SYNC)
	if cfg.BitOrder == MSBFirst {
		cfg0 |= efr32.EUSART_CFG0_MSBF
	}
	cfg2 := uint32(efr32.EUSART_CFG2_MASTER)
	if cfg.Mode.cpol() {
		cfg2 |= efr32.EUSART_CFG2_CLKPOL
	}
	if cfg.Mode.cpha() {
		cfg2 |= efr32.EUSART_CFG2_CLKPHA
	}
	div := timing.ClkDiv8(pclk, cfg.Frequency)

	// configuration registers are only writable while disabled
	regs.EN.Set(0)
	regs.CFG0.Set(cfg0)
	regs.CFG2.Set(cfg2)
	regs.FRAMECFG.Set(efr32.EUSART_FRAMECFG_DATABITS_8)
	regs.CLKDIV.Set(div & efr32.EUSART_CLKDIV_DIV_Msk)
	regs.EN.Set(efr32.EUSART_EN_EN)
	regs.IF.Set(0)
	regs.CMD.Set(efr32.EUSART_CMD_RXEN | efr32.EUSART_CMD_TXEN)

	b := &Bus{p: eusartPath{regs}, clocks: clocks, cfg: cfg, div: div, eusart: regs}
	b.actual = timing.ClkDiv8Frequency(pclk, div)
	fmtx.Logf("%s: spi mode=%d sclk=%d clkdiv=%d actual=%d", regs.Name(), cfg.Mode, cfg.Frequency, div, b.actual)
	return b, nil
}

// Frequency is the SCLK rate the divider produces.
func (b *Bus) Frequency() uint32 { return b.actual }

// Divider is the CLKDIV value in use.
func (b *Bus) Divider() uint32 { return b.div }

func (b *Bus) Mode() Mode { return b.cfg.Mode }

// exchange clocks one byte out and returns the byte clocked in.
// Caller holds the lock.
func (b *Bus) exchange(w byte) (byte, error) {
	p := b.p
	if !reg.Wait(p.txReady(), p.txMask(), true, b.cfg.PollLimit) {
		return 0, &errcode.E{C: ErrTimeout, Op: p.name() + ".spi", Msg: "tx"}
	}
	p.put(w)
	if !reg.Wait(p.rxReady(), p.rxMask(), true, b.cfg.PollLimit) {
		return 0, &errcode.E{C: ErrTimeout, Op: p.name() + ".spi", Msg: "rx"}
	}
	r := p.get()
	if c := p.fault(); c != errcode.OK {
		return r, &errcode.E{C: c, Op: p.name() + ".spi"}
	}
	return r, nil
}

func (b *Bus) run(op string, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.p == nil {
		return &errcode.E{C: ErrReleased, Op: "spi." + op}
	}
	n := len(w)
	if n == 0 {
		n = len(r)
	}
	for i := 0; i < n; i++ {
		var out byte
		if w != nil {
			out = w[i]
		}
		in, err := b.exchange(out)
		if err != nil {
			return err
		}
		if r != nil {
			r[i] = in
		}
	}
	return nil
}

// Transfer clocks write out while filling read. The slices must be the
// same length.
func (b *Bus) Transfer(read, write []byte) error {
	if len(read) != len(write) {
		return &errcode.E{C: ErrInvalidConfig, Op: "spi.transfer", Msg: fmtx.Sprintf("read %d write %d", len(read), len(write))}
	}
	if len(write) == 0 {
		return &errcode.E{C: ErrInvalidData, Op: "spi.transfer"}
	}
	return b.run("transfer", write, read)
}

// Write sends p, discarding what comes back.
func (b *Bus) Write(p []byte) error {
	if len(p) == 0 {
		return &errcode.E{C: ErrInvalidData, Op: "spi.write"}
	}
	return b.run("write", p, nil)
}

// Read fills p while clocking out zeros.
func (b *Bus) Read(p []byte) error {
	if len(p) == 0 {
		return &errcode.E{C: ErrInvalidData, Op: "spi.read"}
	}
	return b.run("read", nil, p)
}

// Tx sends w and fills r. Either slice may be nil; when both are set
// they must be the same length.
func (b *Bus) Tx(w, r []byte) error {
	switch {
	case w != nil && r != nil:
		return b.Transfer(r, w)
	case w != nil:
		return b.Write(w)
	case r != nil:
		return b.Read(r)
	}
	return nil
}

// TransferByte exchanges a single byte.
func (b *Bus) TransferByte(w byte) (byte, error) {
	var in [1]byte
	err := b.run("transfer", []byte{w}, in[:])
	return in[0], err
}

// Device adapts a Bus to drivers.SPI, whose single-byte method is also
// named Transfer.
type Device struct{ *Bus }

func (d Device) Transfer(w byte) (byte, error) { return d.TransferByte(w) }

// Driver returns b as a drivers.SPI.
func (b *Bus) Driver() drivers.SPI { return Device{b} }

// Release disables the block and gives up its claim. Later calls do
// nothing.
func (b *Bus) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.release()
}

// ReleaseUSART releases a bus built by NewUSART and returns its block. It
// returns nil for an EUSART bus, which it leaves running, and after
// release.
func (b *Bus) ReleaseUSART() *efr32.USART {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.usart
	if r == nil {
		return nil
	}
	b.release()
	return r
}

// ReleaseEUSART is ReleaseUSART for a bus built by NewEUSART.
func (b *Bus) ReleaseEUSART() *efr32.EUSART {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.eusart
	if r == nil {
		return nil
	}
	b.release()
	return r
}

func (b *Bus) release() {
	if b.p == nil {
		return
	}
	b.p.stop()
	b.p, b.usart, b.eusart = nil, nil, nil
}

// -----------------------------------------------------------------------------
// datapaths
// -----------------------------------------------------------------------------

type usartPath struct{ r *efr32.USART }

func (u usartPath) name() string            { return u.r.Name() }
func (u usartPath) txReady() reg.Register32 { return u.r.STATUS }
func (u usartPath) txMask() uint32          { return efr32.USART_STATUS_TXBL }
func (u usartPath) rxReady() reg.Register32 { return u.r.STATUS }
func (u usartPath) rxMask() uint32          { return efr32.USART_STATUS_RXDATAV }
func (u usartPath) put(b byte)              { u.r.TXDATA.Set(uint32(b)) }
func (u usartPath) get() byte               { return byte(u.r.RXDATA.Get()) }

func (u usartPath) fault() errcode.Code {
	f := u.r.IF.Get()
	switch {
	case f&efr32.USART_IF_RXOF != 0:
		u.r.IF.ClearBits(efr32.USART_IF_RXOF)
		return ErrOverrun
	case f&efr32.USART_IF_FERR != 0:
		u.r.IF.ClearBits(efr32.USART_IF_FERR)
		return ErrFraming
	}
	return errcode.OK
}

func (u usartPath) stop() {
	u.r.CMD.Set(efr32.USART_CMD_RXDIS | efr32.USART_CMD_TXDIS)
	u.r.CTRL.Set(0)
	u.r.EN.Set(0)
	u.r.Unclaim()
}

type eusartPath struct{ r *efr32.EUSART }

func (e eusartPath) name() string            { return e.r.Name() }
func (e eusartPath) txReady() reg.Register32 { return e.r.STATUS }
func (e eusartPath) txMask() uint32          { return efr32.EUSART_STATUS_TXFL }
func (e eusartPath) rxReady() reg.Register32 { return e.r.STATUS }
func (e eusartPath) rxMask() uint32          { return efr32.EUSART_STATUS_RXFL }
func (e eusartPath) put(b byte)              { e.r.TXDATA.Set(uint32(b)) }
func (e eusartPath) get() byte               { return byte(e.r.RXDATA.Get()) }

func (e eusartPath) fault() errcode.Code {
	f := e.r.IF.Get()
	switch {
	case f&efr32.EUSART_IF_RXOF != 0:
		e.r.IF.ClearBits(efr32.EUSART_IF_RXOF)
		return ErrOverrun
	case f&efr32.EUSART_IF_FERR != 0:
		e.r.IF.ClearBits(efr32.EUSART_IF_FERR)
		return ErrFraming
	}
	return errcode.OK
}

func (e eusartPath) stop() {
	e.r.CMD.Set(efr32.EUSART_CMD_RXDIS | efr32.EUSART_CMD_TXDIS)
	e.r.EN.Set(0)
	e.r.Unclaim()
}
