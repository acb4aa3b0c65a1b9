// Package usart drives a USART in asynchronous (UART) mode.
//
// The divider is derived once from the frozen peripheral clock at
// construction. Every wait on a status flag is bounded by
// Config.PollLimit and fails with ErrTimeout instead of hanging.
package usart

import (
	"io"
	"sync"

	"efr32hal/errcode"
	"efr32hal/hal/clock"
	"efr32hal/hal/efr32"
	"efr32hal/hal/reg"
	"efr32hal/hal/timing"
	"efr32hal/x/fmtx"
)

// DefaultPollLimit bounds status polls when Config.PollLimit is zero.
const DefaultPollLimit = 1_000_000

var (
	ErrTimeout          = errcode.Timeout
	ErrNoData           = errcode.NoData
	ErrFraming          = errcode.FrameError
	ErrParity           = errcode.ParityError
	ErrOverrun          = errcode.Overrun
	ErrInvalidFrequency = errcode.InvalidFrequency
	ErrInvalidData      = errcode.InvalidData
	ErrInvalidConfig    = errcode.InvalidConfig
	ErrReleased         = errcode.Released
)

type DataBits uint8

const (
	DataBits8 DataBits = 8
	DataBits9 DataBits = 9
)

type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

type StopBits uint8

const (
	StopBits1 StopBits = iota
	StopBitsHalf
	StopBits1_5
	StopBits2
)

// Config is plain data. Zero fields take the defaults: 115200 baud, 8 data
// bits, no parity, one stop bit.
type Config struct {
	Baud      uint32
	DataBits  DataBits
	Parity    Parity
	StopBits  StopBits
	PollLimit int
}

func DefaultConfig() Config {
	return Config{Baud: 115_200, DataBits: DataBits8, Parity: ParityNone, StopBits: StopBits1, PollLimit: DefaultPollLimit}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Baud == 0 {
		c.Baud = d.Baud
	}
	if c.DataBits == 0 {
		c.DataBits = d.DataBits
	}
	if c.PollLimit <= 0 {
		c.PollLimit = d.PollLimit
	}
	return c
}

// frame returns the FRAME register value.
func (c Config) frame() (uint32, bool) {
	if c.DataBits < 4 || c.DataBits > 16 {
		return 0, false
	}
	var par, stop uint32
	switch c.Parity {
	case ParityNone:
		par = efr32.USART_FRAME_PARITY_NONE
	case ParityEven:
		par = efr32.USART_FRAME_PARITY_EVEN
	case ParityOdd:
		par = efr32.USART_FRAME_PARITY_ODD
	default:
		return 0, false
	}
	switch c.StopBits {
	case StopBits1:
		stop = efr32.USART_FRAME_STOPBITS_ONE
	case StopBitsHalf:
		stop = efr32.USART_FRAME_STOPBITS_HALF
	case StopBits1_5:
		stop = efr32.USART_FRAME_STOPBITS_ONEANDAHALF
	case StopBits2:
		stop = efr32.USART_FRAME_STOPBITS_TWO
	default:
		return 0, false
	}
	// DATABITS encodes n data bits as n-3.
	return uint32(c.DataBits-3)<<efr32.USART_FRAME_DATABITS_Pos |
		par<<efr32.USART_FRAME_PARITY_Pos |
		stop<<efr32.USART_FRAME_STOPBITS_Pos, true
}

var (
	_ io.ReadWriter = (*UART)(nil)
	_ io.ByteReader = (*UART)(nil)
	_ io.ByteWriter = (*UART)(nil)
)

// UART is an asynchronous USART. It is safe for concurrent use; each call
// holds the port for its whole duration.
type UART struct {
	mu     sync.Mutex
	regs   *efr32.USART
	clocks *clock.Frozen
	cfg    Config
	div    uint32
}

// New claims regs, enables its clock through clocks and configures the
// frame and baud rate.
func New(regs *efr32.USART, cfg Config, clocks *clock.Frozen) (*UART, error) {
	cfg = cfg.withDefaults()
	op := regs.Name() + ".new"
	frame, ok := cfg.frame()
	if !ok {
		return nil, &errcode.E{C: ErrInvalidConfig, Op: op}
	}
	if !timing.UARTBaudReachable(clocks.PCLK(), cfg.Baud) {
		return nil, &errcode.E{C: ErrInvalidFrequency, Op: op, Msg: fmtx.Sprintf("baud %d out of range at %d Hz", cfg.Baud, clocks.PCLK())}
	}
	if err := regs.Claim(); err != nil {
		return nil, err
	}
	if err := clocks.Enable(regs.Gate); err != nil {
		regs.Unclaim()
		return nil, err
	}

	u := &UART{regs: regs, clocks: clocks, cfg: cfg}
	regs.EN.Set(efr32.USART_EN_EN)
	regs.CMD.Set(efr32.USART_CMD_RXDIS | efr32.USART_CMD_TXDIS | efr32.USART_CMD_CLEARRX | efr32.USART_CMD_CLEARTX)
	regs.CTRL.Set(0) // asynchronous, 16x oversampling
	regs.FRAME.Set(frame)
	u.setDivider(cfg.Baud)
	regs.CMD.Set(efr32.USART_CMD_RXEN | efr32.USART_CMD_TXEN)
	return u, nil
}

func (u *UART) setDivider(baud uint32) {
	u.div = timing.UARTClkDiv(u.clocks.PCLK(), baud)
	u.regs.CLKDIV.Set(u.div & efr32.USART_CLKDIV_DIV_Msk)
	u.cfg.Baud = baud
	fmtx.Logf("%s: baud=%d clkdiv=%d actual=%d", u.regs.Name(), baud, u.div, u.actual())
}

func (u *UART) actual() uint32 { return timing.UARTBaud(u.clocks.PCLK(), u.div) }

func (u *UART) fail(op string, c errcode.Code) error {
	return &errcode.E{C: c, Op: u.regs.Name() + "." + op}
}

// SetBaudRate rederives the divider from the same frozen clock.
func (u *UART) SetBaudRate(baud uint32) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.regs == nil {
		return &errcode.E{C: ErrReleased, Op: "usart.baud"}
	}
	if !timing.UARTBaudReachable(u.clocks.PCLK(), baud) {
		return u.fail("baud", ErrInvalidFrequency)
	}
	u.setDivider(baud)
	return nil
}

// Baud is the requested rate, ActualBaud the rate the divider produces.
func (u *UART) Baud() uint32 { u.mu.Lock(); defer u.mu.Unlock(); return u.cfg.Baud }

func (u *UART) ActualBaud() uint32 { u.mu.Lock(); defer u.mu.Unlock(); return u.actual() }

// Divider is the CLKDIV value in use.
func (u *UART) Divider() uint32 { u.mu.Lock(); defer u.mu.Unlock(); return u.div }

// caller holds lock
func (u *UART) writeByte(b byte) error {
	if !reg.Wait(u.regs.STATUS, efr32.USART_STATUS_TXBL, true, u.cfg.PollLimit) {
		return u.fail("write", ErrTimeout)
	}
	u.regs.TXDATA.Set(uint32(b))
	return nil
}

// WriteByte waits for room in the transmit buffer and queues b.
func (u *UART) WriteByte(b byte) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.regs == nil {
		return &errcode.E{C: ErrReleased, Op: "usart.write"}
	}
	return u.writeByte(b)
}

// Write queues every byte of p. It does not wait for the last one to leave
// the shifter; use Flush for that.
func (u *UART) Write(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.regs == nil {
		return 0, &errcode.E{C: ErrReleased, Op: "usart.write"}
	}
	if len(p) == 0 {
		return 0, u.fail("write", ErrInvalidData)
	}
	for i, b := range p {
		if err := u.writeByte(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// Flush waits until transmission is complete.
func (u *UART) Flush() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.regs == nil {
		return &errcode.E{C: ErrReleased, Op: "usart.flush"}
	}
	if !reg.Wait(u.regs.STATUS, efr32.USART_STATUS_TXC, true, u.cfg.PollLimit) {
		return u.fail("flush", ErrTimeout)
	}
	return nil
}

// caller holds lock
func (u *UART) readByte() (byte, error) {
	if u.regs.IF.HasBits(efr32.USART_IF_RXOF) {
		u.regs.IF.ClearBits(efr32.USART_IF_RXOF)
		return 0, u.fail("read", ErrOverrun)
	}
	if !u.regs.STATUS.HasBits(efr32.USART_STATUS_RXDATAV) {
		return 0, ErrNoData
	}
	w := u.regs.RXDATAX.Get()
	switch {
	case w&efr32.USART_RXDATAX_FERR != 0:
		return byte(w), u.fail("read", ErrFraming)
	case w&efr32.USART_RXDATAX_PERR != 0:
		return byte(w), u.fail("read", ErrParity)
	}
	return byte(w), nil
}

// ReadByte returns the next received byte without blocking. It returns
// ErrNoData when nothing is waiting. A byte received with a framing or
// parity error is consumed and reported with ErrFraming or ErrParity.
func (u *UART) ReadByte() (byte, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.regs == nil {
		return 0, &errcode.E{C: ErrReleased, Op: "usart.read"}
	}
	return u.readByte()
}

// Read copies whatever has been received into p without blocking. It
// returns ErrNoData only when nothing at all was available.
func (u *UART) Read(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.regs == nil {
		return 0, &errcode.E{C: ErrReleased, Op: "usart.read"}
	}
	n := 0
	for n < len(p) {
		b, err := u.readByte()
		if err == ErrNoData {
			if n == 0 {
				return 0, ErrNoData
			}
			break
		}
		if err != nil {
			return n, err
		}
		p[n] = b
		n++
	}
	return n, nil
}

// Release disables the transmitter and receiver and gives the register
// block back. The UART is unusable afterwards.
func (u *UART) Release() *efr32.USART {
	u.mu.Lock()
	defer u.mu.Unlock()
	r := u.regs
	if r == nil {
		return nil
	}
	r.CMD.Set(efr32.USART_CMD_RXDIS | efr32.USART_CMD_TXDIS)
	r.EN.Set(0)
	r.Unclaim()
	u.regs = nil
	return r
}
