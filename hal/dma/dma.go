// Package dma runs memory-to-memory copies on the LDMA controller.
//
// A transfer moves the whole source slice in one software-triggered
// request and then polls the channel's done flag. Lengths are checked
// before any register is touched, and the descriptor is written inside the
// controller's critical section so no other channel sees it half built.
package dma

import (
	"runtime"
	"sync"
	"unsafe"

	"efr32hal/errcode"
	"efr32hal/hal/clock"
	"efr32hal/hal/critical"
	"efr32hal/hal/efr32"
	"efr32hal/x/fmtx"
)

const (
	// MaxTransfer is the largest element count per transfer.
	MaxTransfer      = efr32.LDMA_MAX_XFER
	DefaultPollLimit = 1_000_000
)

var (
	ErrBusy          = errcode.Busy
	ErrTimeout       = errcode.Timeout
	ErrUnsupported   = errcode.Unsupported
	ErrInvalidLength = errcode.InvalidLength
	ErrReleased      = errcode.Released
)

// Element is a type the engine can move in one beat.
type Element interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32
}

// State is where a channel is in the transfer protocol.
type State uint8

const (
	Idle State = iota
	Configuring
	Triggered
	Polling
	Done
	TimedOut
)

func (s State) String() string {
	switch s {
	case Configuring:
		return "configuring"
	case Triggered:
		return "triggered"
	case Polling:
		return "polling"
	case Done:
		return "done"
	case TimedOut:
		return "timed_out"
	}
	return "idle"
}

// Controller owns the LDMA block.
type Controller struct {
	mu   sync.Mutex
	cs   critical.Section
	regs *efr32.LDMA
}

// New claims the LDMA, gates its clocks and enables it.
func New(regs *efr32.LDMA, clocks *clock.Frozen) (*Controller, error) {
	if err := regs.Claim(); err != nil {
		return nil, err
	}
	if err := clocks.Enable(regs.Gate, efr32.GateLDMAXBAR); err != nil {
		regs.Unclaim()
		return nil, err
	}
	regs.EN.Set(efr32.LDMA_EN_EN)
	regs.CHDIS.Set(1<<efr32.LDMA_NUM_CH - 1)
	regs.IF.Set(0)
	return &Controller{regs: regs}, nil
}

func (c *Controller) live() *efr32.LDMA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs
}

// Channel claims channel n. Indices outside 0..7 are unsupported.
func (c *Controller) Channel(n int) (*Channel, error) {
	r := c.live()
	if r == nil {
		return nil, &errcode.E{C: ErrReleased, Op: "ldma.channel"}
	}
	if err := r.ClaimChannel(n); err != nil {
		return nil, err
	}
	return &Channel{c: c, n: n, bit: 1 << n, PollLimit: DefaultPollLimit}, nil
}

// Release disables the controller and returns the block. Channels still
// held fail with released from then on.
func (c *Controller) Release() *efr32.LDMA {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.regs
	if r == nil {
		return nil
	}
	r.CHDIS.Set(1<<efr32.LDMA_NUM_CH - 1)
	r.EN.Set(0)
	for n := 0; n < efr32.LDMA_NUM_CH; n++ {
		r.ReleaseChannel(n)
	}
	r.Unclaim()
	c.regs = nil
	return r
}

// Channel is one claimed LDMA channel. Transfers on a channel are
// serialised.
type Channel struct {
	c   *Controller
	n   int
	bit uint32

	// PollLimit bounds the done-flag wait.
	PollLimit int

	mu    sync.Mutex
	state State
}

func (ch *Channel) Number() int { return ch.n }

// State reports the protocol state of the last transfer.
func (ch *Channel) State() State {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.state
}

func (ch *Channel) op() string { return fmtx.Sprintf("ldma.ch%d", ch.n) }

// Transfer copies src into dst. Both must hold 1..MaxTransfer elements and
// be the same length; the element size picks byte, halfword or word beats.
func Transfer[T Element](ch *Channel, src, dst []T) error {
	if len(src) != len(dst) || len(src) == 0 || len(src) > MaxTransfer {
		return &errcode.E{C: ErrInvalidLength, Op: ch.op(), Msg: fmtx.Sprintf("src %d dst %d", len(src), len(dst))}
	}
	var z T
	size := uint32(efr32.LDMA_CH_CTRL_SIZE_BYTE)
	switch unsafe.Sizeof(z) {
	case 2:
		size = efr32.LDMA_CH_CTRL_SIZE_HALFWORD
	case 4:
		size = efr32.LDMA_CH_CTRL_SIZE_WORD
	}
	err := ch.run(len(src), size, unsafe.Pointer(&src[0]), unsafe.Pointer(&dst[0]))
	runtime.KeepAlive(src)
	runtime.KeepAlive(dst)
	return err
}

func (ch *Channel) TransferBytes(src, dst []byte) error { return Transfer(ch, src, dst) }

func (ch *Channel) TransferHalfwords(src, dst []uint16) error { return Transfer(ch, src, dst) }

func (ch *Channel) TransferWords(src, dst []uint32) error { return Transfer(ch, src, dst) }

func (ch *Channel) run(n int, size uint32, src, dst unsafe.Pointer) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	c := ch.c
	if c == nil {
		return &errcode.E{C: ErrReleased, Op: ch.op()}
	}
	r := c.live()
	if r == nil {
		return &errcode.E{C: ErrReleased, Op: ch.op()}
	}
	limit := ch.PollLimit
	if limit <= 0 {
		limit = DefaultPollLimit
	}

	busy := false
	c.cs.Do(func() {
		if r.CHBUSY.HasBits(ch.bit) {
			busy = true
			return
		}
		ch.state = Configuring
		d := r.CH[ch.n]
		d.CTRL.Set(uint32(n-1)<<efr32.LDMA_CH_CTRL_XFERCNT_Pos |
			efr32.LDMA_CH_CTRL_BLOCKSIZE_ALL<<efr32.LDMA_CH_CTRL_BLOCKSIZE_Pos |
			efr32.LDMA_CH_CTRL_DONEIEN |
			efr32.LDMA_CH_CTRL_INC_ONE<<efr32.LDMA_CH_CTRL_SRCINC_Pos |
			size<<efr32.LDMA_CH_CTRL_SIZE_Pos |
			efr32.LDMA_CH_CTRL_INC_ONE<<efr32.LDMA_CH_CTRL_DSTINC_Pos)
		d.SRC.Set(r.Space.BusAddress(src))
		d.DST.Set(r.Space.BusAddress(dst))
		r.IF.ClearBits(ch.bit)
		r.CHDONE.ClearBits(ch.bit)
		r.CHEN.SetBits(ch.bit)
		r.SWREQ.Set(ch.bit)
		ch.state = Triggered
	})
	if busy {
		return &errcode.E{C: ErrBusy, Op: ch.op()}
	}

	ch.state = Polling
	for i := 0; i < limit; i++ {
		if r.IF.HasBits(ch.bit) {
			c.cs.Do(func() { r.IF.ClearBits(ch.bit) })
			ch.state = Done
			return nil
		}
	}
	ch.state = TimedOut
	return &errcode.E{C: ErrTimeout, Op: ch.op(), Msg: fmtx.Sprintf("%d polls", limit)}
}

// Release gives the channel back to the controller.
func (ch *Channel) Release() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.c == nil {
		return
	}
	if r := ch.c.live(); r != nil {
		r.ReleaseChannel(ch.n)
	}
	ch.c = nil
	ch.state = Idle
}
