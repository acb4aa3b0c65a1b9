// Package timer drives TIMER0..4 as periodic counters and PWM generators.
package timer

import (
	"context"
	"sync"
	"time"

	"efr32hal/errcode"
	"efr32hal/hal/clock"
	"efr32hal/hal/efr32"
	"efr32hal/hal/timing"
	"efr32hal/x/fmtx"
	"efr32hal/x/mathx"
	"efr32hal/x/ramp"
)

var (
	ErrInvalidFrequency = errcode.InvalidFrequency
	ErrInvalidDuty      = errcode.InvalidDuty
	ErrInvalidChannel   = errcode.InvalidChannel
	ErrReleased         = errcode.Released
)

type PWMMode uint8

const (
	EdgeAligned   PWMMode = iota // count up
	CenterAligned                // count up/down, half the overflow rate
)

// Channel is a compare/capture channel, 0..2.
type Channel uint8

const (
	CC0 Channel = iota
	CC1
	CC2
)

// Config is the overflow frequency and, for PWM use, the alignment.
// A nil PWM leaves the timer as a plain counter.
type Config struct {
	Frequency uint32
	PWM       *PWMMode
}

// PWM returns a Config for a PWM timer at f.
func PWM(f uint32, mode PWMMode) Config { return Config{Frequency: f, PWM: &mode} }

type Timer struct {
	mu     sync.Mutex
	regs   *efr32.TIMER
	clocks *clock.Frozen

	freq  uint32
	shift uint8
	top   uint32
	mode  PWMMode
	pwm   bool
	level [efr32.TIMER_NUM_CC]uint32
}

// New claims regs and programs the prescaler and TOP for cfg.Frequency.
// When no prescaler fits, the largest one is used with TOP clamped and
// Achieved reports the resulting rate.
func New(regs *efr32.TIMER, cfg Config, clocks *clock.Frozen) (*Timer, error) {
	src := clocks.PCLK()
	if cfg.Frequency == 0 || uint64(cfg.Frequency)*2 > uint64(src) {
		return nil, &errcode.E{C: ErrInvalidFrequency, Op: regs.Name() + ".new", Msg: fmtx.Sprintf("%d Hz", cfg.Frequency)}
	}
	if err := regs.Claim(); err != nil {
		return nil, err
	}
	if err := clocks.Enable(regs.Gate); err != nil {
		regs.Unclaim()
		return nil, err
	}
	t := &Timer{regs: regs, clocks: clocks, freq: cfg.Frequency}
	t.shift, t.top = timing.TimerPrescaleTop(src, cfg.Frequency, regs.MaxTop())

	mode := uint32(efr32.TIMER_CFG_MODE_UP)
	if cfg.PWM != nil {
		t.pwm, t.mode = true, *cfg.PWM
		if t.mode == CenterAligned {
			mode = efr32.TIMER_CFG_MODE_UPDOWN
		}
	}

	// CFG is only writable while the timer is disabled.
	regs.EN.Set(0)
	regs.CFG.Set(timing.TimerPresc(t.shift)<<efr32.TIMER_CFG_PRESC_Pos | mode)
	regs.EN.Set(efr32.TIMER_EN_EN)
	regs.TOP.Set(t.top)
	fmtx.Logf("%s: target=%d presc=/%d top=%d actual=%d", regs.Name(), cfg.Frequency, 1<<t.shift, t.top, t.achieved())
	return t, nil
}

func (t *Timer) achieved() uint32 {
	f := timing.TimerFrequency(t.clocks.PCLK(), t.shift, t.top)
	if t.pwm && t.mode == CenterAligned {
		f /= 2
	}
	return f
}

// Frequency is the requested overflow rate.
func (t *Timer) Frequency() uint32 { return t.freq }

// Achieved is the overflow rate the prescaler and TOP produce.
func (t *Timer) Achieved() uint32 { return t.achieved() }

func (t *Timer) Top() uint32 { return t.top }

// Prescaler is the power-of-two shift; the counter clock is pclk>>shift.
func (t *Timer) Prescaler() uint8 { return t.shift }

func (t *Timer) live(op string) error {
	if t.regs == nil {
		return &errcode.E{C: ErrReleased, Op: "timer." + op}
	}
	return nil
}

func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.live("start"); err != nil {
		return err
	}
	t.regs.CMD.Set(efr32.TIMER_CMD_START)
	return nil
}

func (t *Timer) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.live("stop"); err != nil {
		return err
	}
	t.regs.CMD.Set(efr32.TIMER_CMD_STOP)
	return nil
}

// Running reports the hardware RUNNING status.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.regs != nil && t.regs.STATUS.HasBits(efr32.TIMER_STATUS_RUNNING)
}

func (t *Timer) Counter() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.regs == nil {
		return 0
	}
	return t.regs.CNT.Get()
}

func (t *Timer) ResetCounter() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.live("reset"); err != nil {
		return err
	}
	t.regs.CNT.Set(0)
	return nil
}

// -----------------------------------------------------------------------------
// PWM
// -----------------------------------------------------------------------------

func (t *Timer) channel(op string, ch Channel) (efr32.TimerCC, error) {
	if err := t.live(op); err != nil {
		return efr32.TimerCC{}, err
	}
	if !t.pwm || int(ch) >= efr32.TIMER_NUM_CC {
		return efr32.TimerCC{}, &errcode.E{C: ErrInvalidChannel, Op: t.regs.Name() + "." + op, Msg: fmtx.Sprintf("cc%d", ch)}
	}
	return t.regs.CC[ch], nil
}

// EnableChannel puts ch in PWM mode: set on compare match, toggle on
// overflow.
func (t *Timer) EnableChannel(ch Channel) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cc, err := t.channel("enable", ch)
	if err != nil {
		return err
	}
	cc.CFG.Set(efr32.TIMER_CC_CFG_MODE_PWM)
	cc.CTRL.Set(efr32.TIMER_CC_CTRL_ACT_TOGGLE<<efr32.TIMER_CC_CTRL_COFOA_Pos |
		efr32.TIMER_CC_CTRL_ACT_SET<<efr32.TIMER_CC_CTRL_CMOA_Pos)
	return nil
}

func (t *Timer) DisableChannel(ch Channel) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cc, err := t.channel("disable", ch)
	if err != nil {
		return err
	}
	cc.CFG.Set(efr32.TIMER_CC_CFG_MODE_OFF)
	return nil
}

// SetDutyCycle writes top*pct/100 to the channel's compare register.
func (t *Timer) SetDutyCycle(ch Channel, pct uint8) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cc, err := t.channel("duty", ch)
	if err != nil {
		return err
	}
	if pct > 100 {
		return &errcode.E{C: ErrInvalidDuty, Op: t.regs.Name() + ".duty", Msg: fmtx.Sprintf("%d%%", pct)}
	}
	t.setLevel(cc, ch, uint32(uint64(t.top)*uint64(pct)/100))
	return nil
}

// SetCompare writes a raw compare value, clamped to Top.
func (t *Timer) SetCompare(ch Channel, v uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cc, err := t.channel("compare", ch)
	if err != nil {
		return err
	}
	t.setLevel(cc, ch, mathx.Min(v, t.top))
	return nil
}

func (t *Timer) setLevel(cc efr32.TimerCC, ch Channel, v uint32) {
	cc.OC.Set(v)
	t.level[ch] = v
}

// Compare is the last compare value written to ch.
func (t *Timer) Compare(ch Channel) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(ch) >= efr32.TIMER_NUM_CC {
		return 0
	}
	return t.level[ch]
}

// Fade ramps ch from its current compare value to pct over total in
// steps increments and blocks until done. Cancelling ctx stops the ramp
// where it is and returns ctx.Err().
func (t *Timer) Fade(ctx context.Context, ch Channel, pct uint8, total time.Duration, steps uint16) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	_, err := t.channel("fade", ch)
	if err == nil && pct > 100 {
		err = &errcode.E{C: ErrInvalidDuty, Op: t.regs.Name() + ".fade", Msg: fmtx.Sprintf("%d%%", pct)}
	}
	if err != nil {
		t.mu.Unlock()
		return err
	}
	from, top := t.level[ch], t.top
	to := uint32(uint64(top) * uint64(pct) / 100)
	t.mu.Unlock()

	tick := func(d time.Duration) bool {
		tm := time.NewTimer(d)
		defer tm.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-tm.C:
			return true
		}
	}
	if err := ramp.Linear(from, to, top, total, steps, tick, func(lvl uint32) error {
		return t.SetCompare(ch, lvl)
	}); err != nil {
		return err
	}
	return ctx.Err()
}

// Release stops the timer, disables it and returns the block.
func (t *Timer) Release() *efr32.TIMER {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.regs
	if r == nil {
		return nil
	}
	r.CMD.Set(efr32.TIMER_CMD_STOP)
	for i := range r.CC {
		r.CC[i].CFG.Set(efr32.TIMER_CC_CFG_MODE_OFF)
	}
	r.EN.Set(0)
	r.Unclaim()
	t.regs = nil
	return r
}
