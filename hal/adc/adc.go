// Package adc takes single 12-bit conversions on the IADC.
package adc

import (
	"sync"

	"efr32hal/errcode"
	"efr32hal/hal/clock"
	"efr32hal/hal/efr32"
	"efr32hal/hal/gpio"
	"efr32hal/hal/reg"
	"efr32hal/hal/timing"
	"efr32hal/x/fmtx"
	"efr32hal/x/mathx"
)

const (
	DefaultPollLimit = 1_000_000
	MaxClockHz       = 10_000_000
	FullScale        = 4095
)

var (
	ErrTimeout          = errcode.Timeout
	ErrInvalidChannel   = errcode.InvalidChannel
	ErrInvalidFrequency = errcode.InvalidFrequency
	ErrInvalidConfig    = errcode.InvalidConfig
	ErrInvalidData      = errcode.InvalidData
	ErrReleased         = errcode.Released
)

type Reference uint8

const (
	RefVBGR Reference = iota // 1.21 V bandgap
	RefVDD
)

// Millivolts is the full-scale voltage for the reference.
func (r Reference) Millivolts() uint32 {
	if r == RefVDD {
		return 3300
	}
	return 1210
}

type Resolution uint8

const Bits12 Resolution = 12

// Channel selects a port A input or ground.
type Channel uint8

const (
	Ch0 Channel = iota
	Ch1
	Ch2
	Ch3
	Ch4
	Ch5
	Gnd Channel = 15
)

type Config struct {
	Reference  Reference
	Resolution Resolution // 0 means Bits12
	ClockHz    uint32     // converter clock, 0 means MaxClockHz
	PollLimit  int
}

func (c Config) withDefaults() Config {
	if c.Resolution == 0 {
		c.Resolution = Bits12
	}
	if c.ClockHz == 0 {
		c.ClockHz = MaxClockHz
	}
	if c.PollLimit <= 0 {
		c.PollLimit = DefaultPollLimit
	}
	return c
}

type ADC struct {
	mu       sync.Mutex
	regs     *efr32.IADC
	cfg      Config
	prescale uint32
	clk      uint32
}

// New claims the IADC and sets its reference and converter clock.
func New(regs *efr32.IADC, cfg Config, clocks *clock.Frozen) (*ADC, error) {
	cfg = cfg.withDefaults()
	op := regs.Name() + ".new"
	switch {
	case cfg.ClockHz > MaxClockHz:
		return nil, &errcode.E{C: ErrInvalidFrequency, Op: op, Msg: fmtx.Sprintf("adc clock %d Hz", cfg.ClockHz)}
	case cfg.Resolution != Bits12:
		return nil, &errcode.E{C: ErrInvalidConfig, Op: op, Msg: fmtx.Sprintf("%d-bit", cfg.Resolution)}
	case cfg.Reference > RefVDD:
		return nil, &errcode.E{C: ErrInvalidConfig, Op: op, Msg: "reference"}
	}
	if err := regs.Claim(); err != nil {
		return nil, err
	}
	if err := clocks.Enable(regs.Gate); err != nil {
		regs.Unclaim()
		return nil, err
	}
	a := &ADC{regs: regs, cfg: cfg}
	a.prescale = timing.ADCPrescale(clocks.PCLK(), cfg.ClockHz)
	a.clk = timing.ADCClock(clocks.PCLK(), a.prescale)

	ref := uint32(efr32.IADC_CFG0_REFSEL_VBGR)
	if cfg.Reference == RefVDD {
		ref = efr32.IADC_CFG0_REFSEL_VDDX
	}
	regs.EN.Set(0)
	regs.CFG0.ReplaceBits(ref, efr32.IADC_CFG0_REFSEL_Msk, efr32.IADC_CFG0_REFSEL_Pos)
	regs.SCHED0.ReplaceBits(a.prescale, efr32.IADC_SCHED0_PRESCALE_Msk, efr32.IADC_SCHED0_PRESCALE_Pos)
	regs.EN.Set(efr32.IADC_EN_EN)
	fmtx.Logf("%s: prescale=%d clk=%d ref=%dmV", regs.Name(), a.prescale, a.clk, cfg.Reference.Millivolts())
	return a, nil
}

// Clock is the converter clock in Hz.
func (a *ADC) Clock() uint32 { return a.clk }

func (a *ADC) Prescale() uint32 { return a.prescale }

// Read takes one conversion on ch.
func (a *ADC) Read(ch Channel) (uint16, error) {
	port, pin := uint32(efr32.IADC_PORT_PORTA), uint32(ch)
	switch {
	case ch == Gnd:
		port, pin = efr32.IADC_PORT_GND, 0
	case ch > Ch5:
		return 0, &errcode.E{C: ErrInvalidChannel, Op: "adc.read", Msg: fmtx.Sprintf("ch%d", ch)}
	}
	return a.convert(port, pin)
}

// ReadPin converts the voltage on an analog pin of any port. A pin value
// already consumed by a mode change fails with released.
func (a *ADC) ReadPin(p gpio.Analog) (uint16, error) {
	if !p.Live() {
		return 0, &errcode.E{C: ErrReleased, Op: "adc.read", Msg: p.String()}
	}
	return a.convert(efr32.IADC_PORT_PORTA+uint32(p.Port()), uint32(p.Number()))
}

func (a *ADC) convert(port, pin uint32) (uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.regs
	if r == nil {
		return 0, &errcode.E{C: ErrReleased, Op: "adc.read"}
	}
	r.SINGLE.Set(port<<efr32.IADC_SINGLE_PORTPOS_Pos | pin<<efr32.IADC_SINGLE_PINPOS_Pos)
	r.IF.ClearBits(efr32.IADC_IF_SINGLEDONE)
	r.CMD.Set(efr32.IADC_CMD_SINGLESTART)
	if !reg.Wait(r.STATUS, efr32.IADC_STATUS_SINGLEFIFODV, true, a.cfg.PollLimit) {
		r.CMD.Set(efr32.IADC_CMD_SINGLESTOP)
		return 0, &errcode.E{C: ErrTimeout, Op: r.Name() + ".read"}
	}
	v := uint16(r.SINGLEFIFODATA.Field(efr32.IADC_DATA_Msk, 0))
	r.IF.ClearBits(efr32.IADC_IF_SINGLEDONE)
	return v, nil
}

// Millivolts scales a raw sample by the configured reference.
func (a *ADC) Millivolts(raw uint16) uint32 {
	return uint32(raw) * a.cfg.Reference.Millivolts() / FullScale
}

// ReadAverage returns the rounded mean of n conversions.
func (a *ADC) ReadAverage(ch Channel, n int) (uint16, error) {
	if n <= 0 {
		return 0, &errcode.E{C: ErrInvalidData, Op: "adc.average", Msg: "no samples"}
	}
	var sum uint64
	for i := 0; i < n; i++ {
		v, err := a.Read(ch)
		if err != nil {
			return 0, err
		}
		sum += uint64(v)
	}
	return uint16(mathx.RoundDiv(sum, uint64(n))), nil
}

// Release disables the converter and returns the block.
func (a *ADC) Release() *efr32.IADC {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.regs
	if r == nil {
		return nil
	}
	r.EN.Set(0)
	r.Unclaim()
	a.regs = nil
	return r
}
