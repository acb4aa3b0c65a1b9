package board

import (
	"efr32hal/hal/adc"
	"efr32hal/hal/clock"
	"efr32hal/hal/delay"
	"efr32hal/hal/dma"
	"efr32hal/hal/efr32"
	"efr32hal/hal/gpio"
	"efr32hal/hal/i2c"
	"efr32hal/hal/spi"
	"efr32hal/hal/timer"
	"efr32hal/hal/usart"
	"efr32hal/types"
	"efr32hal/x/fmtx"
)

// Board is a profile brought up on a chip. Fields for peripherals the
// profile does not name are nil.
type Board struct {
	Profile types.BoardProfile
	Clocks  *clock.Frozen
	Pins    *gpio.Parts
	Delay   *delay.Delay

	UART     *usart.UART
	I2C      *i2c.Bus
	SPI      *spi.Bus
	Timers   []*timer.Timer
	ADC      *adc.ADC
	DMA      *dma.Controller
	Channels []*dma.Channel

	names   map[any]string
	closers []func()
}

// Open resolves p's clocks on chip, freezes them and constructs every
// driver p names. On error everything already built is released again.
func Open(p types.BoardProfile, chip *efr32.Peripherals) (b *Board, err error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	c, err := clock.Resolve(chip.CMU, ClockConfig(p))
	if err != nil {
		return nil, err
	}
	f, err := c.Freeze(chip.CMU)
	if err != nil {
		return nil, err
	}
	b = &Board{Profile: p, Clocks: f, names: map[any]string{}}
	b.closers = append(b.closers, func() { f.Release() })
	defer func() {
		if err != nil {
			b.Close()
			b = nil
		}
	}()

	if b.Pins, err = gpio.Split(chip.GPIO, f); err != nil {
		return b, err
	}
	b.closers = append(b.closers, func() { b.Pins.Release() })

	if b.Delay, err = delay.New(chip.SysTick, f); err != nil {
		return b, err
	}
	b.closers = append(b.closers, func() { b.Delay.Release() })

	if p.UART != nil {
		cfg, _ := UARTConfig(*p.UART)
		if b.UART, err = usart.New(chip.USART0, cfg, f); err != nil {
			return b, err
		}
		b.names[b.UART] = chip.USART0.Name()
		b.closers = append(b.closers, func() { b.UART.Release() })
	}

	if p.I2C != nil {
		regs := chip.I2C0
		if p.I2C.Bus == 1 {
			regs = chip.I2C1
		}
		if b.I2C, err = i2c.New(regs, I2CConfig(*p.I2C), f); err != nil {
			return b, err
		}
		b.names[b.I2C] = regs.Name()
		b.closers = append(b.closers, func() { b.I2C.Release() })
	}

	if p.SPI != nil {
		cfg, _ := SPIConfig(*p.SPI)
		switch p.SPI.Port {
		case "usart0":
			b.SPI, err = spi.NewUSART(chip.USART0, cfg, f)
		case "eusart0":
			b.SPI, err = spi.NewEUSART(chip.EUSART0, cfg, f)
		default:
			b.SPI, err = spi.NewEUSART(chip.EUSART1, cfg, f)
		}
		if err != nil {
			return b, err
		}
		b.names[b.SPI] = p.SPI.Port
		b.closers = append(b.closers, func() { b.SPI.Release() })
	}

	for _, tp := range p.Timers {
		cfg, _ := TimerConfig(tp)
		regs := chip.Timer(int(tp.Index))
		t, err := timer.New(regs, cfg, f)
		if err != nil {
			return b, err
		}
		b.Timers = append(b.Timers, t)
		b.names[t] = regs.Name()
		b.closers = append(b.closers, func() { t.Release() })
	}

	if p.ADC != nil {
		cfg, _ := ADCConfig(*p.ADC)
		if b.ADC, err = adc.New(chip.IADC0, cfg, f); err != nil {
			return b, err
		}
		b.names[b.ADC] = chip.IADC0.Name()
		b.closers = append(b.closers, func() { b.ADC.Release() })
	}

	if len(p.DMA) > 0 {
		if b.DMA, err = dma.New(chip.LDMA, f); err != nil {
			return b, err
		}
		b.closers = append(b.closers, func() { b.DMA.Release() })
		for _, n := range p.DMA {
			ch, err := b.DMA.Channel(n)
			if err != nil {
				return b, err
			}
			b.Channels = append(b.Channels, ch)
			b.closers = append(b.closers, ch.Release)
		}
	}
	fmtx.Logf("board %s: up at %d Hz", p.Name, f.HFCLK())
	return b, nil
}

// Close releases every driver in reverse order and finally the clock
// handle, leaving the chip free for another Open.
func (b *Board) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// Plan reports the clock tree and every derived divider.
func (b *Board) Plan() types.BoardPlan {
	c := b.Clocks.Clocks()
	out := types.BoardPlan{
		Board:    b.Profile.Name,
		HFCLK:    c.HFCLK(),
		HFSource: c.HFSource().String(),
		LFCLK:    c.LFCLK(),
		LFSource: c.LFSource().String(),
		DMA:      b.Profile.DMA,
	}
	if b.UART != nil {
		out.UART = &types.DividerPlan{Block: b.names[b.UART], TargetHz: b.UART.Baud(), Divider: b.UART.Divider(), ActualHz: b.UART.ActualBaud()}
	}
	if b.I2C != nil {
		out.I2C = &types.DividerPlan{Block: b.names[b.I2C], TargetHz: I2CConfig(*b.Profile.I2C).Frequency, Divider: b.I2C.Divider(), ActualHz: b.I2C.Frequency()}
		if out.I2C.TargetHz == 0 {
			out.I2C.TargetHz = i2c.Standard.Hz()
		}
	}
	if b.SPI != nil {
		target := b.Profile.SPI.Hz
		if target == 0 {
			target = spi.DefaultFrequency
		}
		out.SPI = &types.DividerPlan{Block: b.names[b.SPI], TargetHz: target, Divider: b.SPI.Divider(), ActualHz: b.SPI.Frequency()}
	}
	for i, t := range b.Timers {
		out.Timers = append(out.Timers, types.TimerPlan{
			Block:      b.names[t],
			TargetHz:   t.Frequency(),
			PrescShift: t.Prescaler(),
			Top:        t.Top(),
			AchievedHz: t.Achieved(),
			PWM:        b.Profile.Timers[i].PWM,
		})
	}
	if b.ADC != nil {
		target := b.Profile.ADC.ClockHz
		if target == 0 {
			target = adc.MaxClockHz
		}
		out.ADC = &types.DividerPlan{Block: b.names[b.ADC], TargetHz: target, Divider: b.ADC.Prescale(), ActualHz: b.ADC.Clock()}
	}
	return out
}
