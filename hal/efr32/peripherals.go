package efr32

import (
	"sync"

	"efr32hal/errcode"
	"efr32hal/hal/reg"
)

// Peripherals holds every register block of one chip.
type Peripherals struct {
	Claims *Claims

	CMU     *CMU
	HFXO    *Osc
	LFXO    *Osc
	GPIO    *GPIO
	USART0  *USART
	EUSART0 *EUSART
	EUSART1 *EUSART
	I2C0    *I2C
	I2C1    *I2C
	TIMER0  *TIMER
	TIMER1  *TIMER
	TIMER2  *TIMER
	TIMER3  *TIMER
	TIMER4  *TIMER
	IADC0   *IADC
	LDMA    *LDMA
	SysTick *SysTick
}

var (
	takeMu sync.Mutex
	taken  = map[reg.Space]bool{}
)

// Take returns the register blocks in s. It succeeds once per Space; a
// second call fails with in_use.
func Take(s reg.Space) (*Peripherals, error) {
	takeMu.Lock()
	defer takeMu.Unlock()
	if taken[s] {
		return nil, &errcode.E{C: errcode.InUse, Op: "efr32.take"}
	}
	taken[s] = true

	c := &Claims{}
	cmu := newCMU(s, c)
	return &Peripherals{
		Claims:  c,
		CMU:     cmu,
		HFXO:    cmu.HFXO,
		LFXO:    cmu.LFXO,
		GPIO:    newGPIO(s, c),
		USART0:  newUSART(s, c, USART0_BASE, ResUSART0, GateUSART0),
		EUSART0: newEUSART(s, c, EUSART0_BASE, ResEUSART0, GateEUSART0),
		EUSART1: newEUSART(s, c, EUSART1_BASE, ResEUSART1, GateEUSART1),
		I2C0:    newI2C(s, c, I2C0_BASE, ResI2C0, GateI2C0),
		I2C1:    newI2C(s, c, I2C1_BASE, ResI2C1, GateI2C1),
		TIMER0:  newTIMER(s, c, 0, GateTIMER0),
		TIMER1:  newTIMER(s, c, 1, GateTIMER1),
		TIMER2:  newTIMER(s, c, 2, GateTIMER2),
		TIMER3:  newTIMER(s, c, 3, GateTIMER3),
		TIMER4:  newTIMER(s, c, 4, GateTIMER4),
		IADC0:   newIADC(s, c),
		LDMA:    newLDMA(s, c),
		SysTick: newSysTick(s, c),
	}, nil
}

// Timer returns TIMERn, or nil for n outside 0..4.
func (p *Peripherals) Timer(n int) *TIMER {
	switch n {
	case 0:
		return p.TIMER0
	case 1:
		return p.TIMER1
	case 2:
		return p.TIMER2
	case 3:
		return p.TIMER3
	case 4:
		return p.TIMER4
	}
	return nil
}
