// Package efr32 describes the EFR32MG24 peripheral window: base addresses,
// register blocks, field constants, the clock-gate table and the runtime
// ownership arena that keeps two drivers off the same block.
//
// Register and field names follow the reference manual (USART_STATUS_TXBL,
// LDMA_CH_CTRL_XFERCNT_Pos, ...), the same way TinyGo's device packages do.
package efr32

// Base addresses (non-secure aliases).
const (
	CMU_BASE     uintptr = 0x4000_8000
	LFXO_BASE    uintptr = 0x4002_0000
	GPIO_BASE    uintptr = 0x4003_C000
	LDMA_BASE    uintptr = 0x4004_0000
	TIMER0_BASE  uintptr = 0x4004_8000
	TIMER_STRIDE uintptr = 0x4000
	USART0_BASE  uintptr = 0x4005_C000
	I2C1_BASE    uintptr = 0x4006_8000
	EUSART1_BASE uintptr = 0x400A_0000
	HFXO0_BASE   uintptr = 0x4A00_4000
	IADC0_BASE   uintptr = 0x5900_4000
	I2C0_BASE    uintptr = 0x5B00_0000
	EUSART0_BASE uintptr = 0x5B01_0000
	SYSTICK_BASE uintptr = 0xE000_E010
)

// Reset values of the internal oscillators.
const (
	HFRCO_HZ uint32 = 19_000_000
	LFRCO_HZ uint32 = 32_768
)

// Resource indexes the ownership arena.
type Resource uint8

const (
	ResCMU Resource = iota
	ResGPIO
	ResUSART0
	ResEUSART0
	ResEUSART1
	ResI2C0
	ResI2C1
	ResTIMER0
	ResTIMER1
	ResTIMER2
	ResTIMER3
	ResTIMER4
	ResIADC0
	ResLDMA
	ResLDMACh0
	ResLDMACh1
	ResLDMACh2
	ResLDMACh3
	ResLDMACh4
	ResLDMACh5
	ResLDMACh6
	ResLDMACh7
	ResSysTick
	numResources
)

var resourceNames = [numResources]string{
	"cmu", "gpio", "usart0", "eusart0", "eusart1", "i2c0", "i2c1",
	"timer0", "timer1", "timer2", "timer3", "timer4", "iadc0", "ldma",
	"ldma.ch0", "ldma.ch1", "ldma.ch2", "ldma.ch3",
	"ldma.ch4", "ldma.ch5", "ldma.ch6", "ldma.ch7", "systick",
}

func (r Resource) String() string {
	if r < numResources {
		return resourceNames[r]
	}
	return "unknown"
}
