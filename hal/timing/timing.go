// Package timing holds the divider arithmetic every driver uses to turn a
// frozen source frequency and a target rate into register fields.
//
// All functions are pure integer arithmetic. They never panic and never
// divide by zero: a zero target is a caller error and yields 0, the
// saturated minimum. Results are clamped to the width of the field they
// are written to.
package timing

import (
	"efr32hal/x/mathx"
)

// Field limits.
const (
	UARTOversample    = 16
	UARTClkDivBits    = 20
	UARTClkDivMax     = 0xFFFFF // USART CLKDIV.DIV, 1/256 fractional steps
	ClkDiv8Max        = 0x1FF   // I2C CLKDIV and EUSART synchronous divider
	SPIUSARTClkDivMax = 0xFFF00 // USART CLKDIV, integer part only
	TimerMaxShift     = 10      // prescaler up to /1024
	ADCPrescaleMax    = 0x3FF
)

// UARTClkDiv returns the asynchronous USART divider for baud:
// 256*src/(16*baud) - 256, saturating at both ends of the field.
func UARTClkDiv(src, baud uint32) uint32 {
	if baud == 0 {
		return 0
	}
	d := uint64(256) * uint64(src) / (UARTOversample * uint64(baud))
	return uint32(mathx.Min(mathx.SatSub(d, 256), UARTClkDivMax))
}

// UARTBaudReachable reports whether baud can be produced from src without
// the divider saturating at either end of its field.
func UARTBaudReachable(src, baud uint32) bool {
	if baud == 0 || uint64(baud)*UARTOversample > uint64(src) {
		return false
	}
	d := uint64(256)*uint64(src)/(UARTOversample*uint64(baud)) - 256
	return mathx.Fits(d, UARTClkDivBits)
}

// UARTBaud is the baud rate a divider actually produces.
func UARTBaud(src, div uint32) uint32 {
	return uint32(uint64(256) * uint64(src) / (UARTOversample * (uint64(div) + 256)))
}

// ClkDiv8 returns src/(8*target) - 1, saturating at zero and clamped to
// nine bits. The resulting rate is src/(8*(div+1)).
func ClkDiv8(src, target uint32) uint32 {
	if target == 0 {
		return 0
	}
	d := uint64(src) / (8 * uint64(target))
	return uint32(mathx.Min(mathx.SatSub(d, 1), ClkDiv8Max))
}

// ClkDiv8Frequency is the rate produced by a ClkDiv8 divider.
func ClkDiv8Frequency(src, div uint32) uint32 {
	return uint32(uint64(src) / (8 * (uint64(div) + 1)))
}

// I2CFrequency is the SCL rate for an I2C CLKDIV value.
func I2CFrequency(src, div uint32) uint32 { return ClkDiv8Frequency(src, div) }

// SPIUSARTClkDiv returns the synchronous USART divider:
// 256*(src/(2*target) - 1), the subtraction saturating before the
// multiply.
func SPIUSARTClkDiv(src, target uint32) uint32 {
	if target == 0 {
		return 0
	}
	d := uint64(src) / (2 * uint64(target))
	return uint32(mathx.Min(256*mathx.SatSub(d, 1), SPIUSARTClkDivMax))
}

// SPIUSARTFrequency is the SCLK rate for a synchronous USART divider.
func SPIUSARTFrequency(src, div uint32) uint32 {
	return uint32(uint64(src) / (2 * (uint64(div)/256 + 1)))
}

// TimerPrescaleTop searches prescaler shifts 0..10 for the first one where
// the divided clock is above target and clk/target - 1 fits in topMax.
// If none fits it falls back to the largest prescaler with top clamped to
// topMax; the resulting rate is then only approximate.
func TimerPrescaleTop(src, target, topMax uint32) (shift uint8, top uint32) {
	if target == 0 {
		return 0, 0
	}
	for s := uint8(0); s <= TimerMaxShift; s++ {
		clk := src >> s
		if clk <= target {
			break
		}
		if t := clk/target - 1; t <= topMax {
			return s, t
		}
	}
	clk := src >> TimerMaxShift
	return TimerMaxShift, mathx.Min(mathx.SatSub(clk/target, 1), topMax)
}

// TimerFrequency is the overflow rate for a prescaler shift and top.
func TimerFrequency(src uint32, shift uint8, top uint32) uint32 {
	return uint32(uint64(src>>shift) / (uint64(top) + 1))
}

// TimerPresc is the CFG.PRESC field for a power-of-two shift: the
// hardware divides by PRESC+1.
func TimerPresc(shift uint8) uint32 { return 1<<shift - 1 }

// ADCPrescale returns the smallest PRESCALE keeping
// src/(2*(PRESCALE+1)) at or below target.
func ADCPrescale(src, target uint32) uint32 {
	if target == 0 {
		return 0
	}
	p := mathx.CeilDiv(uint64(src), 2*uint64(target))
	return uint32(mathx.Min(mathx.SatSub(p, 1), ADCPrescaleMax))
}

// ADCClock is the converter clock for a PRESCALE value.
func ADCClock(src, prescale uint32) uint32 {
	return uint32(uint64(src) / (2 * (uint64(prescale) + 1)))
}
