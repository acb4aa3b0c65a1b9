// Package clock resolves an oscillator request into concrete frequencies
// and freezes the result into the handle every driver is built against.
//
// A driver never touches the CMU clock-enable registers directly: it asks
// the Frozen handle, which serialises the read-modify-write and refuses
// once the handle has been released.
package clock

import "efr32hal/errcode"

// OscReadyPolls bounds the wait for a crystal's ready flag.
const OscReadyPolls = 100_000

var (
	ErrOscTimeout       = errcode.OscTimeout
	ErrInvalidFrequency = errcode.InvalidFrequency
	ErrReleased         = errcode.Released
)

// Crystal is an external crystal. The hardware cannot measure it; Hz is
// trusted as given.
type Crystal struct {
	Hz uint32
}

func NewCrystal(hz uint32) *Crystal { return &Crystal{Hz: hz} }

// DefaultLFXO is the usual 32.768 kHz watch crystal.
func DefaultLFXO() *Crystal { return NewCrystal(32_768) }

// Config is the oscillator request. A nil crystal selects the internal RC
// oscillator at its nominal frequency.
type Config struct {
	HFXO *Crystal
	LFXO *Crystal
}

// Source identifies the oscillator behind a clock.
type Source uint8

const (
	SourceHFRCO Source = iota
	SourceHFXO
	SourceLFRCO
	SourceLFXO
)

func (s Source) String() string {
	switch s {
	case SourceHFRCO:
		return "hfrco"
	case SourceHFXO:
		return "hfxo"
	case SourceLFRCO:
		return "lfrco"
	case SourceLFXO:
		return "lfxo"
	}
	return "unknown"
}

// Clocks are the resolved frequencies in Hz. PCLK and SYSCLK always equal
// HFCLK on this part.
type Clocks struct {
	hfclk, lfclk uint32
	hfsrc, lfsrc Source
}

func (c Clocks) HFCLK() uint32  { return c.hfclk }
func (c Clocks) LFCLK() uint32  { return c.lfclk }
func (c Clocks) PCLK() uint32   { return c.hfclk }
func (c Clocks) SYSCLK() uint32 { return c.hfclk }

func (c Clocks) HFSource() Source { return c.hfsrc }
func (c Clocks) LFSource() Source { return c.lfsrc }
