// Package reg is the raw register access layer: an address space and
// 32-bit registers with bit-field read/modify/write helpers.
//
// Nothing in this package serialises access. Callers that share a register
// with an interrupt handler or another goroutine wrap the read-modify-write
// in a critical section.
package reg

import "unsafe"

// Space is a 32-bit register address space.
//
// BusAddress translates a CPU pointer into the address a bus master (the
// DMA engine) uses for the same memory. On silicon the two are identical.
type Space interface {
	Load(addr uintptr) uint32
	Store(addr uintptr, v uint32)
	BusAddress(p unsafe.Pointer) uint32
}

// Register32 is one 32-bit register in a Space.
type Register32 struct {
	s    Space
	addr uintptr
}

// At returns the register at addr.
func At(s Space, addr uintptr) Register32 { return Register32{s: s, addr: addr} }

func (r Register32) Addr() uintptr { return r.addr }
func (r Register32) Get() uint32   { return r.s.Load(r.addr) }
func (r Register32) Set(v uint32)  { r.s.Store(r.addr, v) }

func (r Register32) SetBits(mask uint32)   { r.Set(r.Get() | mask) }
func (r Register32) ClearBits(mask uint32) { r.Set(r.Get() &^ mask) }

// HasBits reports whether every bit in mask is set.
func (r Register32) HasBits(mask uint32) bool { return r.Get()&mask == mask }

// ReplaceBits writes value into the field (mask << pos). Bits of value
// outside mask are dropped.
func (r Register32) ReplaceBits(value, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | (value&mask)<<pos)
}

// Field reads the field (mask << pos) right-aligned.
func (r Register32) Field(mask uint32, pos uint8) uint32 {
	return (r.Get() >> pos) & mask
}

// Bit is a single-bit mask.
func Bit(n uint8) uint32 { return 1 << n }
