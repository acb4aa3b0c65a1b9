// Package regsim is an in-memory register Space for host builds and tests.
//
// It records every store, lets a peripheral model react to loads and stores
// through per-address hooks, and hands out fake bus addresses so a DMA model
// can reach caller buffers.
package regsim

import (
	"sync"
	"unsafe"

	"efr32hal/hal/reg"
)

var _ reg.Space = (*Space)(nil)

// Write is one logged store.
type Write struct {
	Addr  uintptr
	Value uint32
}

// WriteHook runs after a store lands. old is the previous content.
type WriteHook func(m *Mem, addr uintptr, old, v uint32)

// ReadHook runs on a load and returns the value the caller observes.
type ReadHook func(m *Mem, addr uintptr, v uint32) uint32

// Space is safe for concurrent use. Hooks run with the space locked and
// must use the Mem they are given, never the Space.
type Space struct {
	mu      sync.Mutex
	m       Mem
	log     []Write
	onWrite map[uintptr]WriteHook
	onRead  map[uintptr]ReadHook
}

// New returns an empty space. Every register reads as zero until written.
func New() *Space {
	return &Space{
		m: Mem{
			words: make(map[uintptr]uint32),
			bufs:  make(map[uint32]unsafe.Pointer),
			slots: make(map[unsafe.Pointer]uint32),
		},
		onWrite: make(map[uintptr]WriteHook),
		onRead:  make(map[uintptr]ReadHook),
	}
}

func (s *Space) Load(addr uintptr) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.m.words[addr]
	if h := s.onRead[addr]; h != nil {
		v = h(&s.m, addr, v)
	}
	return v
}

func (s *Space) Store(addr uintptr, v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.m.words[addr]
	s.m.words[addr] = v
	s.log = append(s.log, Write{Addr: addr, Value: v})
	if h := s.onWrite[addr]; h != nil {
		h(&s.m, addr, old, v)
	}
}

// BusAddress maps p to a fake bus address. The same pointer always maps to
// the same address.
func (s *Space) BusAddress(p unsafe.Pointer) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.bus(p)
}

// OnWrite installs h for addr, replacing any previous hook.
func (s *Space) OnWrite(addr uintptr, h WriteHook) {
	s.mu.Lock()
	s.onWrite[addr] = h
	s.mu.Unlock()
}

// OnRead installs h for addr, replacing any previous hook.
func (s *Space) OnRead(addr uintptr, h ReadHook) {
	s.mu.Lock()
	s.onRead[addr] = h
	s.mu.Unlock()
}

// Poke sets a register without logging or hooks.
func (s *Space) Poke(addr uintptr, v uint32) {
	s.mu.Lock()
	s.m.words[addr] = v
	s.mu.Unlock()
}

// Peek reads a register without hooks.
func (s *Space) Peek(addr uintptr) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.words[addr]
}

// Writes returns a copy of the store log.
func (s *Space) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Write, len(s.log))
	copy(out, s.log)
	return out
}

// WritesTo returns the logged values stored at addr, oldest first.
func (s *Space) WritesTo(addr uintptr) []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uint32
	for _, w := range s.log {
		if w.Addr == addr {
			out = append(out, w.Value)
		}
	}
	return out
}

// ResetLog drops the store log.
func (s *Space) ResetLog() {
	s.mu.Lock()
	s.log = s.log[:0]
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------
// Mem: hook-side view
// -----------------------------------------------------------------------------

const (
	busBase   = 0x2000_0000
	slotShift = 16
	maxSlots  = 1 << 12
)

// Mem is the register file as seen from inside a hook.
type Mem struct {
	words map[uintptr]uint32
	bufs  map[uint32]unsafe.Pointer // slot -> buffer start
	slots map[unsafe.Pointer]uint32 // buffer start -> slot
	next  uint32
}

func (m *Mem) Get(addr uintptr) uint32    { return m.words[addr] }
func (m *Mem) Put(addr uintptr, v uint32) { m.words[addr] = v }

func (m *Mem) SetBits(addr uintptr, mask uint32)   { m.words[addr] |= mask }
func (m *Mem) ClearBits(addr uintptr, mask uint32) { m.words[addr] &^= mask }

func (m *Mem) bus(p unsafe.Pointer) uint32 {
	if slot, ok := m.slots[p]; ok {
		return busBase + slot<<slotShift
	}
	slot := m.next % maxSlots
	m.next++
	if old, ok := m.bufs[slot]; ok {
		delete(m.slots, old)
	}
	m.bufs[slot] = p
	m.slots[p] = slot
	return busBase + slot<<slotShift
}

// Bytes resolves a bus address handed out by BusAddress into n bytes of
// the caller's buffer. ok is false for an address that was never mapped.
func (m *Mem) Bytes(bus uint32, n int) (b []byte, ok bool) {
	if bus < busBase || n < 0 {
		return nil, false
	}
	rel := bus - busBase
	p, found := m.bufs[rel>>slotShift]
	if !found {
		return nil, false
	}
	off := uintptr(rel & (1<<slotShift - 1))
	return unsafe.Slice((*byte)(unsafe.Add(p, off)), n), true
}
