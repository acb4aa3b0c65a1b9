package efr32sim

import (
	"efr32hal/hal/efr32"
	"efr32hal/hal/reg/regsim"
)

// Target is a device on a simulated I2C bus.
type Target interface {
	// Start begins a transfer in the given direction after an address ACK.
	Start(read bool)
	// Write receives one byte and reports whether it is acknowledged.
	Write(b byte) bool
	// Read produces the next byte for the controller.
	Read() byte
	Stop()
}

type i2cBus struct {
	targets map[uint8]Target
	cur     Target
	phase   i2cPhase
	lostArb bool
}

type i2cPhase uint8

const (
	phaseIdle i2cPhase = iota
	phaseAddr
	phaseWrite
	phaseRead
)

func (c *Chip) attachI2C() {
	c.attachI2CBus(c.P.I2C0)
	c.attachI2CBus(c.P.I2C1)
}

func (c *Chip) attachI2CBus(r *efr32.I2C) {
	bus := &i2cBus{targets: map[uint8]Target{}}
	c.i2c[r.EN.Addr()-efr32.I2C_EN] = bus
	status, ifr, rx := r.STATUS.Addr(), r.IF.Addr(), r.RXDATA.Addr()

	loadRx := func(m *regsim.Mem) {
		m.Put(rx, uint32(bus.cur.Read()))
		m.SetBits(status, efr32.I2C_STATUS_RXDATAV)
	}

	c.Space.OnWrite(r.CMD.Addr(), func(m *regsim.Mem, _ uintptr, _, v uint32) {
		c.mu.Lock()
		defer c.mu.Unlock()
		switch {
		case v&efr32.I2C_CMD_ABORT != 0:
			bus.cur, bus.phase = nil, phaseIdle
			m.ClearBits(status, efr32.I2C_STATUS_RXDATAV)
		case v&efr32.I2C_CMD_START != 0:
			if bus.lostArb {
				m.SetBits(ifr, efr32.I2C_IF_ARBLOST)
				return
			}
			bus.phase = phaseAddr
			m.SetBits(ifr, efr32.I2C_IF_START)
		case v&efr32.I2C_CMD_STOP != 0:
			if bus.cur != nil {
				bus.cur.Stop()
			}
			bus.cur, bus.phase = nil, phaseIdle
			m.SetBits(ifr, efr32.I2C_IF_MSTOP)
		case v&efr32.I2C_CMD_ACK != 0:
			if bus.phase == phaseRead && bus.cur != nil {
				loadRx(m)
			}
		}
	})

	c.Space.OnWrite(r.TXDATA.Addr(), func(m *regsim.Mem, _ uintptr, _, v uint32) {
		c.mu.Lock()
		defer c.mu.Unlock()
		b := byte(v)
		ack := false
		switch bus.phase {
		case phaseAddr:
			if t, ok := bus.targets[b>>1]; ok {
				read := b&1 != 0
				bus.cur = t
				t.Start(read)
				ack = true
				bus.phase = phaseWrite
				if read {
					bus.phase = phaseRead
					loadRx(m)
				}
			}
		case phaseWrite:
			ack = bus.cur.Write(b)
		}
		if ack {
			m.SetBits(ifr, efr32.I2C_IF_ACK)
		} else {
			m.SetBits(ifr, efr32.I2C_IF_NACK)
		}
		m.SetBits(status, efr32.I2C_STATUS_TXC)
	})

	c.Space.OnRead(status, func(_ *regsim.Mem, _ uintptr, v uint32) uint32 {
		return v | efr32.I2C_STATUS_TXBL
	})
	c.Space.OnRead(rx, func(m *regsim.Mem, _ uintptr, v uint32) uint32 {
		m.ClearBits(status, efr32.I2C_STATUS_RXDATAV)
		return v & 0xFF
	})
}

// Attach puts t on I2C bus n (0 or 1) at the 7-bit address addr.
func (c *Chip) Attach(n int, addr uint8, t Target) {
	base := efr32.I2C0_BASE
	if n == 1 {
		base = efr32.I2C1_BASE
	}
	c.mu.Lock()
	c.i2c[base].targets[addr] = t
	c.mu.Unlock()
}

// LoseArbitration makes every START on bus n report lost arbitration.
func (c *Chip) LoseArbitration(n int, on bool) {
	base := efr32.I2C0_BASE
	if n == 1 {
		base = efr32.I2C1_BASE
	}
	c.mu.Lock()
	c.i2c[base].lostArb = on
	c.mu.Unlock()
}

// Memory is a register-file target: the first byte of a write sets the
// register pointer, later bytes store and auto-increment it, reads return
// bytes from the pointer onwards.
type Memory struct {
	Regs  [256]byte
	ptr   uint8
	first bool
	// Writes counts the data bytes stored.
	Writes int
}

func (d *Memory) Start(read bool) { d.first = !read }
func (d *Memory) Stop()           {}

func (d *Memory) Write(b byte) bool {
	if d.first {
		d.ptr, d.first = b, false
		return true
	}
	d.Regs[d.ptr] = b
	d.ptr++
	d.Writes++
	return true
}

func (d *Memory) Read() byte {
	b := d.Regs[d.ptr]
	d.ptr++
	return b
}
