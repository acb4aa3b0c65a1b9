package efr32sim

import (
	"efr32hal/hal/efr32"
	"efr32hal/hal/reg/regsim"
)

// serialPort models one USART or EUSART data path.
type serialPort struct {
	tx       []byte
	rx       []uint32 // RXDATAX words: data plus FERR/PERR
	loopback bool
	txStall  bool
	respond  func(b byte) byte
}

func (c *Chip) attachSerial() {
	c.attachUSART(c.P.USART0)
	c.attachEUSART(c.P.EUSART0)
	c.attachEUSART(c.P.EUSART1)
}

func (c *Chip) port(base uintptr) *serialPort {
	p := c.serial[base]
	if p == nil {
		p = &serialPort{}
		c.serial[base] = p
	}
	return p
}

func (c *Chip) attachUSART(u *efr32.USART) {
	base := u.EN.Addr() - efr32.USART_EN
	sp := c.port(base)
	ctrl := u.CTRL.Addr()

	c.Space.OnWrite(u.TXDATA.Addr(), func(m *regsim.Mem, _ uintptr, _, v uint32) {
		c.mu.Lock()
		defer c.mu.Unlock()
		b := byte(v)
		sp.tx = append(sp.tx, b)
		switch {
		case m.Get(ctrl)&efr32.USART_CTRL_SYNC != 0:
			sp.rx = append(sp.rx, uint32(sp.reply(b)))
		case sp.loopback:
			sp.rx = append(sp.rx, uint32(b))
		}
	})
	c.Space.OnWrite(u.CMD.Addr(), func(m *regsim.Mem, _ uintptr, _, v uint32) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if v&efr32.USART_CMD_CLEARRX != 0 {
			sp.rx = sp.rx[:0]
		}
	})
	c.Space.OnRead(u.STATUS.Addr(), func(_ *regsim.Mem, _ uintptr, v uint32) uint32 {
		c.mu.Lock()
		defer c.mu.Unlock()
		v &^= efr32.USART_STATUS_RXDATAV | efr32.USART_STATUS_TXBL | efr32.USART_STATUS_TXC
		if len(sp.rx) > 0 {
			v |= efr32.USART_STATUS_RXDATAV
		}
		if !sp.txStall {
			v |= efr32.USART_STATUS_TXBL | efr32.USART_STATUS_TXC
		}
		return v
	})
	pop := func(mask uint32) regsim.ReadHook {
		return func(_ *regsim.Mem, _ uintptr, v uint32) uint32 {
			c.mu.Lock()
			defer c.mu.Unlock()
			if len(sp.rx) == 0 {
				return v
			}
			w := sp.rx[0]
			sp.rx = sp.rx[1:]
			return w & mask
		}
	}
	c.Space.OnRead(u.RXDATAX.Addr(), pop(0xFFFF))
	c.Space.OnRead(u.RXDATA.Addr(), pop(0xFF))
}

func (c *Chip) attachEUSART(e *efr32.EUSART) {
	base := e.EN.Addr() - efr32.EUSART_EN
	sp := c.port(base)

	c.Space.OnWrite(e.TXDATA.Addr(), func(_ *regsim.Mem, _ uintptr, _, v uint32) {
		c.mu.Lock()
		defer c.mu.Unlock()
		b := byte(v)
		sp.tx = append(sp.tx, b)
		sp.rx = append(sp.rx, uint32(sp.reply(b)))
	})
	c.Space.OnRead(e.STATUS.Addr(), func(_ *regsim.Mem, _ uintptr, v uint32) uint32 {
		c.mu.Lock()
		defer c.mu.Unlock()
		v &^= efr32.EUSART_STATUS_RXFL | efr32.EUSART_STATUS_TXFL | efr32.EUSART_STATUS_TXC
		if len(sp.rx) > 0 {
			v |= efr32.EUSART_STATUS_RXFL
		}
		if !sp.txStall {
			v |= efr32.EUSART_STATUS_TXFL | efr32.EUSART_STATUS_TXC
		}
		return v
	})
	c.Space.OnRead(e.RXDATA.Addr(), func(_ *regsim.Mem, _ uintptr, v uint32) uint32 {
		c.mu.Lock()
		defer c.mu.Unlock()
		if len(sp.rx) == 0 {
			return v
		}
		w := sp.rx[0]
		sp.rx = sp.rx[1:]
		return w & 0xFF
	})
}

func (sp *serialPort) reply(b byte) byte {
	if sp.respond != nil {
		return sp.respond(b)
	}
	return b
}

// Serial is the test-side handle on one serial data path.
type Serial struct {
	c  *Chip
	sp *serialPort
}

func (c *Chip) USART0() Serial  { return Serial{c, c.port(efr32.USART0_BASE)} }
func (c *Chip) EUSART0() Serial { return Serial{c, c.port(efr32.EUSART0_BASE)} }
func (c *Chip) EUSART1() Serial { return Serial{c, c.port(efr32.EUSART1_BASE)} }

// Sent returns every byte written to TXDATA so far.
func (s Serial) Sent() []byte {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return append([]byte(nil), s.sp.tx...)
}

// Feed queues received bytes.
func (s Serial) Feed(b ...byte) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	for _, x := range b {
		s.sp.rx = append(s.sp.rx, uint32(x))
	}
}

// FeedError queues a received byte carrying FERR/PERR flags.
func (s Serial) FeedError(b byte, framing, parity bool) {
	w := uint32(b)
	if framing {
		w |= efr32.USART_RXDATAX_FERR
	}
	if parity {
		w |= efr32.USART_RXDATAX_PERR
	}
	s.c.mu.Lock()
	s.sp.rx = append(s.sp.rx, w)
	s.c.mu.Unlock()
}

// Loopback routes asynchronous TX back into RX.
func (s Serial) Loopback(on bool) { s.c.mu.Lock(); s.sp.loopback = on; s.c.mu.Unlock() }

// StallTx withholds the transmit ready flags.
func (s Serial) StallTx(on bool) { s.c.mu.Lock(); s.sp.txStall = on; s.c.mu.Unlock() }

// Respond sets the synchronous (SPI) reply for each clocked-out byte.
// nil echoes the byte back.
func (s Serial) Respond(f func(b byte) byte) { s.c.mu.Lock(); s.sp.respond = f; s.c.mu.Unlock() }
