package efr32sim

import (
	"efr32hal/hal/efr32"
	"efr32hal/hal/reg/regsim"
)

// The engine runs a whole transfer synchronously on the SWREQ write.
func (c *Chip) attachLDMA() {
	d := c.P.LDMA
	chen, busy, done, ifr := d.CHEN.Addr(), d.CHBUSY.Addr(), d.CHDONE.Addr(), d.IF.Addr()

	c.Space.OnWrite(d.SWREQ.Addr(), func(m *regsim.Mem, _ uintptr, _, v uint32) {
		c.mu.Lock()
		stall := c.ldmaStall
		c.mu.Unlock()
		for n := 0; n < efr32.LDMA_NUM_CH; n++ {
			bit := uint32(1) << n
			if v&bit == 0 || m.Get(chen)&bit == 0 {
				continue
			}
			if stall {
				m.SetBits(busy, bit)
				continue
			}
			runDescriptor(m, n)
			m.ClearBits(chen, bit)
			m.ClearBits(busy, bit)
			m.SetBits(done, bit)
			m.SetBits(ifr, bit)
		}
		m.Put(efr32.LDMA_BASE+efr32.LDMA_SWREQ, 0)
	})
}

func runDescriptor(m *regsim.Mem, n int) {
	ctrl := m.Get(efr32.ChannelAddr(n, efr32.LDMA_CH_CTRL))
	count := int((ctrl>>efr32.LDMA_CH_CTRL_XFERCNT_Pos)&efr32.LDMA_CH_CTRL_XFERCNT_Msk) + 1
	size := 1 << ((ctrl >> efr32.LDMA_CH_CTRL_SIZE_Pos) & efr32.LDMA_CH_CTRL_SIZE_Msk)
	n8 := count * size

	src, ok := m.Bytes(m.Get(efr32.ChannelAddr(n, efr32.LDMA_CH_SRC)), n8)
	if !ok {
		return
	}
	dst, ok := m.Bytes(m.Get(efr32.ChannelAddr(n, efr32.LDMA_CH_DST)), n8)
	if !ok {
		return
	}
	copy(dst, src)
}

// SetChannelBusy forces the CHBUSY bit of channel n.
func (c *Chip) SetChannelBusy(n int, on bool) {
	addr := efr32.LDMA_BASE + efr32.LDMA_CHBUSY
	v := c.Space.Peek(addr)
	if on {
		v |= 1 << n
	} else {
		v &^= 1 << n
	}
	c.Space.Poke(addr, v)
}
