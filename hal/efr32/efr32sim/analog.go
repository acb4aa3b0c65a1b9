package efr32sim

import (
	"efr32hal/hal/efr32"
	"efr32hal/hal/reg/regsim"
)

func (c *Chip) attachIADC() {
	a := c.P.IADC0
	single, status, data := a.SINGLE.Addr(), a.STATUS.Addr(), a.SINGLEFIFODATA.Addr()
	ifr := a.IF.Addr()

	c.Space.OnWrite(a.CMD.Addr(), func(m *regsim.Mem, _ uintptr, _, v uint32) {
		if v&efr32.IADC_CMD_SINGLESTART == 0 {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.iadcStall {
			m.SetBits(status, efr32.IADC_STATUS_CONVERTING)
			return
		}
		in := m.Get(single)
		port := uint8((in >> efr32.IADC_SINGLE_PORTPOS_Pos) & efr32.IADC_SINGLE_PORTPOS_Msk)
		pin := uint8((in >> efr32.IADC_SINGLE_PINPOS_Pos) & efr32.IADC_SINGLE_PINPOS_Msk)
		var sample uint16
		if port != efr32.IADC_PORT_GND {
			sample = c.analog(port-efr32.IADC_PORT_PORTA, pin)
		}
		m.Put(data, uint32(sample)&efr32.IADC_DATA_Msk)
		m.SetBits(status, efr32.IADC_STATUS_SINGLEFIFODV)
		m.SetBits(ifr, efr32.IADC_IF_SINGLEDONE)
	})
	c.Space.OnRead(data, func(m *regsim.Mem, _ uintptr, v uint32) uint32 {
		m.ClearBits(status, efr32.IADC_STATUS_SINGLEFIFODV)
		return v
	})
}

// Analog sets the sample source: port is 0 for port A, pin the pin number.
func (c *Chip) Analog(f func(port, pin uint8) uint16) {
	c.mu.Lock()
	c.analog = f
	c.mu.Unlock()
}
