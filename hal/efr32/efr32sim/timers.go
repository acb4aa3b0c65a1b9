package efr32sim

import (
	"efr32hal/hal/efr32"
	"efr32hal/hal/reg/regsim"
)

type timerModel struct {
	running bool
	cnt     uint32
}

// Counters advance by one on every CNT read while running and wrap at TOP.
func (c *Chip) attachTimers() {
	for n := 0; n < 5; n++ {
		t := c.P.Timer(n)
		tm := &timerModel{}
		top, status := t.TOP.Addr(), t.STATUS.Addr()

		c.Space.OnWrite(t.CMD.Addr(), func(m *regsim.Mem, _ uintptr, _, v uint32) {
			c.mu.Lock()
			defer c.mu.Unlock()
			switch {
			case v&efr32.TIMER_CMD_STOP != 0:
				tm.running = false
				m.ClearBits(status, efr32.TIMER_STATUS_RUNNING)
			case v&efr32.TIMER_CMD_START != 0:
				tm.running = true
				m.SetBits(status, efr32.TIMER_STATUS_RUNNING)
			}
		})
		c.Space.OnWrite(t.CNT.Addr(), func(_ *regsim.Mem, _ uintptr, _, v uint32) {
			c.mu.Lock()
			tm.cnt = v
			c.mu.Unlock()
		})
		c.Space.OnRead(t.CNT.Addr(), func(m *regsim.Mem, _ uintptr, _ uint32) uint32 {
			c.mu.Lock()
			defer c.mu.Unlock()
			v := tm.cnt
			if tm.running {
				if tm.cnt >= m.Get(top) {
					tm.cnt = 0
				} else {
					tm.cnt++
				}
			}
			return v
		})
	}
}

// The core timer counts a full reload period on every CSR read while
// enabled and reports COUNTFLAG each time.
func (c *Chip) attachSysTick() {
	st := c.P.SysTick
	rvr := st.RVR.Addr()
	c.Space.OnRead(st.CSR.Addr(), func(m *regsim.Mem, _ uintptr, v uint32) uint32 {
		if v&efr32.SYST_CSR_ENABLE == 0 {
			return v &^ efr32.SYST_CSR_COUNTFLAG
		}
		c.mu.Lock()
		c.sysTick += uint64(m.Get(rvr)&efr32.SYST_RVR_MAX) + 1
		c.mu.Unlock()
		return v | efr32.SYST_CSR_COUNTFLAG
	})
}

// SysTicks returns the core timer ticks elapsed so far.
func (c *Chip) SysTicks() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sysTick
}
