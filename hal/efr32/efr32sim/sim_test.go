package efr32sim

import (
	"testing"

	"efr32hal/hal/efr32"
	"efr32hal/hal/reg"
)

func TestOscillatorReady(t *testing.T) {
	c := New()
	c.P.HFXO.CTRL.SetBits(c.P.HFXO.ForceEn)
	if !c.P.HFXO.STATUS.HasBits(efr32.HFXO_STATUS_RDY) {
		t.Fatal("HFXO not ready after FORCEEN")
	}
	c.StallLFXO(true)
	c.P.LFXO.CTRL.SetBits(c.P.LFXO.ForceEn)
	if c.P.LFXO.STATUS.HasBits(efr32.LFXO_STATUS_RDY) {
		t.Fatal("stalled LFXO reported ready")
	}
}

func TestI2CMemoryTarget(t *testing.T) {
	c := New()
	mem := &Memory{}
	mem.Regs[0x10] = 0xAB
	c.Attach(0, 0x38, mem)
	i := c.P.I2C0

	i.CMD.Set(efr32.I2C_CMD_START)
	i.TXDATA.Set(0x38 << 1)
	if !i.IF.HasBits(efr32.I2C_IF_ACK) {
		t.Fatal("address not acknowledged")
	}
	i.TXDATA.Set(0x10)
	i.CMD.Set(efr32.I2C_CMD_START)
	i.TXDATA.Set(0x38<<1 | 1)
	if !reg.Wait(i.STATUS, efr32.I2C_STATUS_RXDATAV, true, 1) || i.RXDATA.Get() != 0xAB {
		t.Fatal("read back failed")
	}
	i.CMD.Set(efr32.I2C_CMD_STOP)

	i.IF.Set(0)
	i.CMD.Set(efr32.I2C_CMD_START)
	i.TXDATA.Set(0x50 << 1)
	if !i.IF.HasBits(efr32.I2C_IF_NACK) {
		t.Fatal("absent address must NACK")
	}
}

func TestTimerCounts(t *testing.T) {
	c := New()
	tm := c.P.TIMER1
	tm.TOP.Set(2)
	tm.CMD.Set(efr32.TIMER_CMD_START)
	var got []uint32
	for i := 0; i < 4; i++ {
		got = append(got, tm.CNT.Get())
	}
	if got[0] != 0 || got[2] != 2 || got[3] != 0 {
		t.Fatalf("counts %v", got)
	}
}
