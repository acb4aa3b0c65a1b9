package efr32

import "efr32hal/hal/reg"

// I2C register offsets and fields.
const (
	I2C_EN     = 0x004
	I2C_CTRL   = 0x008
	I2C_CMD    = 0x00C
	I2C_STATE  = 0x010
	I2C_STATUS = 0x014
	I2C_CLKDIV = 0x018
	I2C_RXDATA = 0x024
	I2C_TXDATA = 0x034
	I2C_IF     = 0x03C

	I2C_EN_EN = 1 << 0

	I2C_CTRL_SLAVE   = 1 << 1
	I2C_CTRL_AUTOACK = 1 << 2
	I2C_CTRL_AUTOSN  = 1 << 4

	I2C_CMD_START   = 1 << 0
	I2C_CMD_STOP    = 1 << 1
	I2C_CMD_ACK     = 1 << 2
	I2C_CMD_NACK    = 1 << 3
	I2C_CMD_CONT    = 1 << 4
	I2C_CMD_ABORT   = 1 << 5
	I2C_CMD_CLEARTX = 1 << 6
	I2C_CMD_CLEARPC = 1 << 7

	I2C_STATUS_PSTART  = 1 << 0
	I2C_STATUS_PSTOP   = 1 << 1
	I2C_STATUS_PACK    = 1 << 2
	I2C_STATUS_PNACK   = 1 << 3
	I2C_STATUS_TXC     = 1 << 6
	I2C_STATUS_TXBL    = 1 << 7
	I2C_STATUS_RXDATAV = 1 << 8

	I2C_CLKDIV_DIV_Msk = 0x1FF

	I2C_IF_START   = 1 << 0
	I2C_IF_ACK     = 1 << 6
	I2C_IF_NACK    = 1 << 7
	I2C_IF_MSTOP   = 1 << 8
	I2C_IF_ARBLOST = 1 << 9
	I2C_IF_BUSERR  = 1 << 10
)

// I2C is an inter-integrated circuit controller.
type I2C struct {
	block
	Gate Gate

	EN     reg.Register32
	CTRL   reg.Register32
	CMD    reg.Register32
	STATE  reg.Register32
	STATUS reg.Register32
	CLKDIV reg.Register32
	RXDATA reg.Register32
	TXDATA reg.Register32
	IF     reg.Register32
}

func newI2C(s reg.Space, c *Claims, base uintptr, res Resource, g Gate) *I2C {
	return &I2C{
		block:  block{claims: c, res: res},
		Gate:   g,
		EN:     reg.At(s, base+I2C_EN),
		CTRL:   reg.At(s, base+I2C_CTRL),
		CMD:    reg.At(s, base+I2C_CMD),
		STATE:  reg.At(s, base+I2C_STATE),
		STATUS: reg.At(s, base+I2C_STATUS),
		CLKDIV: reg.At(s, base+I2C_CLKDIV),
		RXDATA: reg.At(s, base+I2C_RXDATA),
		TXDATA: reg.At(s, base+I2C_TXDATA),
		IF:     reg.At(s, base+I2C_IF),
	}
}
