package efr32

import "efr32hal/hal/reg"

// USART register offsets and fields.
const (
	USART_EN      = 0x004
	USART_CTRL    = 0x008
	USART_FRAME   = 0x00C
	USART_CMD     = 0x014
	USART_STATUS  = 0x018
	USART_CLKDIV  = 0x01C
	USART_RXDATAX = 0x020
	USART_RXDATA  = 0x024
	USART_TXDATA  = 0x034
	USART_IF      = 0x044

	USART_EN_EN = 1 << 0

	USART_CTRL_SYNC   = 1 << 0
	USART_CTRL_CLKPOL = 1 << 8
	USART_CTRL_CLKPHA = 1 << 9
	USART_CTRL_MSBF   = 1 << 10

	USART_FRAME_DATABITS_Pos = 0
	USART_FRAME_DATABITS_Msk = 0xF
	USART_FRAME_PARITY_Pos   = 8
	USART_FRAME_PARITY_Msk   = 0x3
	USART_FRAME_STOPBITS_Pos = 12
	USART_FRAME_STOPBITS_Msk = 0x3

	USART_FRAME_PARITY_NONE = 0
	USART_FRAME_PARITY_EVEN = 2
	USART_FRAME_PARITY_ODD  = 3

	USART_FRAME_STOPBITS_HALF        = 0
	USART_FRAME_STOPBITS_ONE         = 1
	USART_FRAME_STOPBITS_ONEANDAHALF = 2
	USART_FRAME_STOPBITS_TWO         = 3

	USART_CMD_RXEN     = 1 << 0
	USART_CMD_RXDIS    = 1 << 1
	USART_CMD_TXEN     = 1 << 2
	USART_CMD_TXDIS    = 1 << 3
	USART_CMD_MASTEREN = 1 << 4
	USART_CMD_CLEARTX  = 1 << 10
	USART_CMD_CLEARRX  = 1 << 11

	USART_STATUS_RXENS   = 1 << 0
	USART_STATUS_TXENS   = 1 << 1
	USART_STATUS_TXC     = 1 << 5
	USART_STATUS_TXBL    = 1 << 6
	USART_STATUS_RXDATAV = 1 << 7

	// CLKDIV.DIV is 20 bits wide: 15 integer and 5 fractional in async
	// mode, the fraction counted in 1/256 steps.
	USART_CLKDIV_DIV_Msk = 0xFFFFF

	USART_RXDATAX_FERR = 1 << 14
	USART_RXDATAX_PERR = 1 << 15

	USART_IF_TXC     = 1 << 0
	USART_IF_TXBL    = 1 << 1
	USART_IF_RXDATAV = 1 << 2
	USART_IF_RXOF    = 1 << 4
	USART_IF_PERR    = 1 << 8
	USART_IF_FERR    = 1 << 9
)

// USART is a universal synchronous/asynchronous receiver-transmitter.
type USART struct {
	block
	Gate Gate

	EN      reg.Register32
	CTRL    reg.Register32
	FRAME   reg.Register32
	CMD     reg.Register32
	STATUS  reg.Register32
	CLKDIV  reg.Register32
	RXDATAX reg.Register32
	RXDATA  reg.Register32
	TXDATA  reg.Register32
	IF      reg.Register32
}

func newUSART(s reg.Space, c *Claims, base uintptr, res Resource, g Gate) *USART {
	return &USART{
		block:   block{claims: c, res: res},
		Gate:    g,
		EN:      reg.At(s, base+USART_EN),
		CTRL:    reg.At(s, base+USART_CTRL),
		FRAME:   reg.At(s, base+USART_FRAME),
		CMD:     reg.At(s, base+USART_CMD),
		STATUS:  reg.At(s, base+USART_STATUS),
		CLKDIV:  reg.At(s, base+USART_CLKDIV),
		RXDATAX: reg.At(s, base+USART_RXDATAX),
		RXDATA:  reg.At(s, base+USART_RXDATA),
		TXDATA:  reg.At(s, base+USART_TXDATA),
		IF:      reg.At(s, base+USART_IF),
	}
}

// EUSART register offsets and fields. Only the synchronous (SPI master)
// subset is described.
const (
	EUSART_EN       = 0x004
	EUSART_CFG0     = 0x008
	EUSART_CFG1     = 0x00C
	EUSART_CFG2     = 0x010
	EUSART_FRAMECFG = 0x014
	EUSART_CLKDIV   = 0x01C
	EUSART_RXDATA   = 0x030
	EUSART_TXDATA   = 0x034
	EUSART_CMD      = 0x038
	EUSART_STATUS   = 0x03C
	EUSART_IF       = 0x044

	EUSART_EN_EN = 1 << 0

	EUSART_CFG0_SYNC = 1 << 0
	EUSART_CFG0_MSBF = 1 << 10

	EUSART_CFG2_MASTER = 1 << 0
	EUSART_CFG2_CLKPOL = 1 << 1
	EUSART_CFG2_CLKPHA = 1 << 2

	EUSART_FRAMECFG_DATABITS_Pos = 0
	EUSART_FRAMECFG_DATABITS_Msk = 0xF
	EUSART_FRAMECFG_DATABITS_8   = 5

	// Synchronous divider: SCLK = PCLK / (8 * (DIV + 1)), 9 bits.
	EUSART_CLKDIV_DIV_Msk = 0x1FF

	EUSART_CMD_RXEN    = 1 << 0
	EUSART_CMD_RXDIS   = 1 << 1
	EUSART_CMD_TXEN    = 1 << 2
	EUSART_CMD_TXDIS   = 1 << 3
	EUSART_CMD_CLEARTX = 1 << 8

	EUSART_STATUS_RXENS = 1 << 0
	EUSART_STATUS_TXENS = 1 << 1
	EUSART_STATUS_RXFL  = 1 << 2
	EUSART_STATUS_TXFL  = 1 << 3
	EUSART_STATUS_TXC   = 1 << 5

	EUSART_IF_RXOF = 1 << 4
	EUSART_IF_RXUF = 1 << 5
	EUSART_IF_TXOF = 1 << 6
	EUSART_IF_FERR = 1 << 9
)

// EUSART is an enhanced USART instance.
type EUSART struct {
	block
	Gate Gate

	EN       reg.Register32
	CFG0     reg.Register32
	CFG1     reg.Register32
	CFG2     reg.Register32
	FRAMECFG reg.Register32
	CLKDIV   reg.Register32
	RXDATA   reg.Register32
	TXDATA   reg.Register32
	CMD      reg.Register32
	STATUS   reg.Register32
	IF       reg.Register32
}

func newEUSART(s reg.Space, c *Claims, base uintptr, res Resource, g Gate) *EUSART {
	return &EUSART{
		block:    block{claims: c, res: res},
		Gate:     g,
		EN:       reg.At(s, base+EUSART_EN),
		CFG0:     reg.At(s, base+EUSART_CFG0),
		CFG1:     reg.At(s, base+EUSART_CFG1),
		CFG2:     reg.At(s, base+EUSART_CFG2),
		FRAMECFG: reg.At(s, base+EUSART_FRAMECFG),
		CLKDIV:   reg.At(s, base+EUSART_CLKDIV),
		RXDATA:   reg.At(s, base+EUSART_RXDATA),
		TXDATA:   reg.At(s, base+EUSART_TXDATA),
		CMD:      reg.At(s, base+EUSART_CMD),
		STATUS:   reg.At(s, base+EUSART_STATUS),
		IF:       reg.At(s, base+EUSART_IF),
	}
}
