package efr32

import "efr32hal/hal/reg"

// LDMA register offsets and fields.
const (
	LDMA_EN     = 0x004
	LDMA_CTRL   = 0x008
	LDMA_STATUS = 0x00C
	LDMA_CHEN   = 0x020
	LDMA_CHDIS  = 0x024
	LDMA_CHBUSY = 0x02C
	LDMA_CHDONE = 0x030
	LDMA_SWREQ  = 0x038
	LDMA_IF     = 0x068
	LDMA_IEN    = 0x06C

	LDMA_CH0       = 0x07C
	LDMA_CH_STRIDE = 0x030
	LDMA_CH_CFG    = 0x00
	LDMA_CH_LOOP   = 0x04
	LDMA_CH_CTRL   = 0x08
	LDMA_CH_SRC    = 0x0C
	LDMA_CH_DST    = 0x10
	LDMA_CH_LINK   = 0x14

	LDMA_NUM_CH = 8

	LDMA_EN_EN = 1 << 0

	LDMA_CH_CTRL_STRUCTTYPE_Pos = 0
	LDMA_CH_CTRL_XFERCNT_Pos    = 4
	LDMA_CH_CTRL_XFERCNT_Msk    = 0x7FF
	LDMA_CH_CTRL_BLOCKSIZE_Pos  = 16
	LDMA_CH_CTRL_BLOCKSIZE_Msk  = 0xF
	LDMA_CH_CTRL_BLOCKSIZE_ALL  = 0xF
	LDMA_CH_CTRL_DONEIEN        = 1 << 20
	LDMA_CH_CTRL_REQMODE        = 1 << 21
	LDMA_CH_CTRL_SRCINC_Pos     = 24
	LDMA_CH_CTRL_SIZE_Pos       = 26
	LDMA_CH_CTRL_SIZE_Msk       = 0x3
	LDMA_CH_CTRL_DSTINC_Pos     = 28
	LDMA_CH_CTRL_INC_Msk        = 0x3
	LDMA_CH_CTRL_INC_ONE        = 0
	LDMA_CH_CTRL_INC_TWO        = 1
	LDMA_CH_CTRL_INC_FOUR       = 2
	LDMA_CH_CTRL_INC_NONE       = 3

	LDMA_CH_CTRL_SIZE_BYTE     = 0
	LDMA_CH_CTRL_SIZE_HALFWORD = 1
	LDMA_CH_CTRL_SIZE_WORD     = 2

	// Largest XFERCNT+1 the driver accepts.
	LDMA_MAX_XFER = 2047
)

// LDMAChannel is one channel descriptor.
type LDMAChannel struct {
	CFG  reg.Register32
	LOOP reg.Register32
	CTRL reg.Register32
	SRC  reg.Register32
	DST  reg.Register32
	LINK reg.Register32
}

// LDMA is the linked DMA controller. Space is kept for bus address
// translation of transfer buffers.
type LDMA struct {
	block
	Gate  Gate
	Space reg.Space

	EN     reg.Register32
	CTRL   reg.Register32
	STATUS reg.Register32
	CHEN   reg.Register32
	CHDIS  reg.Register32
	CHBUSY reg.Register32
	CHDONE reg.Register32
	SWREQ  reg.Register32
	IF     reg.Register32
	IEN    reg.Register32
	CH     [LDMA_NUM_CH]LDMAChannel
}

// ChannelAddr returns the address of descriptor register off of channel n.
func ChannelAddr(n int, off uintptr) uintptr {
	return LDMA_BASE + LDMA_CH0 + uintptr(n)*LDMA_CH_STRIDE + off
}

func newLDMA(s reg.Space, c *Claims) *LDMA {
	b := LDMA_BASE
	d := &LDMA{
		block:  block{claims: c, res: ResLDMA},
		Gate:   GateLDMA,
		Space:  s,
		EN:     reg.At(s, b+LDMA_EN),
		CTRL:   reg.At(s, b+LDMA_CTRL),
		STATUS: reg.At(s, b+LDMA_STATUS),
		CHEN:   reg.At(s, b+LDMA_CHEN),
		CHDIS:  reg.At(s, b+LDMA_CHDIS),
		CHBUSY: reg.At(s, b+LDMA_CHBUSY),
		CHDONE: reg.At(s, b+LDMA_CHDONE),
		SWREQ:  reg.At(s, b+LDMA_SWREQ),
		IF:     reg.At(s, b+LDMA_IF),
		IEN:    reg.At(s, b+LDMA_IEN),
	}
	for i := range d.CH {
		d.CH[i] = LDMAChannel{
			CFG:  reg.At(s, ChannelAddr(i, LDMA_CH_CFG)),
			LOOP: reg.At(s, ChannelAddr(i, LDMA_CH_LOOP)),
			CTRL: reg.At(s, ChannelAddr(i, LDMA_CH_CTRL)),
			SRC:  reg.At(s, ChannelAddr(i, LDMA_CH_SRC)),
			DST:  reg.At(s, ChannelAddr(i, LDMA_CH_DST)),
			LINK: reg.At(s, ChannelAddr(i, LDMA_CH_LINK)),
		}
	}
	return d
}

// ClaimChannel takes channel n (0..7).
func (d *LDMA) ClaimChannel(n int) error {
	if n < 0 || n >= LDMA_NUM_CH {
		return d.claims.Claim(numResources)
	}
	return d.claims.Claim(ResLDMACh0 + Resource(n))
}

// ReleaseChannel gives channel n back.
func (d *LDMA) ReleaseChannel(n int) {
	if n >= 0 && n < LDMA_NUM_CH {
		d.claims.Release(ResLDMACh0 + Resource(n))
	}
}
