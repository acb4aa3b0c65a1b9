package efr32

import "efr32hal/hal/reg"

// GPIO port layout. Ports A..D start at GPIO_PORT0 and are GPIO_PORT_STRIDE
// apart; the register offsets below are relative to a port.
const (
	GPIO_PORT0       = 0x030
	GPIO_PORT_STRIDE = 0x030

	GPIO_P_CTRL  = 0x00
	GPIO_P_MODEL = 0x04
	GPIO_P_MODEH = 0x0C
	GPIO_P_DOUT  = 0x10
	GPIO_P_DIN   = 0x14

	// CTRL drive strength for pins in the *ALT modes.
	GPIO_P_CTRL_DRIVESTRENGTHALT_Pos = 16
	GPIO_P_CTRL_DRIVESTRENGTHALT_Msk = 0x1

	// 4-bit MODE field per pin, eight pins per MODEL/MODEH.
	GPIO_MODE_Msk          = 0xF
	GPIO_MODE_DISABLED     = 0
	GPIO_MODE_INPUT        = 1
	GPIO_MODE_INPUTPULL    = 2
	GPIO_MODE_INPUTPULLFLT = 3
	GPIO_MODE_PUSHPULL     = 4
	GPIO_MODE_PUSHPULLALT  = 5
	GPIO_MODE_WIREDAND     = 8
	GPIO_MODE_WIREDANDPULL = 10
	GPIO_MODE_WIREDANDALT  = 12

	GPIO_NUM_PORTS = 4
)

// GPIOPort is one of the four port register sets.
type GPIOPort struct {
	CTRL  reg.Register32
	MODEL reg.Register32
	MODEH reg.Register32
	DOUT  reg.Register32
	DIN   reg.Register32
}

// GPIO is the pin controller.
type GPIO struct {
	block
	Port [GPIO_NUM_PORTS]GPIOPort
}

func newGPIO(s reg.Space, c *Claims) *GPIO {
	g := &GPIO{block: block{claims: c, res: ResGPIO}}
	for i := range g.Port {
		b := GPIO_BASE + GPIO_PORT0 + uintptr(i)*GPIO_PORT_STRIDE
		g.Port[i] = GPIOPort{
			CTRL:  reg.At(s, b+GPIO_P_CTRL),
			MODEL: reg.At(s, b+GPIO_P_MODEL),
			MODEH: reg.At(s, b+GPIO_P_MODEH),
			DOUT:  reg.At(s, b+GPIO_P_DOUT),
			DIN:   reg.At(s, b+GPIO_P_DIN),
		}
	}
	return g
}

// PortAddr returns the address of register off in port p.
func PortAddr(p int, off uintptr) uintptr {
	return GPIO_BASE + GPIO_PORT0 + uintptr(p)*GPIO_PORT_STRIDE + off
}
