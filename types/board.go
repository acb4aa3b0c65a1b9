package types

// ------------------------
// Board profile (input)
// ------------------------

// BoardProfile describes one board: its crystals and the peripherals the
// application brings up. Zero values take the driver defaults.
type BoardProfile struct {
	Name   string `json:"name" yaml:"name"`
	HFXOHz uint32 `json:"hfxo_hz,omitempty" yaml:"hfxo_hz,omitempty"` // 0 = internal HFRCO
	LFXOHz uint32 `json:"lfxo_hz,omitempty" yaml:"lfxo_hz,omitempty"` // 0 = internal LFRCO

	UART   *UARTProfile   `json:"uart,omitempty" yaml:"uart,omitempty"`
	I2C    *I2CProfile    `json:"i2c,omitempty" yaml:"i2c,omitempty"`
	SPI    *SPIProfile    `json:"spi,omitempty" yaml:"spi,omitempty"`
	Timers []TimerProfile `json:"timers,omitempty" yaml:"timers,omitempty"`
	ADC    *ADCProfile    `json:"adc,omitempty" yaml:"adc,omitempty"`
	DMA    []int          `json:"dma_channels,omitempty" yaml:"dma_channels,omitempty"`
}

// UARTProfile always uses USART0.
type UARTProfile struct {
	Baud     uint32 `json:"baud" yaml:"baud"`
	DataBits uint8  `json:"data_bits,omitempty" yaml:"data_bits,omitempty"` // 8 | 9
	Parity   string `json:"parity,omitempty" yaml:"parity,omitempty"`       // "none" | "even" | "odd"
	StopBits string `json:"stop_bits,omitempty" yaml:"stop_bits,omitempty"` // "0.5" | "1" | "1.5" | "2"
}

type I2CProfile struct {
	Bus uint8  `json:"bus" yaml:"bus"` // 0 | 1
	Hz  uint32 `json:"hz" yaml:"hz"`
}

type SPIProfile struct {
	Port     string `json:"port" yaml:"port"` // "usart0" | "eusart0" | "eusart1"
	Hz       uint32 `json:"hz" yaml:"hz"`
	Mode     uint8  `json:"mode" yaml:"mode"`
	LSBFirst bool   `json:"lsb_first,omitempty" yaml:"lsb_first,omitempty"`
}

type TimerProfile struct {
	Index uint8  `json:"index" yaml:"index"` // TIMERn
	Hz    uint32 `json:"hz" yaml:"hz"`
	PWM   string `json:"pwm,omitempty" yaml:"pwm,omitempty"` // "" | "edge" | "center"
}

type ADCProfile struct {
	Reference string `json:"reference" yaml:"reference"` // "vbgr" | "vdd"
	ClockHz   uint32 `json:"clock_hz,omitempty" yaml:"clock_hz,omitempty"`
}

// ------------------------
// Derived plan (output)
// ------------------------

// BoardPlan is what a profile resolves to on the part: clock tree and
// every register field a driver derived from it.
type BoardPlan struct {
	Board    string       `json:"board" yaml:"board"`
	HFCLK    uint32       `json:"hfclk_hz" yaml:"hfclk_hz"`
	HFSource string       `json:"hf_source" yaml:"hf_source"`
	LFCLK    uint32       `json:"lfclk_hz" yaml:"lfclk_hz"`
	LFSource string       `json:"lf_source" yaml:"lf_source"`
	UART     *DividerPlan `json:"uart,omitempty" yaml:"uart,omitempty"`
	I2C      *DividerPlan `json:"i2c,omitempty" yaml:"i2c,omitempty"`
	SPI      *DividerPlan `json:"spi,omitempty" yaml:"spi,omitempty"`
	Timers   []TimerPlan  `json:"timers,omitempty" yaml:"timers,omitempty"`
	ADC      *DividerPlan `json:"adc,omitempty" yaml:"adc,omitempty"`
	DMA      []int        `json:"dma_channels,omitempty" yaml:"dma_channels,omitempty"`
}

// DividerPlan is one clock divider: the rate asked for, the field value
// and the rate it really produces.
type DividerPlan struct {
	Block    string `json:"block" yaml:"block"`
	TargetHz uint32 `json:"target_hz" yaml:"target_hz"`
	Divider  uint32 `json:"divider" yaml:"divider"`
	ActualHz uint32 `json:"actual_hz" yaml:"actual_hz"`
}

type TimerPlan struct {
	Block      string `json:"block" yaml:"block"`
	TargetHz   uint32 `json:"target_hz" yaml:"target_hz"`
	PrescShift uint8  `json:"presc_shift" yaml:"presc_shift"`
	Top        uint32 `json:"top" yaml:"top"`
	AchievedHz uint32 `json:"achieved_hz" yaml:"achieved_hz"`
	PWM        string `json:"pwm,omitempty" yaml:"pwm,omitempty"`
}
