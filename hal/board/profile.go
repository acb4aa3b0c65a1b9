// Package board turns a board profile into running drivers.
//
// A profile is plain data (types.BoardProfile) read from JSON or YAML or
// taken from the built-in table. Open resolves its clocks on a chip,
// freezes them and constructs every driver it names; Plan reports what
// each one derived.
package board

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"efr32hal/errcode"
	"efr32hal/hal/adc"
	"efr32hal/hal/clock"
	"efr32hal/hal/i2c"
	"efr32hal/hal/spi"
	"efr32hal/hal/timer"
	"efr32hal/hal/usart"
	"efr32hal/types"
	"efr32hal/x/fmtx"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errcode.InvalidConfig

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatOf picks a format from a file name; anything not .yaml/.yml is
// JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// Load decodes one profile. Unknown fields are rejected so a misspelt key
// does not silently fall back to a default.
func Load(r io.Reader, f Format) (types.BoardProfile, error) {
	var p types.BoardProfile
	var err error
	switch f {
	case JSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&p)
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&p)
	default:
		return p, &errcode.E{C: ErrInvalidConfig, Op: "board.load", Msg: "format " + string(f)}
	}
	if err != nil {
		return p, &errcode.E{C: ErrInvalidConfig, Op: "board.load", Msg: string(f), Err: err}
	}
	return p, Validate(p)
}

// -----------------------------------------------------------------------------
// Built-in profiles
// -----------------------------------------------------------------------------

const (
	XiaoMG24 = "xiao-mg24"
	BRD4187C = "brd4187c"
)

const cfgXiao = `{
  "name": "xiao-mg24",
  "hfxo_hz": 39000000,
  "lfxo_hz": 32768,
  "uart": {"baud": 115200},
  "i2c": {"bus": 0, "hz": 100000},
  "spi": {"port": "eusart1", "hz": 1000000, "mode": 0},
  "timers": [{"index": 0, "hz": 1000, "pwm": "edge"}],
  "adc": {"reference": "vbgr"},
  "dma_channels": [0]
}`

// Radio board on the wireless starter kit: sensors on I2C1 at fast mode,
// flash on EUSART1.
const cfgBRD4187C = `{
  "name": "brd4187c",
  "hfxo_hz": 39000000,
  "lfxo_hz": 32768,
  "uart": {"baud": 115200},
  "i2c": {"bus": 1, "hz": 400000},
  "spi": {"port": "eusart1", "hz": 4000000, "mode": 0},
  "timers": [
    {"index": 0, "hz": 10000, "pwm": "edge"},
    {"index": 1, "hz": 100}
  ],
  "adc": {"reference": "vdd", "clock_hz": 5000000},
  "dma_channels": [0, 1]
}`

var embeddedProfiles = map[string][]byte{
	XiaoMG24: []byte(cfgXiao),
	BRD4187C: []byte(cfgBRD4187C),
}

// Lookup returns a built-in profile by name.
func Lookup(name string) (types.BoardProfile, error) {
	raw, ok := embeddedProfiles[name]
	if !ok {
		return types.BoardProfile{}, &errcode.E{C: ErrInvalidConfig, Op: "board.lookup", Msg: "no profile " + name}
	}
	return Load(bytes.NewReader(raw), JSON)
}

// Names lists the built-in profiles.
func Names() []string { return []string{BRD4187C, XiaoMG24} }

// Default is the XIAO MG24 profile.
func Default() types.BoardProfile {
	p, err := Lookup(XiaoMG24)
	if err != nil {
		panic(err)
	}
	return p
}

// -----------------------------------------------------------------------------
// Profile -> driver configs
// -----------------------------------------------------------------------------

func invalid(msg string, a ...any) error {
	return &errcode.E{C: ErrInvalidConfig, Op: "board.profile", Msg: fmtx.Sprintf(msg, a...)}
}

// Validate checks the enumerated fields. Rates are left to the drivers,
// which know the clock they run from.
func Validate(p types.BoardProfile) error {
	if p.UART != nil {
		if _, err := UARTConfig(*p.UART); err != nil {
			return err
		}
	}
	if p.I2C != nil && p.I2C.Bus > 1 {
		return invalid("i2c bus %d", p.I2C.Bus)
	}
	if p.SPI != nil {
		if _, err := SPIConfig(*p.SPI); err != nil {
			return err
		}
		switch p.SPI.Port {
		case "usart0", "eusart0", "eusart1":
		default:
			return invalid("spi port %q", p.SPI.Port)
		}
		if p.SPI.Port == "usart0" && p.UART != nil {
			return invalid("usart0 used for both uart and spi")
		}
	}
	seen := map[uint8]bool{}
	for _, t := range p.Timers {
		if t.Index > 4 || seen[t.Index] {
			return invalid("timer%d", t.Index)
		}
		seen[t.Index] = true
		if _, err := TimerConfig(t); err != nil {
			return err
		}
	}
	if p.ADC != nil {
		if _, err := ADCConfig(*p.ADC); err != nil {
			return err
		}
	}
	for _, ch := range p.DMA {
		if ch < 0 || ch > 7 {
			return invalid("dma channel %d", ch)
		}
	}
	return nil
}

func ClockConfig(p types.BoardProfile) clock.Config {
	var c clock.Config
	if p.HFXOHz != 0 {
		c.HFXO = clock.NewCrystal(p.HFXOHz)
	}
	if p.LFXOHz != 0 {
		c.LFXO = clock.NewCrystal(p.LFXOHz)
	}
	return c
}

func UARTConfig(u types.UARTProfile) (usart.Config, error) {
	c := usart.Config{Baud: u.Baud, DataBits: usart.DataBits(u.DataBits)}
	switch u.Parity {
	case "", "none":
		c.Parity = usart.ParityNone
	case "even":
		c.Parity = usart.ParityEven
	case "odd":
		c.Parity = usart.ParityOdd
	default:
		return c, invalid("parity %q", u.Parity)
	}
	switch u.StopBits {
	case "", "1":
		c.StopBits = usart.StopBits1
	case "0.5":
		c.StopBits = usart.StopBitsHalf
	case "1.5":
		c.StopBits = usart.StopBits1_5
	case "2":
		c.StopBits = usart.StopBits2
	default:
		return c, invalid("stop bits %q", u.StopBits)
	}
	return c, nil
}

func I2CConfig(b types.I2CProfile) i2c.Config { return i2c.Config{Frequency: b.Hz} }

func SPIConfig(s types.SPIProfile) (spi.Config, error) {
	if s.Mode > 3 {
		return spi.Config{}, invalid("spi mode %d", s.Mode)
	}
	c := spi.Config{Mode: spi.Mode(s.Mode), Frequency: s.Hz}
	if s.LSBFirst {
		c.BitOrder = spi.LSBFirst
	}
	return c, nil
}

func TimerConfig(t types.TimerProfile) (timer.Config, error) {
	switch t.PWM {
	case "":
		return timer.Config{Frequency: t.Hz}, nil
	case "edge":
		return timer.PWM(t.Hz, timer.EdgeAligned), nil
	case "center":
		return timer.PWM(t.Hz, timer.CenterAligned), nil
	}
	return timer.Config{}, invalid("timer%d pwm %q", t.Index, t.PWM)
}

func ADCConfig(a types.ADCProfile) (adc.Config, error) {
	c := adc.Config{ClockHz: a.ClockHz}
	switch a.Reference {
	case "", "vbgr":
		c.Reference = adc.RefVBGR
	case "vdd":
		c.Reference = adc.RefVDD
	default:
		return c, invalid("adc reference %q", a.Reference)
	}
	return c, nil
}
