package main

import (
	"fmt"

	"efr32hal/hal/timing"
	"efr32hal/x/fmtx"
	"efr32hal/x/mathx"
	"efr32hal/x/timex"

	"github.com/spf13/cobra"
)

var (
	dividerOpts struct {
		src    uint32
		target uint32
		width  uint8
	}

	dividerCmd = &cobra.Command{
		Use:       "divider (uart|i2c|spi-usart|spi-eusart|timer|adc)",
		Short:     "Derive one divider from a source clock and a target rate",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"uart", "i2c", "spi-usart", "spi-eusart", "timer", "adc"},
		RunE: func(cmd *cobra.Command, args []string) error {
			src, target := dividerOpts.src, dividerOpts.target
			if target == 0 {
				return fmtx.Errorf("--target must be non-zero")
			}
			out := cmd.OutOrStdout()
			switch args[0] {
			case "uart":
				d := timing.UARTClkDiv(src, target)
				fmt.Fprintf(out, "clkdiv=%d actual=%d\n", d, timing.UARTBaud(src, d))
			case "i2c":
				d := timing.ClkDiv8(src, target)
				fmt.Fprintf(out, "clkdiv=%d actual=%d\n", d, timing.I2CFrequency(src, d))
			case "spi-usart":
				d := timing.SPIUSARTClkDiv(src, target)
				fmt.Fprintf(out, "clkdiv=%d actual=%d\n", d, timing.SPIUSARTFrequency(src, d))
			case "spi-eusart":
				d := timing.ClkDiv8(src, target)
				fmt.Fprintf(out, "clkdiv=%d actual=%d\n", d, timing.ClkDiv8Frequency(src, d))
			case "timer":
				shift, top := timing.TimerPrescaleTop(src, target, mathx.Mask(dividerOpts.width))
				actual := timing.TimerFrequency(src, shift, top)
				fmt.Fprintf(out, "presc=%d top=%d actual=%d period=%s\n",
					timing.TimerPresc(shift), top, actual, timex.PeriodFromHz(actual))
			case "adc":
				p := timing.ADCPrescale(src, target)
				fmt.Fprintf(out, "prescale=%d actual=%d\n", p, timing.ADCClock(src, p))
			}
			return nil
		},
	}
)

func init() {
	dividerCmd.Flags().Uint32VarP(&dividerOpts.src, "src", "s", 39_000_000, "source clock in Hz")
	dividerCmd.Flags().Uint32VarP(&dividerOpts.target, "target", "t", 0, "target rate in Hz")
	dividerCmd.Flags().Uint8VarP(&dividerOpts.width, "width", "w", 32, "timer counter width in bits")
}
