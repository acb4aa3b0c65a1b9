//go:build tinygo

package fmtx

import "io"

// DefaultOutput receives Logf lines. It starts on the runtime console
// (the board's default UART or USB CDC); point it elsewhere from the
// platform bootstrap.
var DefaultOutput io.Writer = console{}

type console struct{}

func (console) Write(p []byte) (int, error) {
	print(string(p))
	return len(p), nil
}
