//go:build !tinygo

package fmtx

import "io"

// DefaultOutput receives Logf lines. Set it before constructing drivers.
var DefaultOutput io.Writer = discard{}
