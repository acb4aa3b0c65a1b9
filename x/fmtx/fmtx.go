// Package fmtx is the trace sink shared by the drivers. Host builds
// discard output until a tool points DefaultOutput somewhere; TinyGo
// builds write to the runtime console.
package fmtx

import (
	"fmt"
	"sync"
)

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

var mu sync.Mutex

// Logf writes one line to DefaultOutput.
func Logf(format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := DefaultOutput.(discard); ok {
		return
	}
	fmt.Fprintf(DefaultOutput, format+"\n", a...)
}

// Sprintf and Errorf mirror fmt.
func Sprintf(format string, a ...any) string { return fmt.Sprintf(format, a...) }
func Errorf(format string, a ...any) error   { return fmt.Errorf(format, a...) }
