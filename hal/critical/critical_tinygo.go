//go:build tinygo

package critical

import "runtime/interrupt"

type Section struct{}

type state = interrupt.State

func (s *Section) enter() state  { return interrupt.Disable() }
func (s *Section) exit(st state) { interrupt.Restore(st) }
