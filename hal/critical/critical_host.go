//go:build !tinygo

package critical

import "sync"

type Section struct {
	mu sync.Mutex
}

type state struct{}

func (s *Section) enter() state { s.mu.Lock(); return state{} }
func (s *Section) exit(state)   { s.mu.Unlock() }
