// Package critical provides the mutual exclusion used around shared
// register read-modify-write sequences.
//
// On a TinyGo target a Section masks interrupts for the duration of the
// call and never waits. Host builds have real goroutines, so a Section
// there is a mutex. Sections do not nest: f must not re-enter the same
// Section.
package critical

// Do runs f inside s.
func (s *Section) Do(f func()) {
	st := s.enter()
	defer s.exit(st)
	f()
}
