package gpio

// Parts holds every pin bonded out on the 48-pin QFN package, each in the
// floating input state it has after Split.
type Parts struct {
	PA0, PA1, PA2, PA3, PA4, PA5, PA6, PA7, PA8      Input
	PB0, PB1, PB2, PB3, PB4                          Input
	PC0, PC1, PC2, PC3, PC4, PC5, PC6, PC7, PC8, PC9 Input
	PD0, PD1, PD2, PD3, PD4, PD5                     Input

	ctl *controller
}

func newParts(c *controller) *Parts {
	in := func(port Port, n uint8) Input { return Input{pin: pin{c: c, port: port, num: n}} }
	return &Parts{
		ctl: c,
		PA0: in(PortA, 0),
		PA1: in(PortA, 1),
		PA2: in(PortA, 2),
		PA3: in(PortA, 3),
		PA4: in(PortA, 4),
		PA5: in(PortA, 5),
		PA6: in(PortA, 6),
		PA7: in(PortA, 7),
		PA8: in(PortA, 8),
		PB0: in(PortB, 0),
		PB1: in(PortB, 1),
		PB2: in(PortB, 2),
		PB3: in(PortB, 3),
		PB4: in(PortB, 4),
		PC0: in(PortC, 0),
		PC1: in(PortC, 1),
		PC2: in(PortC, 2),
		PC3: in(PortC, 3),
		PC4: in(PortC, 4),
		PC5: in(PortC, 5),
		PC6: in(PortC, 6),
		PC7: in(PortC, 7),
		PC8: in(PortC, 8),
		PC9: in(PortC, 9),
		PD0: in(PortD, 0),
		PD1: in(PortD, 1),
		PD2: in(PortD, 2),
		PD3: in(PortD, 3),
		PD4: in(PortD, 4),
		PD5: in(PortD, 5),
	}
}
