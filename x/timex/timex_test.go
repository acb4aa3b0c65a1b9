package timex

import (
	"testing"
	"time"
)

func TestPeriodFromHz(t *testing.T) {
	if PeriodFromHz(1000) != time.Millisecond {
		t.Fatal("1 kHz must be 1 ms")
	}
	if PeriodFromHz(0) != time.Second {
		t.Fatal("0 Hz must be coerced to 1 Hz")
	}
}

func TestCycles(t *testing.T) {
	cases := []struct {
		hz   uint32
		d    time.Duration
		want uint64
	}{
		{39_000_000, time.Microsecond, 39},
		{39_000_000, time.Second, 39_000_000},
		{19_000_000, 1500 * time.Nanosecond, 28},
		{19_000_000, -time.Second, 0},
		{0, time.Second, 0},
		// Wide multiply: d*hz overflows 64 bits here.
		{39_000_000, time.Duration(1 << 62), (1<<62)/1_000_000_000*39_000_000 + ((1<<62)%1_000_000_000)*39_000_000/1_000_000_000},
	}
	for _, c := range cases {
		if got := Cycles(c.hz, c.d); got != c.want {
			t.Fatalf("Cycles(%d, %v) = %d, want %d", c.hz, c.d, got, c.want)
		}
	}
}
