package ramp

import (
	"errors"
	"testing"
	"time"
)

func TestLinearReachesTarget(t *testing.T) {
	var got []uint32
	var waited time.Duration
	err := Linear(0, 100, 100, 100*time.Millisecond, 10,
		func(d time.Duration) bool { waited += d; return true },
		func(l uint32) error { got = append(got, l); return nil })
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 10 || got[len(got)-1] != 100 {
		t.Fatalf("levels = %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("not monotonic: %v", got)
		}
	}
	if waited != 100*time.Millisecond {
		t.Fatalf("waited %v", waited)
	}
}

func TestLinearDownAndClamp(t *testing.T) {
	var last uint32
	_ = Linear(80, 500, 50, 0, 4, func(time.Duration) bool { return true },
		func(l uint32) error { last = l; return nil })
	if last != 50 {
		t.Fatalf("snap must clamp to top, got %d", last)
	}
	var got []uint32
	_ = Linear(40, 0, 100, 40*time.Millisecond, 4, func(time.Duration) bool { return true },
		func(l uint32) error { got = append(got, l); return nil })
	if got[len(got)-1] != 0 || got[0] != 30 {
		t.Fatalf("levels = %v", got)
	}
}

func TestLinearCancelAndError(t *testing.T) {
	calls := 0
	_ = Linear(0, 100, 100, time.Second, 10, func(time.Duration) bool { return false },
		func(uint32) error { calls++; return nil })
	if calls != 0 {
		t.Fatalf("cancelled ramp applied %d levels", calls)
	}
	boom := errors.New("boom")
	err := Linear(0, 100, 100, time.Second, 10, func(time.Duration) bool { return true },
		func(uint32) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
