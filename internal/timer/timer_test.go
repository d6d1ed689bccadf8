package timer

import (
	"testing"
	"time"
)

func TestCountdownIsNonIncreasingAndFloorsAtZero(t *testing.T) {
	tm := New(time.Hour)
	tm.Initialize(3, Countdown)
	tm.Start()
	defer tm.Close()

	prev := tm.Snapshot().Value
	for i := 0; i < 5; i++ {
		tm.Tick()
		v := tm.Snapshot().Value
		if v > prev {
			t.Fatalf("countdown increased from %d to %d", prev, v)
		}
		if v < 0 {
			t.Fatalf("countdown went negative: %d", v)
		}
		prev = v
	}
	if prev != 0 {
		t.Fatalf("expected countdown at 0, got %d", prev)
	}
	if tm.Active() {
		t.Fatalf("expected countdown to deactivate at zero")
	}
}

func TestCountdownSignalsExpiryOnce(t *testing.T) {
	tm := New(time.Hour)
	tm.Initialize(1, Countdown)
	tm.Start()
	defer tm.Close()

	if !tm.Tick() {
		t.Fatalf("expected zero-crossing tick to report expiry")
	}
	select {
	case <-tm.Expired():
	default:
		t.Fatalf("expected expiry signal")
	}
	if tm.Tick() {
		t.Fatalf("inactive timer must not report expiry again")
	}
}

func TestCountUpStrictlyIncreases(t *testing.T) {
	tm := New(time.Hour)
	tm.Initialize(0, CountUp)
	tm.Start()
	defer tm.Close()

	prev := tm.Snapshot().Value
	for i := 0; i < 4; i++ {
		tm.Tick()
		v := tm.Snapshot().Value
		if v <= prev {
			t.Fatalf("count-up did not increase: %d -> %d", prev, v)
		}
		prev = v
	}
}

func TestStoppedTimerIgnoresTicks(t *testing.T) {
	tm := New(time.Hour)
	tm.Initialize(10, Countdown)
	tm.Tick()
	if got := tm.Snapshot().Value; got != 10 {
		t.Fatalf("expected 10 before start, got %d", got)
	}
	tm.Start()
	tm.Tick()
	tm.Stop()
	tm.Tick()
	if got := tm.Snapshot().Value; got != 9 {
		t.Fatalf("expected 9 after stop, got %d", got)
	}
}

func TestRestoreAdoptsPersistedValue(t *testing.T) {
	tm := New(time.Hour)
	tm.Initialize(100, Countdown)
	tm.Start()
	tm.Tick()

	other := New(time.Hour)
	other.Restore(tm.Snapshot())
	snap := other.Snapshot()
	if !snap.IsCountdown || snap.Value != 99 || snap.InitialDuration != 100 {
		t.Fatalf("unexpected restored snapshot %+v", snap)
	}
	if other.Active() {
		t.Fatalf("restore must not start the clock")
	}
}

func TestResetReturnsToStart(t *testing.T) {
	tm := New(time.Hour)
	tm.Initialize(0, CountUp)
	tm.Start()
	tm.Tick()
	tm.Tick()
	tm.Reset()
	if got := tm.Snapshot().Value; got != 0 {
		t.Fatalf("expected reset to 0, got %d", got)
	}
	if tm.Active() {
		t.Fatalf("expected reset to stop the clock")
	}
}

func TestRunLoopTicksOnItsOwn(t *testing.T) {
	tm := New(5 * time.Millisecond)
	tm.Initialize(0, CountUp)
	ch, cancel := tm.Subscribe()
	defer cancel()
	<-ch // initial snapshot

	tm.Start()
	defer tm.Close()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-ch:
			if snap.Value >= 2 {
				return
			}
		case <-deadline:
			t.Fatalf("timer did not tick")
		}
	}
}

func TestFormat(t *testing.T) {
	cases := map[int]string{
		0:     "00:00",
		59:    "00:59",
		61:    "01:01",
		3600:  "1:00:00",
		16200: "4:30:00",
		-5:    "00:00",
	}
	for in, want := range cases {
		if got := Format(in); got != want {
			t.Fatalf("Format(%d) = %q, want %q", in, got, want)
		}
	}
}
