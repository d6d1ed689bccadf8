// Package timer implements the session clock. It runs on its own goroutine and knows
// nothing about attempts or finalization.
package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

// Mode selects between the two mutually exclusive clock behaviours.
type Mode int

const (
	// CountUp increases elapsed seconds without bound.
	CountUp Mode = iota
	// Countdown decreases remaining seconds to a floor of zero.
	Countdown
)

// DefaultPeriod is the wall-clock interval between ticks.
const DefaultPeriod = time.Second

// Timer is safe for concurrent use.
type Timer struct {
	period time.Duration

	mu              sync.Mutex
	mode            Mode
	initialDuration int
	remaining       int
	elapsed         int
	active          bool
	closed          bool
	stop            chan struct{}
	subscribers     map[chan domain.TimerSnapshot]struct{}
	expired         chan struct{}
}

// New returns an inactive count-up timer ticking every period.
func New(period time.Duration) *Timer {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Timer{
		period:      period,
		subscribers: make(map[chan domain.TimerSnapshot]struct{}),
		expired:     make(chan struct{}, 1),
	}
}

// Initialize sets the configuration without starting the clock.
func (t *Timer) Initialize(duration int, mode Mode) {
	t.mu.Lock()
	t.stopLocked()
	if duration < 0 {
		duration = 0
	}
	t.mode = mode
	t.initialDuration = duration
	t.elapsed = 0
	t.remaining = 0
	if mode == Countdown {
		t.remaining = duration
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.publish(snap)
}

// Restore initializes the timer from a persisted snapshot.
func (t *Timer) Restore(snap domain.TimerSnapshot) {
	if snap.IsCountdown {
		t.Initialize(snap.InitialDuration, Countdown)
		t.Sync(snap.Value, snap.InitialDuration-snap.Value)
		return
	}
	t.Initialize(snap.InitialDuration, CountUp)
	t.Sync(0, snap.Value)
}

// Start activates ticking. A countdown already at zero stays inactive.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active || t.closed {
		return
	}
	if t.mode == Countdown && t.remaining <= 0 {
		return
	}
	t.active = true
	stop := make(chan struct{})
	t.stop = stop
	go t.run(stop)
}

// Stop deactivates ticking; the current value is kept.
func (t *Timer) Stop() {
	t.mu.Lock()
	t.stopLocked()
	t.mu.Unlock()
}

// Reset returns the clock to zero elapsed (or full duration for a countdown) and stops it.
func (t *Timer) Reset() {
	t.mu.Lock()
	t.stopLocked()
	t.elapsed = 0
	if t.mode == Countdown {
		t.remaining = t.initialDuration
	} else {
		t.remaining = 0
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.publish(snap)
}

// Sync overwrites the clock values. Used once after a resume so the persisted value is
// adopted without replaying the interval that passed while the session was closed.
func (t *Timer) Sync(remaining, elapsed int) {
	t.mu.Lock()
	if remaining < 0 {
		remaining = 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	t.remaining = remaining
	t.elapsed = elapsed
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.publish(snap)
}

// Tick advances the clock by one second if active. It reports whether this tick
// brought a countdown to zero.
func (t *Timer) Tick() bool {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return false
	}
	expired := false
	if t.mode == Countdown {
		if t.remaining > 0 {
			t.remaining--
		}
		t.elapsed = t.initialDuration - t.remaining
		if t.remaining == 0 {
			t.stopLocked()
			expired = true
		}
	} else {
		t.elapsed++
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(snap)
	if expired {
		select {
		case t.expired <- struct{}{}:
		default:
		}
	}
	return expired
}

// Expired is signalled when a countdown reaches zero. Callers decide what that means.
func (t *Timer) Expired() <-chan struct{} {
	return t.expired
}

// Active reports whether the clock is ticking.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Snapshot returns the serializable projection of the clock.
func (t *Timer) Snapshot() domain.TimerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Display renders the current value for the presentation layer.
func (t *Timer) Display() string {
	return Format(t.Snapshot().Value)
}

// Format renders seconds as MM:SS, or H:MM:SS from one hour up.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Subscribe returns a channel of snapshots, seeded with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (t *Timer) Subscribe() (<-chan domain.TimerSnapshot, func()) {
	ch := make(chan domain.TimerSnapshot, 4)

	t.mu.Lock()
	t.subscribers[ch] = struct{}{}
	ch <- t.snapshotLocked()
	t.mu.Unlock()

	cancel := func() {
		t.mu.Lock()
		if _, ok := t.subscribers[ch]; ok {
			delete(t.subscribers, ch)
			close(ch)
		}
		t.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the clock and closes every subscription.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.stopLocked()
	t.closed = true
	for ch := range t.subscribers {
		delete(t.subscribers, ch)
		close(ch)
	}
}

func (t *Timer) run(stop <-chan struct{}) {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if t.Tick() {
				return
			}
		}
	}
}

func (t *Timer) stopLocked() {
	t.active = false
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *Timer) snapshotLocked() domain.TimerSnapshot {
	snap := domain.TimerSnapshot{
		IsCountdown:     t.mode == Countdown,
		InitialDuration: t.initialDuration,
		Value:           t.elapsed,
	}
	if t.mode == Countdown {
		snap.Value = t.remaining
	}
	return snap
}

func (t *Timer) publish(snap domain.TimerSnapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for ch := range t.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow reader never blocks the clock.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
