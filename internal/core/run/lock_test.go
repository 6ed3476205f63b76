package run

import (
	"errors"
	"testing"
	"time"

	"grocery-pricer/internal/pkg/common"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)}
}

func TestLockSingleFlight(t *testing.T) {
	clock := newClock()
	lock := NewLock(10*time.Minute, clock.Now)

	ticket, err := lock.TryStart()
	if err != nil {
		t.Fatalf("first TryStart() error = %v", err)
	}
	if !lock.IsRunning() {
		t.Fatal("lock should be running")
	}
	if _, err := lock.TryStart(); !errors.Is(err, common.ErrRunInProgress) {
		t.Fatalf("second TryStart() error = %v, want ErrRunInProgress", err)
	}

	if !lock.Finish(ticket, true) {
		t.Fatal("Finish() with the current ticket should release the lock")
	}
	status := lock.Status()
	if status.State != StateIdle || status.LastOutcome != StateSucceeded || status.LastRunAt == nil {
		t.Errorf("Status() after finish = %+v", status)
	}
	ticket, err = lock.TryStart()
	if err != nil {
		t.Fatalf("TryStart() after finish error = %v", err)
	}
	lock.Finish(ticket, false)
	if got := lock.Status().LastOutcome; got != StateFailed {
		t.Errorf("LastOutcome = %s, want failed", got)
	}
}

func TestLockStuckTimeout(t *testing.T) {
	clock := newClock()
	lock := NewLock(10*time.Minute, clock.Now)

	first, _ := lock.TryStart()
	clock.Advance(10 * time.Minute)
	if _, err := lock.TryStart(); !errors.Is(err, common.ErrRunInProgress) {
		t.Fatalf("TryStart() at exactly max duration error = %v", err)
	}

	clock.Advance(time.Second)
	second, err := lock.TryStart()
	if err != nil {
		t.Fatalf("TryStart() after stuck timeout error = %v", err)
	}
	if !second.StartedAt.After(first.StartedAt) || second.Generation == first.Generation {
		t.Errorf("startedAt not refreshed: %v <= %v", second, first)
	}
}

func TestLockForceReset(t *testing.T) {
	clock := newClock()
	lock := NewLock(0, clock.Now)

	if lock.ForceReset() {
		t.Error("ForceReset() on idle lock should report false")
	}
	lock.TryStart()
	clock.Advance(time.Minute)

	status := lock.Status()
	if status.State != StateRunning || status.StartedAt == nil || status.Elapsed != "1m0s" {
		t.Errorf("Status() while running = %+v", status)
	}
	if !lock.ForceReset() {
		t.Error("ForceReset() on running lock should report true")
	}
	if lock.IsRunning() {
		t.Error("lock should be idle after ForceReset")
	}
	if _, err := lock.TryStart(); err != nil {
		t.Errorf("TryStart() after reset error = %v", err)
	}
}

func TestWeekOf(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), "2024-03-04"},
		{time.Date(2024, 3, 6, 23, 59, 0, 0, time.UTC), "2024-03-04"},
		{time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), "2024-03-04"},
		{time.Date(2024, 3, 11, 0, 0, 1, 0, time.UTC), "2024-03-11"},
		{time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), "2024-12-30"},
	}
	for _, tt := range tests {
		if got := WeekOf(tt.in); got != tt.want {
			t.Errorf("WeekOf(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if got, err := ParseWeek("2024-03-07"); err != nil || got != "2024-03-04" {
		t.Errorf("ParseWeek() = %q, %v", got, err)
	}
	if _, err := ParseWeek("03/07/2024"); err == nil {
		t.Error("ParseWeek() should reject non ISO dates")
	}
}

func TestLockStaleFinishKeepsNewerRun(t *testing.T) {
	tests := []struct {
		name     string
		takeover func(clock *fakeClock, lock *Lock)
	}{
		{"stuck timeout", func(clock *fakeClock, lock *Lock) { clock.Advance(11 * time.Minute) }},
		{"force reset", func(clock *fakeClock, lock *Lock) { lock.ForceReset() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newClock()
			lock := NewLock(10*time.Minute, clock.Now)

			stale, err := lock.TryStart()
			if err != nil {
				t.Fatal(err)
			}
			tt.takeover(clock, lock)
			current, err := lock.TryStart()
			if err != nil {
				t.Fatalf("TryStart() after takeover error = %v", err)
			}

			if lock.Finish(stale, true) {
				t.Error("Finish() with a stale ticket should report false")
			}
			if !lock.IsRunning() {
				t.Fatal("stale Finish() released the newer run's lock")
			}
			if _, err := lock.TryStart(); !errors.Is(err, common.ErrRunInProgress) {
				t.Errorf("third TryStart() error = %v, want ErrRunInProgress", err)
			}

			if !lock.Finish(current, true) || lock.IsRunning() {
				t.Error("Finish() with the current ticket should release the lock")
			}
		})
	}
}

func TestLockFinishAfterResetWithoutNewRun(t *testing.T) {
	lock := NewLock(0, newClock().Now)
	ticket, _ := lock.TryStart()
	lock.ForceReset()
	if lock.Finish(ticket, true) {
		t.Error("Finish() after ForceReset should report false")
	}
	if got := lock.Status().LastOutcome; got != "" {
		t.Errorf("LastOutcome = %q, reset run must not record an outcome", got)
	}
}
