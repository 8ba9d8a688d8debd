package classifier

import (
	"testing"
	"time"
)

func TestHourlyBudget_Exhaustion(t *testing.T) {
	b := NewHourlyBudget(2, 0)

	if !b.Allow() {
		t.Fatal("1st call should be allowed")
	}
	if !b.Allow() {
		t.Fatal("2nd call should be allowed")
	}
	if b.Allow() {
		t.Fatal("3rd call should be rejected (budget 2)")
	}
	if got := b.Remaining(); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
}

func TestHourlyBudget_MinInterval(t *testing.T) {
	b := NewHourlyBudget(100, 20*time.Second)

	base := time.Now()
	now := base
	b.now = func() time.Time { return now }

	if !b.Allow() {
		t.Fatal("first call should be allowed")
	}

	now = base.Add(5 * time.Second)
	if b.Allow() {
		t.Fatal("call within spacing interval should be rejected")
	}

	now = base.Add(21 * time.Second)
	if !b.Allow() {
		t.Fatal("call after spacing interval should be allowed")
	}
}

func TestHourlyBudget_WindowReset(t *testing.T) {
	b := NewHourlyBudget(1, 0)

	base := time.Now()
	now := base
	b.now = func() time.Time { return now }

	if !b.Allow() {
		t.Fatal("first call should be allowed")
	}
	if b.Allow() {
		t.Fatal("budget of 1 is spent")
	}

	now = base.Add(time.Hour + time.Second)
	if got := b.Remaining(); got != 1 {
		t.Errorf("Remaining after window rollover = %d, want 1", got)
	}
	if !b.Allow() {
		t.Fatal("new window should grant a fresh budget")
	}
}
