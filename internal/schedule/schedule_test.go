package schedule

import (
	"testing"
	"time"
)

func TestManual_RunsDueTasksInOrder(t *testing.T) {
	m := NewManual()
	var order []string
	m.After(time.Second, func() { order = append(order, "late") })
	m.After(500*time.Millisecond, func() { order = append(order, "early") })

	m.Advance(400 * time.Millisecond)
	if len(order) != 0 {
		t.Fatalf("ran too early: %v", order)
	}

	m.Advance(time.Second)
	if len(order) != 2 || order[0] != "early" || order[1] != "late" {
		t.Fatalf("order = %v, want [early late]", order)
	}
	if m.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", m.Pending())
	}
}

func TestManual_CancelPreventsRun(t *testing.T) {
	m := NewManual()
	ran := false
	cancel := m.After(time.Second, func() { ran = true })

	if !cancel() {
		t.Fatal("expected first cancel to report stopped")
	}
	if cancel() {
		t.Fatal("expected second cancel to report false")
	}
	m.Advance(2 * time.Second)
	if ran {
		t.Fatal("canceled task ran")
	}
}

func TestManual_TaskCanScheduleFollowUp(t *testing.T) {
	m := NewManual()
	count := 0
	m.After(time.Second, func() {
		count++
		m.After(0, func() { count++ })
	})
	m.Advance(time.Second)
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestReal_CancelStopsTimer(t *testing.T) {
	done := make(chan struct{})
	cancel := Real{}.After(time.Hour, func() { close(done) })
	if !cancel() {
		t.Fatal("expected cancel to stop pending timer")
	}
}
