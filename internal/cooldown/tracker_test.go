package cooldown

import "testing"

func TestTrackerLifecycle(t *testing.T) {
	tr := New(2)
	if !tr.Ready() {
		t.Fatalf("fresh tracker should be ready")
	}

	tr.Trigger()
	if tr.Ready() {
		t.Fatalf("tracker ready right after trigger")
	}
	if tr.String() != "2/2" {
		t.Fatalf("String() = %q, want 2/2", tr.String())
	}

	tr.Tick()
	if tr.Ready() {
		t.Fatalf("tracker ready after one of two ticks")
	}
	tr.Tick()
	if !tr.Ready() {
		t.Fatalf("tracker not ready after full recharge")
	}

	tr.Tick()
	if tr.Remaining != 0 {
		t.Fatalf("Remaining went below zero: %d", tr.Remaining)
	}
}

func TestTrackerReset(t *testing.T) {
	tr := New(4)
	tr.Trigger()
	tr.Reset()
	if !tr.Ready() {
		t.Fatalf("reset tracker should be ready")
	}
}

func TestNilTrackerIsReady(t *testing.T) {
	var tr *Tracker
	tr.Tick()
	tr.Trigger()
	if !tr.Ready() {
		t.Fatalf("nil tracker should report ready")
	}
	if tr.String() != "none" {
		t.Fatalf("nil String() = %q", tr.String())
	}
}
