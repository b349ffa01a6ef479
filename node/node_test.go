package node

import "testing"

func TestBaseStateMachineHappyPath(t *testing.T) {
	b := NewBase("n1")
	if b.State() != StateCreated {
		t.Fatalf("initial state = %v, want created", b.State())
	}
	if err := b.TransitionStart(); err != nil {
		t.Fatalf("TransitionStart: %v", err)
	}
	if err := b.TransitionRunning(); err != nil {
		t.Fatalf("TransitionRunning: %v", err)
	}
	if err := b.TransitionStop(); err != nil {
		t.Fatalf("TransitionStop: %v", err)
	}
	if err := b.TransitionStopped(); err != nil {
		t.Fatalf("TransitionStopped: %v", err)
	}
	if b.State() != StateStopped {
		t.Fatalf("final state = %v, want stopped", b.State())
	}
}

func TestBaseRestartAfterStop(t *testing.T) {
	b := NewBase("n1")
	_ = b.TransitionStart()
	_ = b.TransitionRunning()
	_ = b.TransitionStop()
	_ = b.TransitionStopped()

	if err := b.TransitionStart(); err != nil {
		t.Fatalf("restart from stopped should be allowed: %v", err)
	}
}

func TestBaseRejectsRunningBeforeStarting(t *testing.T) {
	b := NewBase("n1")
	if err := b.TransitionRunning(); err == nil {
		t.Fatal("expected error transitioning directly to running")
	}
}
