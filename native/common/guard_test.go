package common

import (
	"errors"
	"testing"
)

type stubPauses struct {
	paused map[string]bool
}

func (s stubPauses) IsPaused(module string) bool { return s.paused[module] }

func TestGuardNilViewAllows(t *testing.T) {
	if err := Guard(nil, "trade"); err != nil {
		t.Fatalf("expected nil view to allow, got %v", err)
	}
}

func TestGuardPausedModule(t *testing.T) {
	view := stubPauses{paused: map[string]bool{"trade": true}}
	if err := Guard(view, "trade"); !errors.Is(err, ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}
	if err := Guard(view, "reputation"); err != nil {
		t.Fatalf("expected other module to pass, got %v", err)
	}
}

func TestReentrancyGuard(t *testing.T) {
	var guard ReentrancyGuard
	if err := guard.Enter(); err != nil {
		t.Fatalf("first enter: %v", err)
	}
	if err := guard.Enter(); !errors.Is(err, ErrReentrancy) {
		t.Fatalf("expected ErrReentrancy on nested enter, got %v", err)
	}
	guard.Exit()
	if err := guard.Enter(); err != nil {
		t.Fatalf("enter after exit: %v", err)
	}
}
