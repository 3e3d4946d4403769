package common

import "errors"

var ErrModulePaused = errors.New("module paused")

// ErrReentrancy is returned when a guarded operation is re-entered before the
// outer invocation has finished.
var ErrReentrancy = errors.New("reentrant call detected")

type PauseView interface {
	IsPaused(module string) bool
}

func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// ReentrancyGuard is a single in-flight-call flag. It protects operations that
// hand control to external collaborators (token transfers) which may call back
// into the engine synchronously. Entry points are serialized by the caller, so
// no mutex is needed; the flag only trips on nested re-entry.
type ReentrancyGuard struct {
	locked bool
}

// Enter acquires the guard, failing if it is already held.
func (g *ReentrancyGuard) Enter() error {
	if g == nil {
		return nil
	}
	if g.locked {
		return ErrReentrancy
	}
	g.locked = true
	return nil
}

// Exit releases the guard.
func (g *ReentrancyGuard) Exit() {
	if g == nil {
		return
	}
	g.locked = false
}
