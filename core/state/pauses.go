package state

import "fmt"

func modulePauseKey(module string) []byte {
	return []byte(fmt.Sprintf("%s%s", modulePausePrefix, module))
}

// SetModulePaused flips the operator pause flag for the named module.
func (m *Manager) SetModulePaused(module string, paused bool) error {
	return m.KVPut(modulePauseKey(module), paused)
}

// IsPaused implements common.PauseView. Read failures report the module as
// running; pausing is an operator convenience, not a safety invariant.
func (m *Manager) IsPaused(module string) bool {
	var paused bool
	ok, err := m.KVGet(modulePauseKey(module), &paused)
	if err != nil || !ok {
		return false
	}
	return paused
}
