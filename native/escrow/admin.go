package escrow

import "fmt"

func (e *Engine) requireOwner(caller [20]byte) error {
	owner, err := e.owner()
	if err != nil {
		return err
	}
	if caller != owner {
		return fmt.Errorf("%w: owner required", ErrUnauthorized)
	}
	return nil
}

// AddInspector grants an account the inspector role.
func (e *Engine) AddInspector(caller, inspector [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	return e.state.InspectorAdd(inspector)
}

// RemoveInspector revokes the inspector role.
func (e *Engine) RemoveInspector(caller, inspector [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	return e.state.InspectorRemove(inspector)
}

// UpdatePlatformFee sets the fee rate charged within each milestone payment.
// Rates above MaxPlatformFeeBps are rejected. Already-created trades keep their
// frozen milestone split; only fees on future payments change.
func (e *Engine) UpdatePlatformFee(caller [20]byte, bps uint32) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if bps > MaxPlatformFeeBps {
		return fmt.Errorf("%w: %d bps", ErrFeeTooHigh, bps)
	}
	return e.state.SetPlatformFeeBps(bps)
}

// UpdateFeeCollector changes the account receiving the platform's cut.
func (e *Engine) UpdateFeeCollector(caller, collector [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	return e.state.SetFeeCollector(collector)
}

// IsInspector reports whether the account holds the inspector role.
func (e *Engine) IsInspector(addr [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	return e.state.InspectorIs(addr)
}
