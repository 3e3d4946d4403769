package escrow

import (
	"fmt"
	"math/big"
)

// releaseMilestone pays out one milestone leg, splitting the gross amount into
// the platform fee and the seller's net payout. The fee rate applied is the
// rate current at the time of this payment, not at trade creation. Either
// transfer reporting failure aborts the whole transition so no partial payment
// goes uncommunicated.
func (e *Engine) releaseMilestone(trade *Trade, milestone Milestone, gross *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.token == nil {
		return errNilToken
	}
	if trade == nil {
		return fmt.Errorf("escrow: nil trade")
	}
	if gross == nil || gross.Sign() < 0 {
		return fmt.Errorf("escrow: milestone amount must be non-negative")
	}
	collector, ok, err := e.state.FeeCollector()
	if err != nil {
		return err
	}
	if !ok {
		return errNilCollector
	}
	feeBps, _, err := e.state.PlatformFeeBps()
	if err != nil {
		return err
	}
	fee := new(big.Int).Mul(gross, new(big.Int).SetUint64(uint64(feeBps)))
	fee.Div(fee, big.NewInt(10_000))
	payout := new(big.Int).Sub(gross, fee)
	if payout.Sign() > 0 {
		if !e.token.Transfer(trade.Seller, payout) {
			return fmt.Errorf("%w: %s payout", ErrTransferFailed, milestone)
		}
	}
	if fee.Sign() > 0 {
		if !e.token.Transfer(collector, fee) {
			return fmt.Errorf("%w: %s fee", ErrTransferFailed, milestone)
		}
	}
	e.emit(NewPaymentReleasedEvent(trade.ID, trade.Seller, payout, milestone))
	return nil
}
