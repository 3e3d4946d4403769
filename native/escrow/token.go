package escrow

import (
	"math/big"

	"payslab/core/types"
)

// TokenTransferor is the boundary to the external fungible-token contract. Both
// methods report failure with a false return rather than faulting; the engine
// treats false identically to an error and aborts the triggering transition.
// Transfer moves funds out of the module's own balance; TransferFrom pulls
// funds from an account that approved the module.
type TokenTransferor interface {
	TransferFrom(from, to [20]byte, amount *big.Int) bool
	Transfer(to [20]byte, amount *big.Int) bool
}

type accountState interface {
	GetAccount(addr [20]byte) (*types.Account, error)
	PutAccount(addr [20]byte, acc *types.Account) error
}

// LedgerToken is the reference token implementation backed by account records
// in engine state. It faithfully reproduces the boolean success reporting the
// engine expects from an external token contract.
type LedgerToken struct {
	state  accountState
	module [20]byte
}

// NewLedgerToken constructs a token handle whose Transfer method spends from
// the supplied module address.
func NewLedgerToken(state accountState, module [20]byte) *LedgerToken {
	return &LedgerToken{state: state, module: module}
}

// TransferFrom moves amount from one account to another, reporting false on
// insufficient balance or storage failure.
func (t *LedgerToken) TransferFrom(from, to [20]byte, amount *big.Int) bool {
	return t.move(from, to, amount)
}

// Transfer moves amount from the module balance to the recipient.
func (t *LedgerToken) Transfer(to [20]byte, amount *big.Int) bool {
	return t.move(t.module, to, amount)
}

func (t *LedgerToken) move(from, to [20]byte, amount *big.Int) bool {
	if t == nil || t.state == nil {
		return false
	}
	if amount == nil || amount.Sign() < 0 {
		return false
	}
	if amount.Sign() == 0 {
		return true
	}
	fromAcc, err := t.state.GetAccount(from)
	if err != nil {
		return false
	}
	if fromAcc.Balance == nil || fromAcc.Balance.Cmp(amount) < 0 {
		return false
	}
	toAcc, err := t.state.GetAccount(to)
	if err != nil {
		return false
	}
	if toAcc.Balance == nil {
		toAcc.Balance = big.NewInt(0)
	}
	fromAcc.Balance = new(big.Int).Sub(fromAcc.Balance, amount)
	toAcc.Balance = new(big.Int).Add(toAcc.Balance, amount)
	if err := t.state.PutAccount(from, fromAcc); err != nil {
		return false
	}
	if err := t.state.PutAccount(to, toAcc); err != nil {
		return false
	}
	return true
}
