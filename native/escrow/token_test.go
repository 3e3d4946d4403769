package escrow

import (
	"math/big"
	"testing"

	"payslab/core/types"
)

type mapAccountState struct {
	accounts map[[20]byte]*types.Account
}

func newMapAccountState() *mapAccountState {
	return &mapAccountState{accounts: make(map[[20]byte]*types.Account)}
}

func (s *mapAccountState) GetAccount(addr [20]byte) (*types.Account, error) {
	acc, ok := s.accounts[addr]
	if !ok {
		return &types.Account{Balance: big.NewInt(0)}, nil
	}
	return acc.Clone(), nil
}

func (s *mapAccountState) PutAccount(addr [20]byte, acc *types.Account) error {
	s.accounts[addr] = acc.Clone()
	return nil
}

func TestLedgerTokenTransferFrom(t *testing.T) {
	state := newMapAccountState()
	module := newTestAddress(0xFF)
	token := NewLedgerToken(state, module)
	alice := newTestAddress(0x01)
	bob := newTestAddress(0x02)
	state.accounts[alice] = &types.Account{Balance: big.NewInt(100)}

	if !token.TransferFrom(alice, bob, big.NewInt(60)) {
		t.Fatalf("expected transfer to succeed")
	}
	aliceAcc, _ := state.GetAccount(alice)
	bobAcc, _ := state.GetAccount(bob)
	if aliceAcc.Balance.Int64() != 40 || bobAcc.Balance.Int64() != 60 {
		t.Fatalf("unexpected balances %s/%s", aliceAcc.Balance, bobAcc.Balance)
	}
}

func TestLedgerTokenInsufficientBalance(t *testing.T) {
	state := newMapAccountState()
	token := NewLedgerToken(state, newTestAddress(0xFF))
	alice := newTestAddress(0x01)
	state.accounts[alice] = &types.Account{Balance: big.NewInt(10)}
	if token.TransferFrom(alice, newTestAddress(0x02), big.NewInt(11)) {
		t.Fatalf("expected transfer to fail on insufficient balance")
	}
	aliceAcc, _ := state.GetAccount(alice)
	if aliceAcc.Balance.Int64() != 10 {
		t.Fatalf("balance mutated on failed transfer: %s", aliceAcc.Balance)
	}
}

func TestLedgerTokenTransferSpendsModule(t *testing.T) {
	state := newMapAccountState()
	module := newTestAddress(0xFF)
	token := NewLedgerToken(state, module)
	state.accounts[module] = &types.Account{Balance: big.NewInt(500)}
	bob := newTestAddress(0x02)

	if !token.Transfer(bob, big.NewInt(500)) {
		t.Fatalf("expected module spend to succeed")
	}
	moduleAcc, _ := state.GetAccount(module)
	bobAcc, _ := state.GetAccount(bob)
	if moduleAcc.Balance.Sign() != 0 || bobAcc.Balance.Int64() != 500 {
		t.Fatalf("unexpected balances %s/%s", moduleAcc.Balance, bobAcc.Balance)
	}
}

func TestLedgerTokenEdgeAmounts(t *testing.T) {
	state := newMapAccountState()
	token := NewLedgerToken(state, newTestAddress(0xFF))
	alice := newTestAddress(0x01)
	if !token.TransferFrom(alice, newTestAddress(0x02), big.NewInt(0)) {
		t.Fatalf("zero transfer must succeed without balance")
	}
	if token.TransferFrom(alice, newTestAddress(0x02), big.NewInt(-1)) {
		t.Fatalf("negative transfer must fail")
	}
	if token.TransferFrom(alice, newTestAddress(0x02), nil) {
		t.Fatalf("nil amount must fail")
	}
}
