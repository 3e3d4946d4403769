package state

import (
	"math/big"
	"testing"

	"payslab/native/escrow"
	"payslab/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(storage.NewMemDB())
}

func testAddr(fill byte) [20]byte {
	var a [20]byte
	for i := range a {
		a[i] = fill
	}
	return a
}

func sampleTrade(id uint64) *escrow.Trade {
	return &escrow.Trade{
		ID:                 id,
		Buyer:              testAddr(0x02),
		Seller:             testAddr(0x03),
		TotalAmount:        big.NewInt(1000),
		DepositAmount:      big.NewInt(200),
		ShipmentAmount:     big.NewInt(300),
		DeliveryAmount:     big.NewInt(500),
		Status:             escrow.TradeShipped,
		InspectionStatus:   escrow.InspectionPending,
		InspectionRequired: true,
		Inspector:          testAddr(0x05),
		TrackingNumber:     []byte("TRACK-9"),
		QualityStandards:   []byte("ISO-9001"),
		CreatedAt:          1_700_000_000,
		DeliveryDeadline:   1_700_100_000,
	}
}

func TestTradeRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	original := sampleTrade(9)
	if err := manager.TradePut(original); err != nil {
		t.Fatalf("put trade: %v", err)
	}
	loaded, ok, err := manager.TradeGet(9)
	if err != nil {
		t.Fatalf("get trade: %v", err)
	}
	if !ok {
		t.Fatalf("expected trade to exist")
	}
	if loaded.ID != original.ID || loaded.Buyer != original.Buyer || loaded.Seller != original.Seller {
		t.Fatalf("identity fields differ after round trip")
	}
	if loaded.TotalAmount.Cmp(original.TotalAmount) != 0 {
		t.Fatalf("total differs: %s", loaded.TotalAmount)
	}
	if loaded.Status != escrow.TradeShipped || loaded.InspectionStatus != escrow.InspectionPending {
		t.Fatalf("status fields differ: %s/%s", loaded.Status, loaded.InspectionStatus)
	}
	if !loaded.InspectionRequired || loaded.Inspector != original.Inspector {
		t.Fatalf("inspection fields differ")
	}
	if string(loaded.TrackingNumber) != "TRACK-9" || string(loaded.QualityStandards) != "ISO-9001" {
		t.Fatalf("byte fields differ")
	}
	if loaded.CreatedAt != original.CreatedAt || loaded.DeliveryDeadline != original.DeliveryDeadline {
		t.Fatalf("timestamps differ: %d/%d", loaded.CreatedAt, loaded.DeliveryDeadline)
	}
}

func TestTradeGetMissing(t *testing.T) {
	manager := newTestManager(t)
	trade, ok, err := manager.TradeGet(42)
	if err != nil {
		t.Fatalf("get trade: %v", err)
	}
	if ok || trade != nil {
		t.Fatalf("expected missing trade, got ok=%v trade=%v", ok, trade)
	}
	// Identifier 0 is never allocated and never resolves.
	if _, ok, _ := manager.TradeGet(0); ok {
		t.Fatalf("expected id 0 to be unresolvable")
	}
}

func TestTradePutRejectsInvalid(t *testing.T) {
	manager := newTestManager(t)
	broken := sampleTrade(1)
	broken.DeliveryAmount = big.NewInt(1)
	if err := manager.TradePut(broken); err == nil {
		t.Fatalf("expected error for milestone sum mismatch")
	}
}

func TestTradeNextIDSequence(t *testing.T) {
	manager := newTestManager(t)
	for want := uint64(1); want <= 5; want++ {
		id, err := manager.TradeNextID()
		if err != nil {
			t.Fatalf("next id: %v", err)
		}
		if id != want {
			t.Fatalf("expected id %d, got %d", want, id)
		}
	}
}

func TestPlatformParams(t *testing.T) {
	manager := newTestManager(t)

	if _, ok, err := manager.PlatformOwner(); err != nil || ok {
		t.Fatalf("expected unset owner, ok=%v err=%v", ok, err)
	}
	owner := testAddr(0x01)
	if err := manager.SetPlatformOwner(owner); err != nil {
		t.Fatalf("set owner: %v", err)
	}
	got, ok, err := manager.PlatformOwner()
	if err != nil || !ok || got != owner {
		t.Fatalf("owner round trip failed: %x ok=%v err=%v", got, ok, err)
	}

	collector := testAddr(0x04)
	if err := manager.SetFeeCollector(collector); err != nil {
		t.Fatalf("set collector: %v", err)
	}
	gotCollector, ok, err := manager.FeeCollector()
	if err != nil || !ok || gotCollector != collector {
		t.Fatalf("collector round trip failed")
	}

	if err := manager.SetPlatformFeeBps(100); err != nil {
		t.Fatalf("set fee: %v", err)
	}
	bps, ok, err := manager.PlatformFeeBps()
	if err != nil || !ok || bps != 100 {
		t.Fatalf("fee round trip failed: %d ok=%v err=%v", bps, ok, err)
	}
}

func TestInspectorRoleLifecycle(t *testing.T) {
	manager := newTestManager(t)
	inspector := testAddr(0x05)

	if ok, err := manager.InspectorIs(inspector); err != nil || ok {
		t.Fatalf("expected no role initially, ok=%v err=%v", ok, err)
	}
	if err := manager.InspectorAdd(inspector); err != nil {
		t.Fatalf("add inspector: %v", err)
	}
	if ok, _ := manager.InspectorIs(inspector); !ok {
		t.Fatalf("expected role after add")
	}
	if err := manager.InspectorRemove(inspector); err != nil {
		t.Fatalf("remove inspector: %v", err)
	}
	if ok, _ := manager.InspectorIs(inspector); ok {
		t.Fatalf("expected role revoked after remove")
	}
}

func TestAccountRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	addr := testAddr(0x07)

	acc, err := manager.GetAccount(addr)
	if err != nil {
		t.Fatalf("get missing account: %v", err)
	}
	if acc.Balance.Sign() != 0 {
		t.Fatalf("expected zero balance for fresh account, got %s", acc.Balance)
	}

	acc.Balance = big.NewInt(1234)
	acc.Nonce = 3
	if err := manager.PutAccount(addr, acc); err != nil {
		t.Fatalf("put account: %v", err)
	}
	loaded, err := manager.GetAccount(addr)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if loaded.Balance.Cmp(big.NewInt(1234)) != 0 || loaded.Nonce != 3 {
		t.Fatalf("account differs after round trip: %s/%d", loaded.Balance, loaded.Nonce)
	}
}

func TestPutAccountRejectsNegativeBalance(t *testing.T) {
	manager := newTestManager(t)
	acc, _ := manager.GetAccount(testAddr(0x07))
	acc.Balance = big.NewInt(-1)
	if err := manager.PutAccount(testAddr(0x07), acc); err == nil {
		t.Fatalf("expected error for negative balance")
	}
}

func TestModulePauseFlag(t *testing.T) {
	manager := newTestManager(t)
	if manager.IsPaused("trade") {
		t.Fatalf("expected unpaused by default")
	}
	if err := manager.SetModulePaused("trade", true); err != nil {
		t.Fatalf("set paused: %v", err)
	}
	if !manager.IsPaused("trade") {
		t.Fatalf("expected paused after set")
	}
	if manager.IsPaused("reputation") {
		t.Fatalf("pause must be scoped per module")
	}
	if err := manager.SetModulePaused("trade", false); err != nil {
		t.Fatalf("unset paused: %v", err)
	}
	if manager.IsPaused("trade") {
		t.Fatalf("expected unpaused after clear")
	}
}
