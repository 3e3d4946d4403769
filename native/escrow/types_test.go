package escrow

import (
	"math/big"
	"testing"
)

func TestSplitMilestonesSumInvariant(t *testing.T) {
	totals := []int64{0, 1, 3, 7, 9, 10, 99, 999, 1000, 1001, 123456789}
	for _, total := range totals {
		deposit, shipment, delivery, err := SplitMilestones(big.NewInt(total))
		if err != nil {
			t.Fatalf("split %d: %v", total, err)
		}
		sum := new(big.Int).Add(deposit, shipment)
		sum.Add(sum, delivery)
		if sum.Cmp(big.NewInt(total)) != 0 {
			t.Fatalf("split %d: parts sum to %s", total, sum)
		}
		if deposit.Sign() < 0 || shipment.Sign() < 0 || delivery.Sign() < 0 {
			t.Fatalf("split %d: negative part %s/%s/%s", total, deposit, shipment, delivery)
		}
	}
}

func TestSplitMilestonesShares(t *testing.T) {
	deposit, shipment, delivery, err := SplitMilestones(big.NewInt(1000))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if deposit.Cmp(big.NewInt(200)) != 0 || shipment.Cmp(big.NewInt(300)) != 0 || delivery.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("expected 200/300/500, got %s/%s/%s", deposit, shipment, delivery)
	}
}

func TestSplitMilestonesRemainderGoesToDelivery(t *testing.T) {
	// 7 splits as 1 (20%) + 2 (30%) with delivery absorbing the remainder.
	deposit, shipment, delivery, err := SplitMilestones(big.NewInt(7))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if deposit.Int64() != 1 || shipment.Int64() != 2 || delivery.Int64() != 4 {
		t.Fatalf("expected 1/2/4, got %s/%s/%s", deposit, shipment, delivery)
	}
}

func TestSplitMilestonesRejectsNegative(t *testing.T) {
	if _, _, _, err := SplitMilestones(big.NewInt(-1)); err == nil {
		t.Fatalf("expected error for negative total")
	}
	if _, _, _, err := SplitMilestones(nil); err == nil {
		t.Fatalf("expected error for nil total")
	}
}

func TestTradeStatusTerminal(t *testing.T) {
	terminal := map[TradeStatus]bool{
		TradeCreated:   false,
		TradeFunded:    false,
		TradeShipped:   false,
		TradeDelivered: false,
		TradeCompleted: true,
		TradeDisputed:  false,
		TradeCancelled: true,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Fatalf("Terminal(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestTradeStatusValid(t *testing.T) {
	if !TradeCancelled.Valid() {
		t.Fatalf("expected cancelled to be valid")
	}
	if TradeStatus(42).Valid() {
		t.Fatalf("expected out-of-range status to be invalid")
	}
	if InspectionStatus(42).Valid() {
		t.Fatalf("expected out-of-range inspection status to be invalid")
	}
}

func TestSanitizeTradeRejectsBadRecords(t *testing.T) {
	valid := func() *Trade {
		return &Trade{
			ID:             1,
			TotalAmount:    big.NewInt(1000),
			DepositAmount:  big.NewInt(200),
			ShipmentAmount: big.NewInt(300),
			DeliveryAmount: big.NewInt(500),
			Status:         TradeCreated,
		}
	}

	if _, err := SanitizeTrade(nil); err == nil {
		t.Fatalf("expected error for nil trade")
	}

	broken := valid()
	broken.ID = 0
	if _, err := SanitizeTrade(broken); err == nil {
		t.Fatalf("expected error for zero id")
	}

	broken = valid()
	broken.Status = TradeStatus(99)
	if _, err := SanitizeTrade(broken); err == nil {
		t.Fatalf("expected error for invalid status")
	}

	broken = valid()
	broken.DeliveryAmount = big.NewInt(499)
	if _, err := SanitizeTrade(broken); err == nil {
		t.Fatalf("expected error for milestone sum mismatch")
	}

	sanitized, err := SanitizeTrade(valid())
	if err != nil {
		t.Fatalf("sanitize valid trade: %v", err)
	}
	if sanitized.TotalAmount.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("unexpected sanitized total %s", sanitized.TotalAmount)
	}
}

func TestTradeCloneIsDeep(t *testing.T) {
	original := &Trade{
		ID:             1,
		TotalAmount:    big.NewInt(1000),
		DepositAmount:  big.NewInt(200),
		ShipmentAmount: big.NewInt(300),
		DeliveryAmount: big.NewInt(500),
		TrackingNumber: []byte("TRACK-1"),
	}
	clone := original.Clone()
	clone.TotalAmount.SetInt64(5)
	clone.TrackingNumber[0] = 'X'
	if original.TotalAmount.Int64() != 1000 {
		t.Fatalf("clone shares total amount")
	}
	if original.TrackingNumber[0] != 'T' {
		t.Fatalf("clone shares tracking number")
	}
}
