package escrow

import (
	"fmt"
	"math/big"
)

// TradeStatus represents the lifecycle states supported by the trade engine.
type TradeStatus uint8

const (
	TradeCreated TradeStatus = iota
	TradeFunded
	TradeShipped
	TradeDelivered
	TradeCompleted
	TradeDisputed
	TradeCancelled
)

// Valid reports whether the status value is within the supported range.
func (s TradeStatus) Valid() bool {
	switch s {
	case TradeCreated, TradeFunded, TradeShipped, TradeDelivered, TradeCompleted, TradeDisputed, TradeCancelled:
		return true
	default:
		return false
	}
}

// String returns the canonical label used in events and RPC payloads.
func (s TradeStatus) String() string {
	switch s {
	case TradeCreated:
		return "created"
	case TradeFunded:
		return "funded"
	case TradeShipped:
		return "shipped"
	case TradeDelivered:
		return "delivered"
	case TradeCompleted:
		return "completed"
	case TradeDisputed:
		return "disputed"
	case TradeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further lifecycle transitions are possible.
// Disputed trades stay open indefinitely pending manual resolution.
func (s TradeStatus) Terminal() bool {
	return s == TradeCompleted || s == TradeCancelled
}

// InspectionStatus tracks the optional third-party quality check gating the
// delivery milestone.
type InspectionStatus uint8

const (
	InspectionPending InspectionStatus = iota
	InspectionPassed
	InspectionFailed
	InspectionNotRequired
)

// Valid reports whether the inspection status is within the supported range.
func (s InspectionStatus) Valid() bool {
	switch s {
	case InspectionPending, InspectionPassed, InspectionFailed, InspectionNotRequired:
		return true
	default:
		return false
	}
}

// String returns the canonical label used in events and RPC payloads.
func (s InspectionStatus) String() string {
	switch s {
	case InspectionPending:
		return "pending"
	case InspectionPassed:
		return "passed"
	case InspectionFailed:
		return "failed"
	case InspectionNotRequired:
		return "not_required"
	default:
		return "unknown"
	}
}

// Milestone labels the three payment legs of a trade.
type Milestone string

const (
	MilestoneDeposit  Milestone = "DEPOSIT"
	MilestoneShipment Milestone = "SHIPMENT"
	MilestoneDelivery Milestone = "DELIVERY"
)

const (
	depositShareBps  = 2_000
	shipmentShareBps = 3_000
)

// Trade captures one escrow instance between a buyer and seller. The milestone
// amounts are computed once at creation and frozen into the record so later fee
// rate changes never retroactively resize already-allocated milestones.
type Trade struct {
	ID                 uint64
	Buyer              [20]byte
	Seller             [20]byte
	TotalAmount        *big.Int
	DepositAmount      *big.Int
	ShipmentAmount     *big.Int
	DeliveryAmount     *big.Int
	Status             TradeStatus
	InspectionStatus   InspectionStatus
	InspectionRequired bool
	Inspector          [20]byte
	TrackingNumber     []byte
	QualityStandards   []byte
	CreatedAt          int64
	DeliveryDeadline   int64
}

// Clone returns a deep copy of the trade so callers can safely mutate the copy
// without affecting the stored instance.
func (t *Trade) Clone() *Trade {
	if t == nil {
		return nil
	}
	clone := *t
	clone.TotalAmount = cloneBigInt(t.TotalAmount)
	clone.DepositAmount = cloneBigInt(t.DepositAmount)
	clone.ShipmentAmount = cloneBigInt(t.ShipmentAmount)
	clone.DeliveryAmount = cloneBigInt(t.DeliveryAmount)
	clone.TrackingNumber = append([]byte(nil), t.TrackingNumber...)
	clone.QualityStandards = append([]byte(nil), t.QualityStandards...)
	return &clone
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// SplitMilestones partitions the trade total into the fixed 20%/30%/remainder
// milestone amounts. The delivery leg absorbs any integer-division remainder so
// the three parts always sum to the total.
func SplitMilestones(total *big.Int) (deposit, shipment, delivery *big.Int, err error) {
	if total == nil || total.Sign() < 0 {
		return nil, nil, nil, fmt.Errorf("escrow: total amount must be non-negative")
	}
	deposit = new(big.Int).Mul(total, big.NewInt(depositShareBps))
	deposit.Div(deposit, big.NewInt(10_000))
	shipment = new(big.Int).Mul(total, big.NewInt(shipmentShareBps))
	shipment.Div(shipment, big.NewInt(10_000))
	delivery = new(big.Int).Sub(total, deposit)
	delivery.Sub(delivery, shipment)
	return deposit, shipment, delivery, nil
}

// SanitizeTrade validates and normalises the supplied trade, returning a cloned
// instance with non-nil amount fields. The function does not mutate the
// original value.
func SanitizeTrade(t *Trade) (*Trade, error) {
	if t == nil {
		return nil, fmt.Errorf("escrow: nil trade")
	}
	clone := t.Clone()
	if clone.ID == 0 {
		return nil, fmt.Errorf("escrow: trade id must be positive")
	}
	if !clone.Status.Valid() {
		return nil, fmt.Errorf("escrow: invalid trade status: %d", clone.Status)
	}
	if !clone.InspectionStatus.Valid() {
		return nil, fmt.Errorf("escrow: invalid inspection status: %d", clone.InspectionStatus)
	}
	if clone.TotalAmount.Sign() < 0 {
		return nil, fmt.Errorf("escrow: trade amount must be non-negative")
	}
	sum := new(big.Int).Add(clone.DepositAmount, clone.ShipmentAmount)
	sum.Add(sum, clone.DeliveryAmount)
	if sum.Cmp(clone.TotalAmount) != 0 {
		return nil, fmt.Errorf("escrow: milestone amounts do not sum to total")
	}
	return clone, nil
}
