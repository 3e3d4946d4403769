package state

import (
	"fmt"
	"math/big"

	"payslab/native/escrow"
)

type storedTrade struct {
	ID                 uint64
	Buyer              [20]byte
	Seller             [20]byte
	TotalAmount        *big.Int
	DepositAmount      *big.Int
	ShipmentAmount     *big.Int
	DeliveryAmount     *big.Int
	Status             uint8
	InspectionStatus   uint8
	InspectionRequired bool
	Inspector          [20]byte
	TrackingNumber     []byte
	QualityStandards   []byte
	CreatedAt          uint64
	DeliveryDeadline   uint64
}

type storedInspector struct {
	Active bool
}

func tradeKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%d", tradePrefix, id))
}

func inspectorKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", inspectorPrefix, addr))
}

// TradePut persists the sanitized trade record under its identifier.
func (m *Manager) TradePut(t *escrow.Trade) error {
	sanitized, err := escrow.SanitizeTrade(t)
	if err != nil {
		return err
	}
	stored := storedTrade{
		ID:                 sanitized.ID,
		Buyer:              sanitized.Buyer,
		Seller:             sanitized.Seller,
		TotalAmount:        sanitized.TotalAmount,
		DepositAmount:      sanitized.DepositAmount,
		ShipmentAmount:     sanitized.ShipmentAmount,
		DeliveryAmount:     sanitized.DeliveryAmount,
		Status:             uint8(sanitized.Status),
		InspectionStatus:   uint8(sanitized.InspectionStatus),
		InspectionRequired: sanitized.InspectionRequired,
		Inspector:          sanitized.Inspector,
		TrackingNumber:     sanitized.TrackingNumber,
		QualityStandards:   sanitized.QualityStandards,
	}
	if sanitized.CreatedAt > 0 {
		stored.CreatedAt = uint64(sanitized.CreatedAt)
	}
	if sanitized.DeliveryDeadline > 0 {
		stored.DeliveryDeadline = uint64(sanitized.DeliveryDeadline)
	}
	return m.KVPut(tradeKey(sanitized.ID), &stored)
}

// TradeGet loads the trade stored under id. The boolean reports existence; a
// missing trade is never signalled through a sentinel record.
func (m *Manager) TradeGet(id uint64) (*escrow.Trade, bool, error) {
	if id == 0 {
		return nil, false, nil
	}
	var stored storedTrade
	ok, err := m.KVGet(tradeKey(id), &stored)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	trade := &escrow.Trade{
		ID:                 stored.ID,
		Buyer:              stored.Buyer,
		Seller:             stored.Seller,
		TotalAmount:        stored.TotalAmount,
		DepositAmount:      stored.DepositAmount,
		ShipmentAmount:     stored.ShipmentAmount,
		DeliveryAmount:     stored.DeliveryAmount,
		Status:             escrow.TradeStatus(stored.Status),
		InspectionStatus:   escrow.InspectionStatus(stored.InspectionStatus),
		InspectionRequired: stored.InspectionRequired,
		Inspector:          stored.Inspector,
		TrackingNumber:     stored.TrackingNumber,
		QualityStandards:   stored.QualityStandards,
		CreatedAt:          int64(stored.CreatedAt),
		DeliveryDeadline:   int64(stored.DeliveryDeadline),
	}
	sanitized, err := escrow.SanitizeTrade(trade)
	if err != nil {
		return nil, false, err
	}
	return sanitized, true, nil
}

// TradeNextID allocates the next trade identifier from the persistent
// sequence. Identifiers start at 1; 0 is never allocated.
func (m *Manager) TradeNextID() (uint64, error) {
	var current uint64
	if _, err := m.KVGet(tradeSeqKeyBytes, &current); err != nil {
		return 0, err
	}
	next := current + 1
	if err := m.KVPut(tradeSeqKeyBytes, next); err != nil {
		return 0, err
	}
	return next, nil
}

// PlatformOwner returns the configured owner address, if any.
func (m *Manager) PlatformOwner() ([20]byte, bool, error) {
	var owner [20]byte
	ok, err := m.KVGet(platformOwnerKey, &owner)
	return owner, ok, err
}

// SetPlatformOwner persists the owner address.
func (m *Manager) SetPlatformOwner(addr [20]byte) error {
	return m.KVPut(platformOwnerKey, addr)
}

// FeeCollector returns the configured fee collector address, if any.
func (m *Manager) FeeCollector() ([20]byte, bool, error) {
	var collector [20]byte
	ok, err := m.KVGet(feeCollectorKey, &collector)
	return collector, ok, err
}

// SetFeeCollector persists the fee collector address.
func (m *Manager) SetFeeCollector(addr [20]byte) error {
	return m.KVPut(feeCollectorKey, addr)
}

// PlatformFeeBps returns the configured fee rate, if any.
func (m *Manager) PlatformFeeBps() (uint32, bool, error) {
	var bps uint32
	ok, err := m.KVGet(platformFeeKey, &bps)
	return bps, ok, err
}

// SetPlatformFeeBps persists the fee rate.
func (m *Manager) SetPlatformFeeBps(bps uint32) error {
	return m.KVPut(platformFeeKey, bps)
}

// InspectorAdd grants the inspector role to addr.
func (m *Manager) InspectorAdd(addr [20]byte) error {
	return m.KVPut(inspectorKey(addr), &storedInspector{Active: true})
}

// InspectorRemove revokes the inspector role from addr.
func (m *Manager) InspectorRemove(addr [20]byte) error {
	return m.KVPut(inspectorKey(addr), &storedInspector{Active: false})
}

// InspectorIs reports whether addr currently holds the inspector role.
func (m *Manager) InspectorIs(addr [20]byte) (bool, error) {
	var stored storedInspector
	ok, err := m.KVGet(inspectorKey(addr), &stored)
	if err != nil {
		return false, err
	}
	return ok && stored.Active, nil
}
