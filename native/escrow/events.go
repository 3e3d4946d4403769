package escrow

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"payslab/core/types"
)

const (
	EventTypeTradeCreated        = "escrow.trade.created"
	EventTypeTradeFunded         = "escrow.trade.funded"
	EventTypeTradeShipped        = "escrow.trade.shipped"
	EventTypeTradeDelivered      = "escrow.trade.delivered"
	EventTypeTradeCompleted      = "escrow.trade.completed"
	EventTypeTradeDisputed       = "escrow.trade.disputed"
	EventTypeTradeCancelled      = "escrow.trade.cancelled"
	EventTypePaymentReleased     = "escrow.paymentReleased"
	EventTypeInspectionCompleted = "escrow.inspectionCompleted"
)

// NewTradeCreatedEvent emits the canonical payload for a newly created trade.
func NewTradeCreatedEvent(t *Trade) *types.Event {
	return newTradeEvent(EventTypeTradeCreated, t, nil)
}

// NewTradeFundedEvent emits the payload when the buyer funds a trade.
func NewTradeFundedEvent(t *Trade) *types.Event {
	return newTradeEvent(EventTypeTradeFunded, t, nil)
}

// NewTradeShippedEvent emits the payload when the seller confirms shipment.
func NewTradeShippedEvent(t *Trade) *types.Event {
	attrs := map[string]string{}
	if t != nil && len(t.TrackingNumber) > 0 {
		attrs["trackingNumber"] = string(t.TrackingNumber)
	}
	return newTradeEvent(EventTypeTradeShipped, t, attrs)
}

// NewTradeDeliveredEvent emits the payload when delivery is confirmed.
func NewTradeDeliveredEvent(t *Trade) *types.Event {
	return newTradeEvent(EventTypeTradeDelivered, t, nil)
}

// NewTradeCompletedEvent emits the payload when a trade reaches its terminal
// success state.
func NewTradeCompletedEvent(t *Trade) *types.Event {
	return newTradeEvent(EventTypeTradeCompleted, t, nil)
}

// NewTradeDisputedEvent emits the payload when a party disputes a trade.
func NewTradeDisputedEvent(t *Trade, reason string) *types.Event {
	attrs := map[string]string{}
	if strings.TrimSpace(reason) != "" {
		attrs["reason"] = reason
	}
	return newTradeEvent(EventTypeTradeDisputed, t, attrs)
}

// NewTradeCancelledEvent emits the payload when a trade is cancelled, including
// the amount refunded to the buyer.
func NewTradeCancelledEvent(t *Trade, refund *big.Int) *types.Event {
	attrs := map[string]string{}
	if refund != nil {
		attrs["refund"] = refund.String()
	}
	return newTradeEvent(EventTypeTradeCancelled, t, attrs)
}

// NewInspectionCompletedEvent emits the payload recorded by an inspector.
func NewInspectionCompletedEvent(t *Trade) *types.Event {
	attrs := map[string]string{}
	if t != nil {
		attrs["inspectionStatus"] = t.InspectionStatus.String()
		if t.Inspector != ([20]byte{}) {
			attrs["inspector"] = hex.EncodeToString(t.Inspector[:])
		}
	}
	return newTradeEvent(EventTypeInspectionCompleted, t, attrs)
}

// NewPaymentReleasedEvent emits the payload for a milestone payout.
func NewPaymentReleasedEvent(tradeID uint64, recipient [20]byte, amount *big.Int, milestone Milestone) *types.Event {
	attrs := map[string]string{
		"tradeId":   strconv.FormatUint(tradeID, 10),
		"recipient": hex.EncodeToString(recipient[:]),
		"milestone": string(milestone),
	}
	if amount != nil {
		attrs["amount"] = amount.String()
	} else {
		attrs["amount"] = "0"
	}
	return &types.Event{Type: EventTypePaymentReleased, Attributes: attrs}
}

func newTradeEvent(eventType string, t *Trade, extra map[string]string) *types.Event {
	attrs := make(map[string]string)
	if t == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	sanitized, err := SanitizeTrade(t)
	if err != nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["tradeId"] = strconv.FormatUint(sanitized.ID, 10)
	attrs["buyer"] = hex.EncodeToString(sanitized.Buyer[:])
	attrs["seller"] = hex.EncodeToString(sanitized.Seller[:])
	attrs["totalAmount"] = sanitized.TotalAmount.String()
	attrs["depositAmount"] = sanitized.DepositAmount.String()
	attrs["shipmentAmount"] = sanitized.ShipmentAmount.String()
	attrs["deliveryAmount"] = sanitized.DeliveryAmount.String()
	attrs["status"] = sanitized.Status.String()
	attrs["createdAt"] = strconv.FormatInt(sanitized.CreatedAt, 10)
	if sanitized.DeliveryDeadline > 0 {
		attrs["deliveryDeadline"] = strconv.FormatInt(sanitized.DeliveryDeadline, 10)
	}
	if sanitized.InspectionRequired {
		attrs["inspectionStatus"] = sanitized.InspectionStatus.String()
	}
	for k, v := range extra {
		attrs[k] = v
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}
