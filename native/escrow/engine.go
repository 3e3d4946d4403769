package escrow

import (
	"fmt"
	"math/big"
	"time"

	"payslab/core/events"
	"payslab/core/types"
	nativecommon "payslab/native/common"
)

const tradeModuleName = "trade"

// MaxPlatformFeeBps caps the administrative fee rate at 5%.
const MaxPlatformFeeBps uint32 = 500

type engineState interface {
	TradePut(*Trade) error
	TradeGet(id uint64) (*Trade, bool, error)
	TradeNextID() (uint64, error)
	PlatformOwner() ([20]byte, bool, error)
	SetPlatformOwner(addr [20]byte) error
	FeeCollector() ([20]byte, bool, error)
	SetFeeCollector(addr [20]byte) error
	PlatformFeeBps() (uint32, bool, error)
	SetPlatformFeeBps(bps uint32) error
	InspectorAdd(addr [20]byte) error
	InspectorRemove(addr [20]byte) error
	InspectorIs(addr [20]byte) (bool, error)
}

// reputationView is the slice of the reputation module the trade engine needs:
// verification checks at creation and outcome accounting at completion.
type reputationView interface {
	IsVerified(addr [20]byte) (bool, error)
	MarkTradeStarted(buyer, seller [20]byte) error
	RecordOutcome(buyer, seller [20]byte, success bool) error
}

type escrowEvent struct {
	evt *types.Event
}

func (e escrowEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e escrowEvent) Event() *types.Event { return e.evt }

// Engine validates and performs every trade lifecycle transition, invoking the
// external token interface for the milestone payments and the reputation module
// on terminal success.
type Engine struct {
	state      engineState
	token      TokenTransferor
	reputation reputationView
	emitter    events.Emitter
	vault      [20]byte
	nowFn      func() int64
	pauses     nativecommon.PauseView
	fundGuard  nativecommon.ReentrancyGuard
}

// NewEngine creates a trade engine with a no-op emitter. Callers can override
// the emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetToken configures the external token interface.
func (e *Engine) SetToken(token TokenTransferor) { e.token = token }

// SetReputation configures the reputation module consulted at trade creation
// and updated on completion.
func (e *Engine) SetReputation(rep reputationView) { e.reputation = rep }

// SetVault configures the address escrowed funds are pulled into. With the
// ledger-backed token this is the module's own account.
func (e *Engine) SetVault(addr [20]byte) { e.vault = addr }

func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetNowFunc overrides the time source, primarily used in tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(escrowEvent{evt: evt})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

// Initialize records the platform parameters if they have not been set yet.
// Owner bootstrapping itself is the deployer's concern; the engine only
// persists what it is handed.
func (e *Engine) Initialize(owner, feeCollector [20]byte, feeBps uint32) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if feeBps > MaxPlatformFeeBps {
		return ErrFeeTooHigh
	}
	if _, ok, err := e.state.PlatformOwner(); err != nil {
		return err
	} else if !ok {
		if err := e.state.SetPlatformOwner(owner); err != nil {
			return err
		}
	}
	if _, ok, err := e.state.FeeCollector(); err != nil {
		return err
	} else if !ok {
		if err := e.state.SetFeeCollector(feeCollector); err != nil {
			return err
		}
	}
	if _, ok, err := e.state.PlatformFeeBps(); err != nil {
		return err
	} else if !ok {
		if err := e.state.SetPlatformFeeBps(feeBps); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) owner() ([20]byte, error) {
	owner, ok, err := e.state.PlatformOwner()
	if err != nil {
		return [20]byte{}, err
	}
	if !ok {
		return [20]byte{}, fmt.Errorf("trade engine: owner not configured")
	}
	return owner, nil
}

func (e *Engine) loadTrade(id uint64) (*Trade, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	trade, ok, err := e.state.TradeGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTradeNotFound
	}
	return SanitizeTrade(trade)
}

// CreateTrade instantiates a trade between two verified parties and persists
// the frozen milestone split.
func (e *Engine) CreateTrade(buyer, seller [20]byte, total *big.Int, deliveryDeadline int64, qualityStandards []byte, inspectionRequired bool) (*Trade, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.reputation == nil {
		return nil, errNilReputation
	}
	if err := nativecommon.Guard(e.pauses, tradeModuleName); err != nil {
		return nil, err
	}
	if buyer == seller {
		return nil, fmt.Errorf("escrow: buyer and seller must differ")
	}
	if total == nil || total.Sign() <= 0 {
		return nil, fmt.Errorf("escrow: total amount must be positive")
	}
	for _, party := range [2][20]byte{buyer, seller} {
		verified, err := e.reputation.IsVerified(party)
		if err != nil {
			return nil, err
		}
		if !verified {
			return nil, fmt.Errorf("%w: %x", ErrNotVerified, party)
		}
	}
	deposit, shipment, delivery, err := SplitMilestones(total)
	if err != nil {
		return nil, err
	}
	id, err := e.state.TradeNextID()
	if err != nil {
		return nil, err
	}
	inspection := InspectionNotRequired
	if inspectionRequired {
		inspection = InspectionPending
	}
	trade := &Trade{
		ID:                 id,
		Buyer:              buyer,
		Seller:             seller,
		TotalAmount:        new(big.Int).Set(total),
		DepositAmount:      deposit,
		ShipmentAmount:     shipment,
		DeliveryAmount:     delivery,
		Status:             TradeCreated,
		InspectionStatus:   inspection,
		InspectionRequired: inspectionRequired,
		QualityStandards:   append([]byte(nil), qualityStandards...),
		CreatedAt:          e.now(),
		DeliveryDeadline:   deliveryDeadline,
	}
	if err := e.state.TradePut(trade); err != nil {
		return nil, err
	}
	if err := e.reputation.MarkTradeStarted(buyer, seller); err != nil {
		return nil, err
	}
	e.emit(NewTradeCreatedEvent(trade))
	return trade.Clone(), nil
}

// FundTrade pulls the full trade amount from the buyer into the vault and
// immediately releases the deposit milestone to the seller. It is the only
// transition that both pulls funds in and pushes funds out within one call, so
// it runs under the reentrancy guard.
func (e *Engine) FundTrade(id uint64, caller [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.token == nil {
		return errNilToken
	}
	if err := e.fundGuard.Enter(); err != nil {
		return err
	}
	defer e.fundGuard.Exit()
	if err := nativecommon.Guard(e.pauses, tradeModuleName); err != nil {
		return err
	}
	trade, err := e.loadTrade(id)
	if err != nil {
		return err
	}
	if caller != trade.Buyer {
		return fmt.Errorf("%w: fund requires buyer", ErrUnauthorized)
	}
	if trade.Status != TradeCreated {
		return fmt.Errorf("%w: cannot fund in status %s", ErrInvalidState, trade.Status)
	}
	if !e.token.TransferFrom(trade.Buyer, e.vault, trade.TotalAmount) {
		return fmt.Errorf("%w: funding pull from buyer", ErrTransferFailed)
	}
	if err := e.releaseMilestone(trade, MilestoneDeposit, trade.DepositAmount); err != nil {
		return err
	}
	trade.Status = TradeFunded
	if err := e.state.TradePut(trade); err != nil {
		return err
	}
	e.emit(NewTradeFundedEvent(trade))
	return nil
}

// MarkShipped records the tracking number and releases the shipment milestone.
func (e *Engine) MarkShipped(id uint64, caller [20]byte, trackingNumber []byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, tradeModuleName); err != nil {
		return err
	}
	trade, err := e.loadTrade(id)
	if err != nil {
		return err
	}
	if caller != trade.Seller {
		return fmt.Errorf("%w: shipment requires seller", ErrUnauthorized)
	}
	if trade.Status != TradeFunded {
		return fmt.Errorf("%w: cannot ship in status %s", ErrInvalidState, trade.Status)
	}
	if err := e.releaseMilestone(trade, MilestoneShipment, trade.ShipmentAmount); err != nil {
		return err
	}
	trade.TrackingNumber = append([]byte(nil), trackingNumber...)
	trade.Status = TradeShipped
	if err := e.state.TradePut(trade); err != nil {
		return err
	}
	e.emit(NewTradeShippedEvent(trade))
	return nil
}

// ConfirmDelivery transitions the trade to delivered and releases the final
// milestone immediately unless an inspection is still pending, in which case
// release is deferred to CompleteQualityInspection.
func (e *Engine) ConfirmDelivery(id uint64, caller [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, tradeModuleName); err != nil {
		return err
	}
	trade, err := e.loadTrade(id)
	if err != nil {
		return err
	}
	owner, err := e.owner()
	if err != nil {
		return err
	}
	if caller != trade.Buyer && caller != owner {
		return fmt.Errorf("%w: delivery confirmation requires buyer or owner", ErrUnauthorized)
	}
	if trade.Status != TradeShipped {
		return fmt.Errorf("%w: cannot confirm delivery in status %s", ErrInvalidState, trade.Status)
	}
	trade.Status = TradeDelivered
	if trade.InspectionRequired && trade.InspectionStatus == InspectionPending {
		if err := e.state.TradePut(trade); err != nil {
			return err
		}
		e.emit(NewTradeDeliveredEvent(trade))
		return nil
	}
	if err := e.releaseMilestone(trade, MilestoneDelivery, trade.DeliveryAmount); err != nil {
		return err
	}
	e.emit(NewTradeDeliveredEvent(trade))
	return e.completeTrade(trade)
}

// CompleteQualityInspection records the inspector's result. A Passed result on
// a delivered trade releases the final milestone at that point.
func (e *Engine) CompleteQualityInspection(id uint64, caller [20]byte, result InspectionStatus) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, tradeModuleName); err != nil {
		return err
	}
	trade, err := e.loadTrade(id)
	if err != nil {
		return err
	}
	authorized, err := e.state.InspectorIs(caller)
	if err != nil {
		return err
	}
	if !authorized {
		return fmt.Errorf("%w: inspection requires authorized inspector", ErrUnauthorized)
	}
	if !trade.InspectionRequired {
		return ErrInvalidMilestone
	}
	if result != InspectionPassed && result != InspectionFailed {
		return fmt.Errorf("escrow: inspection result must be passed or failed")
	}
	if trade.Status.Terminal() {
		return fmt.Errorf("%w: cannot inspect in status %s", ErrInvalidState, trade.Status)
	}
	trade.InspectionStatus = result
	trade.Inspector = caller
	if trade.Status == TradeDelivered && result == InspectionPassed {
		if err := e.releaseMilestone(trade, MilestoneDelivery, trade.DeliveryAmount); err != nil {
			return err
		}
		e.emit(NewInspectionCompletedEvent(trade))
		return e.completeTrade(trade)
	}
	if err := e.state.TradePut(trade); err != nil {
		return err
	}
	e.emit(NewInspectionCompletedEvent(trade))
	return nil
}

// DisputeTrade marks the trade as disputed. Resolution is external; no funds
// move. The operation is idempotent.
func (e *Engine) DisputeTrade(id uint64, caller [20]byte, reason string) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, tradeModuleName); err != nil {
		return err
	}
	trade, err := e.loadTrade(id)
	if err != nil {
		return err
	}
	if caller != trade.Buyer && caller != trade.Seller {
		return fmt.Errorf("%w: dispute requires buyer or seller", ErrUnauthorized)
	}
	if trade.Status == TradeDisputed {
		return nil
	}
	if trade.Status.Terminal() {
		return fmt.Errorf("%w: cannot dispute in status %s", ErrInvalidState, trade.Status)
	}
	trade.Status = TradeDisputed
	if err := e.state.TradePut(trade); err != nil {
		return err
	}
	e.emit(NewTradeDisputedEvent(trade, reason))
	return nil
}

// CancelTrade voids a trade before shipment. A funded trade refunds the buyer
// the unreleased remainder; the deposit milestone already left the vault.
func (e *Engine) CancelTrade(id uint64, caller [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, tradeModuleName); err != nil {
		return err
	}
	trade, err := e.loadTrade(id)
	if err != nil {
		return err
	}
	owner, err := e.owner()
	if err != nil {
		return err
	}
	if caller != trade.Buyer && caller != owner {
		return fmt.Errorf("%w: cancel requires buyer or owner", ErrUnauthorized)
	}
	if trade.Status != TradeCreated && trade.Status != TradeFunded {
		return fmt.Errorf("%w: cannot cancel in status %s", ErrInvalidState, trade.Status)
	}
	refund := big.NewInt(0)
	if trade.Status == TradeFunded {
		if e.token == nil {
			return errNilToken
		}
		refund = new(big.Int).Sub(trade.TotalAmount, trade.DepositAmount)
		if refund.Sign() > 0 {
			if !e.token.Transfer(trade.Buyer, refund) {
				return fmt.Errorf("%w: cancellation refund", ErrTransferFailed)
			}
		}
	}
	trade.Status = TradeCancelled
	if err := e.state.TradePut(trade); err != nil {
		return err
	}
	e.emit(NewTradeCancelledEvent(trade, refund))
	return nil
}

func (e *Engine) completeTrade(trade *Trade) error {
	trade.Status = TradeCompleted
	if err := e.state.TradePut(trade); err != nil {
		return err
	}
	e.emit(NewTradeCompletedEvent(trade))
	if e.reputation != nil {
		if err := e.reputation.RecordOutcome(trade.Buyer, trade.Seller, true); err != nil {
			return err
		}
	}
	return nil
}

// GetTrade returns a copy of the stored trade. The boolean reports existence so
// absence never hides behind a sentinel record.
func (e *Engine) GetTrade(id uint64) (*Trade, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	trade, ok, err := e.state.TradeGet(id)
	if err != nil || !ok {
		return nil, false, err
	}
	return trade.Clone(), true, nil
}

// PlatformConfig reports the current owner, fee collector and fee rate.
func (e *Engine) PlatformConfig() (owner, collector [20]byte, feeBps uint32, err error) {
	if e == nil || e.state == nil {
		return owner, collector, 0, errNilState
	}
	owner, _, err = e.state.PlatformOwner()
	if err != nil {
		return owner, collector, 0, err
	}
	collector, _, err = e.state.FeeCollector()
	if err != nil {
		return owner, collector, 0, err
	}
	feeBps, _, err = e.state.PlatformFeeBps()
	return owner, collector, feeBps, err
}
