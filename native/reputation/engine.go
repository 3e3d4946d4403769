package reputation

import (
	"payslab/core/events"
	"payslab/core/types"
)

type reputationEvent struct {
	evt *types.Event
}

func (e reputationEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e reputationEvent) Event() *types.Event { return e.evt }

// Engine wires higher-level operations against the ledger abstraction. It wraps
// the persistence layer to provide a convenient entry point for modules that
// need verification checks and outcome accounting without re-implementing
// storage concerns.
type Engine struct {
	ledger  *Ledger
	emitter events.Emitter
}

// NewEngine constructs an engine backed by the provided storage backend.
func NewEngine(store storage) *Engine {
	if store == nil {
		return &Engine{emitter: events.NoopEmitter{}}
	}
	return &Engine{ledger: NewLedger(store), emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if e == nil {
		return
	}
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the wall clock used by the underlying ledger.
func (e *Engine) SetNowFunc(now func() int64) {
	if e == nil || e.ledger == nil {
		return
	}
	e.ledger.SetNowFunc(now)
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(reputationEvent{evt: evt})
}

// Verify consumes the identity token and creates the caller's profile.
func (e *Engine) Verify(caller [20]byte, identityToken string) (*UserProfile, error) {
	if e == nil || e.ledger == nil {
		return nil, ErrProfileNotFound
	}
	profile, err := e.ledger.Verify(caller, identityToken)
	if err != nil {
		return nil, err
	}
	e.emit(NewUserVerifiedEvent(profile))
	return profile, nil
}

// IsVerified reports whether the account completed identity verification.
func (e *Engine) IsVerified(addr [20]byte) (bool, error) {
	if e == nil || e.ledger == nil {
		return false, ErrProfileNotFound
	}
	return e.ledger.IsVerified(addr)
}

// Profile returns the stored profile for addr.
func (e *Engine) Profile(addr [20]byte) (*UserProfile, bool, error) {
	if e == nil || e.ledger == nil {
		return nil, false, ErrProfileNotFound
	}
	return e.ledger.Profile(addr)
}

// ReputationOf returns the bounded reputation score for addr.
func (e *Engine) ReputationOf(addr [20]byte) (uint64, error) {
	if e == nil || e.ledger == nil {
		return 0, ErrProfileNotFound
	}
	return e.ledger.ReputationOf(addr)
}

// MarkTradeStarted increments the lifetime trade counters of both parties.
func (e *Engine) MarkTradeStarted(buyer, seller [20]byte) error {
	if e == nil || e.ledger == nil {
		return ErrProfileNotFound
	}
	return e.ledger.MarkTradeStarted(buyer, seller)
}

// RecordOutcome adjusts both parties' reputation for a finished trade.
func (e *Engine) RecordOutcome(buyer, seller [20]byte, success bool) error {
	if e == nil || e.ledger == nil {
		return ErrProfileNotFound
	}
	return e.ledger.RecordOutcome(buyer, seller, success)
}
