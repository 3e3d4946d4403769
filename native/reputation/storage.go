package reputation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// storage abstracts the subset of state manager functionality required by the
// reputation ledger.
type storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var (
	profilePrefix  = []byte("reputation/profile/")
	identityPrefix = []byte("reputation/identity/")
)

func profileKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", profilePrefix, addr))
}

// identityKey derives the registry key for an identity token. The raw token
// never hits storage; only its digest does.
func identityKey(token string) []byte {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if normalized == "" {
		return nil
	}
	digest := ethcrypto.Keccak256([]byte(normalized))
	return []byte(fmt.Sprintf("%s%x", identityPrefix, digest))
}

type storedProfile struct {
	Address          [20]byte
	IsVerified       bool
	TotalTrades      uint64
	SuccessfulTrades uint64
	ReputationScore  uint64
	JoinedAt         uint64
}

type storedIdentity struct {
	Owner      [20]byte
	ConsumedAt uint64
}

// Ledger persists user profiles and the identity-token uniqueness registry. It
// is the sole writer of both record families.
type Ledger struct {
	store storage
	nowFn func() int64
}

// NewLedger constructs a ledger bound to the provided storage backend.
func NewLedger(store storage) *Ledger {
	return &Ledger{
		store: store,
		nowFn: func() int64 { return time.Now().Unix() },
	}
}

// SetNowFunc overrides the wall clock, primarily used in tests.
func (l *Ledger) SetNowFunc(now func() int64) {
	if l == nil {
		return
	}
	if now == nil {
		l.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	l.nowFn = now
}

func (l *Ledger) now() int64 {
	if l == nil || l.nowFn == nil {
		return time.Now().Unix()
	}
	return l.nowFn()
}

func (l *Ledger) ready() error {
	if l == nil {
		return errors.New("reputation: ledger not initialised")
	}
	if l.store == nil {
		return errors.New("reputation: storage unavailable")
	}
	return nil
}

// Verify creates a profile for caller after consuming the identity token.
// Tokens are globally unique across all verified accounts; reuse fails.
func (l *Ledger) Verify(caller [20]byte, identityToken string) (*UserProfile, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	key := identityKey(identityToken)
	if key == nil {
		return nil, errors.New("reputation: identity token required")
	}
	existing, err := l.loadProfile(caller)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsVerified {
		return nil, ErrAlreadyVerified
	}
	var consumed storedIdentity
	ok, err := l.store.KVGet(key, &consumed)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, ErrIdentityUsed
	}
	now := l.now()
	profile := &UserProfile{
		Address:         caller,
		IsVerified:      true,
		ReputationScore: ScoreInitial,
		JoinedAt:        now,
	}
	if err := l.putProfile(profile); err != nil {
		return nil, err
	}
	if err := l.store.KVPut(key, &storedIdentity{Owner: caller, ConsumedAt: uint64(now)}); err != nil {
		return nil, err
	}
	return profile.Clone(), nil
}

// IsVerified reports whether the account completed identity verification.
func (l *Ledger) IsVerified(addr [20]byte) (bool, error) {
	if err := l.ready(); err != nil {
		return false, err
	}
	profile, err := l.loadProfile(addr)
	if err != nil {
		return false, err
	}
	return profile != nil && profile.IsVerified, nil
}

// Profile returns the stored profile for addr.
func (l *Ledger) Profile(addr [20]byte) (*UserProfile, bool, error) {
	if err := l.ready(); err != nil {
		return nil, false, err
	}
	profile, err := l.loadProfile(addr)
	if err != nil {
		return nil, false, err
	}
	if profile == nil {
		return nil, false, nil
	}
	return profile, true, nil
}

// ReputationOf returns the bounded reputation score for addr.
func (l *Ledger) ReputationOf(addr [20]byte) (uint64, error) {
	profile, ok, err := l.Profile(addr)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrProfileNotFound
	}
	return profile.ReputationScore, nil
}

// MarkTradeStarted increments the lifetime trade counters of both parties.
func (l *Ledger) MarkTradeStarted(buyer, seller [20]byte) error {
	if err := l.ready(); err != nil {
		return err
	}
	for _, addr := range [2][20]byte{buyer, seller} {
		profile, err := l.loadProfile(addr)
		if err != nil {
			return err
		}
		if profile == nil {
			return fmt.Errorf("%w: %x", ErrProfileNotFound, addr)
		}
		profile.TotalTrades++
		if err := l.putProfile(profile); err != nil {
			return err
		}
	}
	return nil
}

// RecordOutcome adjusts both parties' reputation for a finished trade. Success
// raises each score by ScoreStep capped at ScoreCeiling and counts a successful
// trade; failure lowers each score by ScoreStep floored at zero.
func (l *Ledger) RecordOutcome(buyer, seller [20]byte, success bool) error {
	if err := l.ready(); err != nil {
		return err
	}
	for _, addr := range [2][20]byte{buyer, seller} {
		profile, err := l.loadProfile(addr)
		if err != nil {
			return err
		}
		if profile == nil {
			return fmt.Errorf("%w: %x", ErrProfileNotFound, addr)
		}
		if success {
			profile.SuccessfulTrades++
			profile.ReputationScore += ScoreStep
			if profile.ReputationScore > ScoreCeiling {
				profile.ReputationScore = ScoreCeiling
			}
		} else {
			if profile.ReputationScore > ScoreStep {
				profile.ReputationScore -= ScoreStep
			} else {
				profile.ReputationScore = 0
			}
		}
		if err := l.putProfile(profile); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) loadProfile(addr [20]byte) (*UserProfile, error) {
	var stored storedProfile
	ok, err := l.store.KVGet(profileKey(addr), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &UserProfile{
		Address:          stored.Address,
		IsVerified:       stored.IsVerified,
		TotalTrades:      stored.TotalTrades,
		SuccessfulTrades: stored.SuccessfulTrades,
		ReputationScore:  stored.ReputationScore,
		JoinedAt:         int64(stored.JoinedAt),
	}, nil
}

func (l *Ledger) putProfile(profile *UserProfile) error {
	if profile == nil {
		return errors.New("reputation: nil profile")
	}
	stored := storedProfile{
		Address:          profile.Address,
		IsVerified:       profile.IsVerified,
		TotalTrades:      profile.TotalTrades,
		SuccessfulTrades: profile.SuccessfulTrades,
		ReputationScore:  profile.ReputationScore,
	}
	if profile.JoinedAt > 0 {
		stored.JoinedAt = uint64(profile.JoinedAt)
	}
	return l.store.KVPut(profileKey(profile.Address), &stored)
}
