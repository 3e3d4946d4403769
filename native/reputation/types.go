package reputation

import "errors"

const (
	// ScoreInitial is assigned to every profile at verification.
	ScoreInitial uint64 = 500
	// ScoreCeiling bounds the reputation score from above.
	ScoreCeiling uint64 = 1000
	// ScoreStep is applied per recorded trade outcome.
	ScoreStep uint64 = 10
)

var (
	// ErrIdentityUsed marks verification attempts reusing an identity token
	// already consumed by a prior verification.
	ErrIdentityUsed = errors.New("reputation: identity token already used")
	// ErrAlreadyVerified marks repeated verification of the same account.
	ErrAlreadyVerified = errors.New("reputation: account already verified")
	// ErrProfileNotFound marks lookups for accounts that never verified.
	ErrProfileNotFound = errors.New("reputation: profile not found")
)

// UserProfile tracks the verification status and trade history of one account.
// A profile is created once on verification and never deleted.
type UserProfile struct {
	Address          [20]byte
	IsVerified       bool
	TotalTrades      uint64
	SuccessfulTrades uint64
	ReputationScore  uint64
	JoinedAt         int64
}

// Clone returns a copy safe for modification.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
