package reputation

import (
	"encoding/hex"
	"strconv"

	"payslab/core/types"
)

const (
	// EventTypeUserVerified is emitted when an account completes identity
	// verification.
	EventTypeUserVerified = "reputation.userVerified"
)

// NewUserVerifiedEvent returns the canonical event payload for a completed
// verification. The identity token itself never appears in the payload.
func NewUserVerifiedEvent(p *UserProfile) *types.Event {
	attrs := make(map[string]string)
	if p == nil {
		return &types.Event{Type: EventTypeUserVerified, Attributes: attrs}
	}
	attrs["address"] = hex.EncodeToString(p.Address[:])
	attrs["reputationScore"] = strconv.FormatUint(p.ReputationScore, 10)
	attrs["joinedAt"] = strconv.FormatInt(p.JoinedAt, 10)
	return &types.Event{Type: EventTypeUserVerified, Attributes: attrs}
}
