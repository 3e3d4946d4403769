package escrow

import "errors"

var (
	errNilState      = errors.New("trade engine: state not configured")
	errNilToken      = errors.New("trade engine: token not configured")
	errNilReputation = errors.New("trade engine: reputation not configured")
	errNilCollector  = errors.New("trade engine: fee collector not configured")

	// ErrTradeNotFound marks lookups for unknown trade identifiers.
	ErrTradeNotFound = errors.New("escrow: trade not found")
	// ErrUnauthorized marks calls from an account lacking the required role.
	ErrUnauthorized = errors.New("escrow: unauthorized caller")
	// ErrInvalidState marks transitions whose status precondition is not met.
	ErrInvalidState = errors.New("escrow: status transition not allowed")
	// ErrNotVerified marks trade creation with an unverified party.
	ErrNotVerified = errors.New("escrow: party not verified")
	// ErrInvalidMilestone marks inspection actions on trades that do not
	// require inspection.
	ErrInvalidMilestone = errors.New("escrow: trade does not require inspection")
	// ErrTransferFailed marks a token transfer that reported failure. Both
	// transfers of a milestone payment must succeed or the triggering
	// transition is aborted.
	ErrTransferFailed = errors.New("escrow: token transfer failed")
	// ErrFeeTooHigh marks administrative fee updates above the cap.
	ErrFeeTooHigh = errors.New("escrow: platform fee exceeds cap")
)
