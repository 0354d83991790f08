package core

import "errors"

// Sentinel errors of the ledger. Services wrap these with context via %w and
// callers match with errors.Is; the HTTP layer maps them to statuses.
var (
	// ErrNotFound marks lookups of unknown keys.
	ErrNotFound = errors.New("not found")

	// ErrReferentialIntegrity marks writes that reference a nonexistent or
	// inactive entity.
	ErrReferentialIntegrity = errors.New("referential integrity violation")

	// ErrClosedMonth marks a normal write into a closed month. Corrections
	// are exempt.
	ErrClosedMonth = errors.New("month is closed")

	// ErrOutOfOrderClose marks an attempt to close a month while an earlier
	// one is still open.
	ErrOutOfOrderClose = errors.New("months must close in order")

	// ErrCloseNotReady marks a strict-policy close while recurring templates
	// remain unexpanded.
	ErrCloseNotReady = errors.New("month not ready to close")

	// ErrUnsettledAccount marks retiring an account that still holds a
	// balance or backs card charges due later.
	ErrUnsettledAccount = errors.New("account not settled")

	// ErrInvalidCycleConfig marks a card cycle with missing or out-of-range
	// statement days.
	ErrInvalidCycleConfig = errors.New("invalid card cycle configuration")

	// ErrDuplicateObjective marks a second active objective for the same
	// category/subcategory pair.
	ErrDuplicateObjective = errors.New("objective already active for pair")
)
